package logger

import (
	"strings"
	"testing"
)

func TestSanitizeKVsRedactsTokens(t *testing.T) {
	cases := []struct {
		key  string
		val  interface{}
		want string
	}{
		{key: "session_token", val: "abc", want: "[REDACTED]"},
		{key: "Authorization", val: "Bearer x.y.z", want: "[REDACTED]"},
		{key: "GEMINI_API_KEY", val: "k", want: "[REDACTED]"},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			out := sanitizeKVs([]interface{}{tc.key, tc.val})
			if len(out) != 2 {
				t.Fatalf("len=%d want 2", len(out))
			}
			if out[1] != tc.want {
				t.Fatalf("value=%v want %v", out[1], tc.want)
			}
		})
	}
}

func TestSanitizeKVsHashesUserID(t *testing.T) {
	out := sanitizeKVs([]interface{}{"user_id", uint(42), "place_id", 7})
	got, ok := out[1].(string)
	if !ok || !strings.HasPrefix(got, "hash:") || len(got) != len("hash:")+12 {
		t.Fatalf("user_id not hashed: %v", out[1])
	}
	if out[3] != 7 {
		t.Fatalf("place_id changed: %v", out[3])
	}
}

func TestSanitizeKVsOddLength(t *testing.T) {
	out := sanitizeKVs([]interface{}{"a", 1, "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("unexpected output: %v", out)
	}
}
