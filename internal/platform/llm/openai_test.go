package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/Jacod97/taste-map/internal/platform/logger"
)

func newTestOpenAI(t *testing.T, h http.HandlerFunc) *OpenAI {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewOpenAI(logger.Nop(), OpenAIConfig{APIKey: "k", BaseURL: srv.URL + "/", Model: "m"})
	if err != nil {
		t.Fatalf("NewOpenAI: %v", err)
	}
	return c
}

func TestOpenAIGenerate(t *testing.T) {
	var calls int
	c := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/v1/responses" || r.Method != http.MethodPost {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer k" {
			t.Errorf("Authorization=%q", got)
		}
		var req responsesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Model != "m" || len(req.Input) != 1 || req.Input[0].Content != "prompt" {
			t.Errorf("request=%+v", req)
		}
		_, _ = w.Write([]byte(`{"output":[{"type":"message","role":"assistant","content":[{"type":"output_text","text":"{\"message\":\"hi\"}"}]}]}`))
	})

	got, err := c.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != `{"message":"hi"}` {
		t.Fatalf("text=%q", got)
	}
	if calls != 1 {
		t.Fatalf("calls=%d want 1", calls)
	}
}

func TestOpenAIErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{
			name: "http status", status: http.StatusServiceUnavailable, body: `{"error":"busy"}`,
			check: func(err error) bool {
				var he *HTTPError
				return errors.As(err, &he) && he.HTTPStatusCode() == http.StatusServiceUnavailable
			},
		},
		{
			name: "empty output", status: http.StatusOK, body: `{"output":[]}`,
			check: func(err error) bool { return errors.Is(err, ErrEmptyResponse) },
		},
		{
			name: "refusal", status: http.StatusOK, body: `{"output":[],"refusal":"no"}`,
			check: func(err error) bool { return err != nil },
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var calls int
			c := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := c.Generate(context.Background(), "p")
			if !tc.check(err) {
				t.Fatalf("unexpected err: %v", err)
			}
			if calls != 1 {
				t.Fatalf("calls=%d want exactly one attempt", calls)
			}
		})
	}
}

func TestNewOpenAIRequiresKey(t *testing.T) {
	if _, err := NewOpenAI(logger.Nop(), OpenAIConfig{}); err == nil {
		t.Fatalf("expected missing key error")
	}
}

func TestNewUnknownProvider(t *testing.T) {
	if _, err := New(context.Background(), logger.Nop(), Config{Provider: "claude"}); err == nil {
		t.Fatalf("expected unsupported provider error")
	}
}
