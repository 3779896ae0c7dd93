package recommend

import (
	"testing"

	"gorm.io/datatypes"
)

func TestSessionTurnsEncoding(t *testing.T) {
	var s RecommendationSession
	if err := s.SetTurns(nil); err != nil {
		t.Fatalf("SetTurns(nil): %v", err)
	}
	if string(s.Messages) != "[]" {
		t.Fatalf("empty history stored as %q, want []", s.Messages)
	}

	in := []Turn{
		{Role: RoleUser, Content: "강남 근처 파스타"},
		{Role: RoleAssistant, Content: "\"따옴표\"와 줄바꿈\n포함"},
	}
	if err := s.SetTurns(in); err != nil {
		t.Fatalf("SetTurns: %v", err)
	}
	out, err := s.Turns()
	if err != nil {
		t.Fatalf("Turns: %v", err)
	}
	if len(out) != 2 || out[0] != in[0] || out[1] != in[1] {
		t.Fatalf("turns=%+v want %+v", out, in)
	}
}

func TestSessionTurnsFromColumn(t *testing.T) {
	cases := []struct {
		name    string
		raw     datatypes.JSON
		want    int
		wantErr bool
	}{
		{name: "unset column", raw: nil, want: 0},
		{name: "null literal", raw: datatypes.JSON("null"), want: 0},
		{name: "stored turns", raw: datatypes.JSON(`[{"role":"user","content":"hi"}]`), want: 1},
		{name: "corrupt column", raw: datatypes.JSON(`{"role":`), wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := &RecommendationSession{Messages: tc.raw}
			got, err := s.Turns()
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Turns: %v", err)
			}
			if got == nil || len(got) != tc.want {
				t.Fatalf("turns=%v want len %d", got, tc.want)
			}
		})
	}
}
