package recommend

import (
	"strings"
	"testing"

	types "github.com/Jacod97/taste-map/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestBuildPlacesContextEmpty(t *testing.T) {
	if got := BuildPlacesContext(nil, ContextOptions{}); got != NoPlacesSentinel {
		t.Fatalf("got %q want sentinel", got)
	}
	if got := BuildPlacesContext([]PlaceDigest{{Place: nil}}, ContextOptions{}); got != NoPlacesSentinel {
		t.Fatalf("nil place: got %q want sentinel", got)
	}
}

func TestBuildPlacesContextBlock(t *testing.T) {
	p := &types.Place{
		ID:        5,
		Name:      "을지면옥",
		Category:  "korean",
		Latitude:  37.5,
		Longitude: 127,
		Tags:      strPtr("냉면,평양"),
	}
	got := BuildPlacesContext([]PlaceDigest{{
		Place:       p,
		AvgRating:   13.0 / 3.0,
		ReviewCount: 2,
		ReviewTexts: []string{"시원함", "", "줄이 김"},
	}}, ContextOptions{})

	want := "\n[맛집 ID: 5]\n" +
		"- 이름: 을지면옥\n" +
		"- 카테고리: 한식\n" +
		"- 주소: 미등록\n" +
		"- 위치: (37.5, 127.0)\n" +
		"- 태그: 냉면,평양\n" +
		"- 메모: 없음\n" +
		"- 평균 평점: 4.3\n" +
		"- 리뷰: 시원함; 줄이 김\n"
	if got != want {
		t.Fatalf("block mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestBuildPlacesContextPlaceholders(t *testing.T) {
	p := &types.Place{ID: 1, Name: "x", Category: "", Memo: strPtr("")}
	got := BuildPlacesContext([]PlaceDigest{{Place: p}}, ContextOptions{})
	for _, want := range []string{"- 카테고리: 기타", "- 메모: 없음", "- 평균 평점: 평가 없음", "- 리뷰: 리뷰 없음"} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %q in %q", want, got)
		}
	}
}

func TestBuildPlacesContextEvictsOldest(t *testing.T) {
	var digests []PlaceDigest
	for i := uint(1); i <= 3; i++ {
		digests = append(digests, PlaceDigest{Place: &types.Place{ID: i, Name: "place"}})
	}
	full := BuildPlacesContext(digests, ContextOptions{})
	one := BuildPlacesContext(digests[2:], ContextOptions{})

	got := BuildPlacesContext(digests, ContextOptions{MaxChars: len(one)})
	if got != one {
		t.Fatalf("expected only the newest block, got %q", got)
	}
	if got := BuildPlacesContext(digests, ContextOptions{MaxChars: len(full)}); got != full {
		t.Fatalf("budget equal to full size should keep everything")
	}
	if got := BuildPlacesContext(digests, ContextOptions{MaxChars: 1}); got != one {
		t.Fatalf("tiny budget should keep one block, got %q", got)
	}
	if strings.Contains(got, "[맛집 ID: 1]") {
		t.Fatalf("oldest place should be evicted")
	}
}

func TestBuildHistoryText(t *testing.T) {
	var turns []types.Turn
	for i := 0; i < 6; i++ {
		turns = append(turns,
			types.Turn{Role: types.RoleUser, Content: "q"},
			types.Turn{Role: types.RoleAssistant, Content: "a"},
		)
	}
	cases := []struct {
		name  string
		turns []types.Turn
		limit int
		lines int
	}{
		{"empty", nil, 10, 0},
		{"default window", turns, 0, 10},
		{"custom window", turns, 3, 3},
		{"shorter than window", turns[:4], 10, 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := BuildHistoryText(tc.turns, tc.limit)
			if n := strings.Count(got, "\n"); n != tc.lines {
				t.Fatalf("lines=%d want %d (%q)", n, tc.lines, got)
			}
		})
	}

	got := BuildHistoryText([]types.Turn{
		{Role: "user", Content: "점심 추천"},
		{Role: "assistant", Content: "어느 지역이요?"},
		{Role: "system", Content: "x"},
	}, 10)
	want := "사용자: 점심 추천\nAI: 어느 지역이요?\nAI: x\n"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestRound1(t *testing.T) {
	cases := []struct {
		name string
		in   float64
		want float64
	}{
		{name: "exact tie goes to even", in: (4 + 4 + 4.5 + 4.5) / 4, want: 4.2},
		{name: "exact tie rounds up to even", in: 4.75, want: 4.8},
		{name: "inexact half below", in: 4.35, want: 4.3},
		{name: "repeating", in: 13.0 / 3.0, want: 4.3},
		{name: "whole", in: 5, want: 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Round1(tc.in); got != tc.want {
				t.Fatalf("Round1(%v)=%v want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestBuildPlacesContextRatingTie(t *testing.T) {
	out := BuildPlacesContext([]PlaceDigest{{
		Place:       &types.Place{ID: 1, Name: "tie"},
		AvgRating:   4.25,
		ReviewCount: 4,
	}}, ContextOptions{})
	if !strings.Contains(out, "- 평균 평점: 4.2\n") {
		t.Fatalf("tie not rounded to even:\n%s", out)
	}
}
