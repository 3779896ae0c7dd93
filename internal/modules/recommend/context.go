package recommend

import (
	"strconv"
	"strings"

	types "github.com/Jacod97/taste-map/internal/domain"
)

const (
	NoPlacesSentinel    = "등록된 맛집이 없습니다."
	DefaultHistoryTurns = 10
)

// PlaceDigest is one place plus what the context needs from its reviews.
type PlaceDigest struct {
	Place       *types.Place
	AvgRating   float64
	ReviewCount int64
	ReviewTexts []string
}

type ContextOptions struct {
	// MaxChars caps the rendered block. Oldest places are evicted first. 0 means unlimited.
	MaxChars int
}

// BuildPlacesContext renders places (oldest first) into the block shown to the model.
func BuildPlacesContext(places []PlaceDigest, opts ContextOptions) string {
	blocks := make([]string, 0, len(places))
	for _, d := range places {
		if d.Place == nil {
			continue
		}
		blocks = append(blocks, renderPlace(d))
	}
	if len(blocks) == 0 {
		return NoPlacesSentinel
	}
	if opts.MaxChars > 0 {
		blocks = evictOldest(blocks, opts.MaxChars)
	}
	return strings.Join(blocks, "\n")
}

// evictOldest drops leading blocks until the joined length fits, keeping at least one.
func evictOldest(blocks []string, maxChars int) []string {
	total := 0
	for _, b := range blocks {
		total += len(b)
	}
	total += len(blocks) - 1
	for len(blocks) > 1 && total > maxChars {
		total -= len(blocks[0]) + 1
		blocks = blocks[1:]
	}
	return blocks
}

func renderPlace(d PlaceDigest) string {
	p := d.Place
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("[맛집 ID: " + strconv.FormatUint(uint64(p.ID), 10) + "]\n")
	b.WriteString("- 이름: " + p.Name + "\n")
	b.WriteString("- 카테고리: " + p.Category.Label() + "\n")
	b.WriteString("- 주소: " + orDefault(p.Address, "미등록") + "\n")
	b.WriteString("- 위치: (" + formatCoord(p.Latitude) + ", " + formatCoord(p.Longitude) + ")\n")
	b.WriteString("- 태그: " + orDefault(p.Tags, "없음") + "\n")
	b.WriteString("- 메모: " + orDefault(p.Memo, "없음") + "\n")

	rating := "평가 없음"
	if d.ReviewCount > 0 && d.AvgRating != 0 {
		rating = strconv.FormatFloat(Round1(d.AvgRating), 'f', 1, 64)
	}
	b.WriteString("- 평균 평점: " + rating + "\n")

	texts := make([]string, 0, len(d.ReviewTexts))
	for _, t := range d.ReviewTexts {
		if t != "" {
			texts = append(texts, t)
		}
	}
	reviews := "리뷰 없음"
	if len(texts) > 0 {
		reviews = strings.Join(texts, "; ")
	}
	b.WriteString("- 리뷰: " + reviews + "\n")
	return b.String()
}

// BuildHistoryText renders the last limit turns, one "label: content" line each.
func BuildHistoryText(turns []types.Turn, limit int) string {
	if limit <= 0 {
		limit = DefaultHistoryTurns
	}
	if len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	var b strings.Builder
	for _, t := range turns {
		label := "AI"
		if t.Role == types.RoleUser {
			label = "사용자"
		}
		b.WriteString(label + ": " + t.Content + "\n")
	}
	return b.String()
}

// Round1 rounds the exact binary value to one decimal; exact ties go to even (4.25 -> 4.2).
func Round1(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	if err != nil {
		return v
	}
	return r
}

func orDefault(s *string, def string) string {
	if s == nil || *s == "" {
		return def
	}
	return *s
}

// formatCoord prints the shortest exact decimal, keeping a trailing ".0" on whole numbers.
func formatCoord(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
