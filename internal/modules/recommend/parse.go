package recommend

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

const FallbackMessage = "죄송합니다. 추천을 처리하는 중 오류가 발생했습니다. 다시 시도해주세요."

type ReplyKind int

const (
	ReplyOK ReplyKind = iota
	ReplyFallback
)

func (k ReplyKind) String() string {
	if k == ReplyOK {
		return "ok"
	}
	return "fallback"
}

// Reply is the parsed model answer. Kind tells a real answer apart from the fixed fallback.
type Reply struct {
	Kind     ReplyKind
	Message  string
	IsAsking bool
	PlaceIDs []uint
	Reasons  map[string]string
}

func FallbackReply() Reply {
	return Reply{
		Kind:     ReplyFallback,
		Message:  FallbackMessage,
		IsAsking: false,
		PlaceIDs: []uint{},
		Reasons:  map[string]string{},
	}
}

// Reason returns the model's justification for id, or "".
func (r Reply) Reason(id uint) string {
	return r.Reasons[strconv.FormatUint(uint64(id), 10)]
}

// ParseReply never fails: anything it cannot read becomes FallbackReply.
func ParseReply(raw string) Reply {
	reply, err := decodeReply(ExtractJSON(raw))
	if err != nil {
		return FallbackReply()
	}
	return reply
}

// ExtractJSON strips a ```json fence, else the first generic ``` fence, else returns raw.
// An unterminated fence yields everything after the opening marker.
func ExtractJSON(raw string) string {
	if i := strings.Index(raw, "```json"); i >= 0 {
		return untilFence(raw[i+len("```json"):])
	}
	if i := strings.Index(raw, "```"); i >= 0 {
		return untilFence(raw[i+len("```"):])
	}
	return raw
}

func untilFence(s string) string {
	if j := strings.Index(s, "```"); j >= 0 {
		return s[:j]
	}
	return s
}

var errShape = errors.New("unexpected reply shape")

func decodeReply(body string) (Reply, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return Reply{}, errShape
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return Reply{}, err
	}
	if fields == nil {
		return Reply{}, errShape
	}

	out := Reply{Kind: ReplyOK, PlaceIDs: []uint{}, Reasons: map[string]string{}}

	rawMsg, ok := fields["message"]
	if !ok || isNull(rawMsg) {
		return Reply{}, fmt.Errorf("%w: missing message", errShape)
	}
	if err := json.Unmarshal(rawMsg, &out.Message); err != nil {
		return Reply{}, fmt.Errorf("%w: message: %v", errShape, err)
	}

	if v, ok := fields["is_asking"]; ok && !isNull(v) {
		if err := json.Unmarshal(v, &out.IsAsking); err != nil {
			return Reply{}, fmt.Errorf("%w: is_asking: %v", errShape, err)
		}
	}

	if v, ok := fields["place_ids"]; ok && !isNull(v) {
		var nums []json.Number
		if err := json.Unmarshal(v, &nums); err != nil {
			return Reply{}, fmt.Errorf("%w: place_ids: %v", errShape, err)
		}
		for _, n := range nums {
			id, err := placeID(n)
			if err != nil {
				return Reply{}, err
			}
			out.PlaceIDs = append(out.PlaceIDs, id)
		}
	}

	if v, ok := fields["reasons"]; ok && !isNull(v) {
		if err := json.Unmarshal(v, &out.Reasons); err != nil {
			return Reply{}, fmt.Errorf("%w: reasons: %v", errShape, err)
		}
		if out.Reasons == nil {
			out.Reasons = map[string]string{}
		}
	}

	return out, nil
}

// placeID accepts non-negative integers, including integral floats such as 5.0.
func placeID(n json.Number) (uint, error) {
	if u, err := strconv.ParseUint(n.String(), 10, 64); err == nil {
		return uint(u), nil
	}
	f, err := n.Float64()
	if err != nil || f < 0 || f != math.Trunc(f) || f > math.MaxUint32 {
		return 0, fmt.Errorf("%w: place id %q", errShape, n.String())
	}
	return uint(f), nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
