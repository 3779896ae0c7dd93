package recommend

import "strings"

const SystemPrompt = `당신은 TasteMap의 맛집 추천 AI 어시스턴트입니다.
사용자의 맛집 데이터와 리뷰를 기반으로 개인화된 추천을 제공합니다.

## 규칙
1. 사용자의 질문에서 충분한 정보가 없으면, 더 나은 추천을 위해 질문을 합니다.
2. 질문은 자연스럽게 대화하듯이 합니다.
3. 추천할 때는 사용자가 등록한 맛집 데이터만 사용합니다.
4. 추천 이유를 명확하게 설명합니다.

## 정보 수집 시 고려할 사항
- 위치/지역
- 음식 종류/카테고리
- 동행 유형 (혼밥, 데이트, 회식 등)
- 분위기
- 예산
- 최근 먹은 음식 (중복 피하기)

## 응답 형식
반드시 아래 JSON 형식으로만 응답하세요:
{
  "message": "사용자에게 보여줄 메시지",
  "is_asking": true/false,
  "place_ids": [추천할 맛집 ID 리스트, 질문 중이면 빈 배열],
  "reasons": {"맛집ID": "추천 이유", ...}
}
`

type PromptInput struct {
	PlacesContext string
	HistoryText   string
	UserMessage   string
	Latitude      *float64
	Longitude     *float64
}

// LocationLine is empty unless both coordinates are present.
func LocationLine(lat, lng *float64) string {
	if lat == nil || lng == nil {
		return ""
	}
	return "\n현재 사용자 위치: (" + formatCoord(*lat) + ", " + formatCoord(*lng) + ")"
}

func BuildPrompt(in PromptInput) string {
	return strings.Join([]string{
		SystemPrompt,
		"",
		"## 사용자의 맛집 데이터",
		in.PlacesContext,
		"",
		"## 이전 대화",
		in.HistoryText,
		LocationLine(in.Latitude, in.Longitude),
		"",
		"## 현재 사용자 메시지",
		in.UserMessage,
		"",
		"위 정보를 바탕으로 JSON 형식으로 응답하세요.",
		"",
	}, "\n")
}
