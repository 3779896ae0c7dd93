package services

import "errors"

var (
	ErrNotAuthenticated = errors.New("not authenticated")

	ErrSessionNotFound  = errors.New("세션을 찾을 수 없습니다")
	ErrModelUnavailable = errors.New("AI 추천 서비스를 일시적으로 사용할 수 없습니다. 잠시 후 다시 시도해주세요.")
	ErrInvalidFeedback  = errors.New("is_helpful must be 1 or -1")

	ErrPlaceNotFound  = errors.New("맛집을 찾을 수 없습니다")
	ErrPlaceForbidden = errors.New("접근 권한이 없는 맛집입니다")

	ErrReviewNotFound  = errors.New("리뷰를 찾을 수 없습니다")
	ErrReviewForbidden = errors.New("리뷰에 대한 권한이 없습니다")
	ErrAlreadyReviewed = errors.New("이미 리뷰를 작성한 맛집입니다")
)
