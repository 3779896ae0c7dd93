package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Jacod97/taste-map/internal/http/response"
	"github.com/Jacod97/taste-map/internal/platform/apierr"
	"github.com/Jacod97/taste-map/internal/services"
)

var errInternal = errors.New("internal server error")

// serviceErrors maps service sentinels to their public status/code. The sentinel text is
// the user-facing message, so wrapped details never reach the client.
var serviceErrors = []*apierr.Error{
	apierr.New(http.StatusUnauthorized, "unauthorized", services.ErrNotAuthenticated),
	apierr.NotFound("session_not_found", services.ErrSessionNotFound),
	apierr.NotFound("place_not_found", services.ErrPlaceNotFound),
	apierr.Forbidden("place_forbidden", services.ErrPlaceForbidden),
	apierr.NotFound("review_not_found", services.ErrReviewNotFound),
	apierr.Forbidden("review_forbidden", services.ErrReviewForbidden),
	apierr.BadRequest("already_reviewed", services.ErrAlreadyReviewed),
	apierr.BadRequest("invalid_request", services.ErrInvalidFeedback),
	apierr.Unavailable("recommend_unavailable", services.ErrModelUnavailable),
}

func toAPIError(err error) *apierr.Error {
	for _, e := range serviceErrors {
		if errors.Is(err, e.Err) {
			return e
		}
	}
	if ae, ok := apierr.As(err); ok {
		return ae
	}
	return apierr.New(http.StatusInternalServerError, "internal_error", errInternal)
}

func respondServiceError(c *gin.Context, err error) {
	ae := toAPIError(err)
	if ae.Status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	response.RespondAPIError(c, ae)
}

func respondBindError(c *gin.Context, err error) {
	response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("invalid "+name))
		return 0, false
	}
	return uint(id), true
}

type pageQuery struct {
	Skip  int `form:"skip" binding:"min=0"`
	Limit int `form:"limit,default=100" binding:"min=1,max=100"`
}
