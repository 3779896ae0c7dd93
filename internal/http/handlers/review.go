package handlers

import (
	"github.com/gin-gonic/gin"

	types "github.com/Jacod97/taste-map/internal/domain"
	"github.com/Jacod97/taste-map/internal/http/response"
	"github.com/Jacod97/taste-map/internal/platform/ctxutil"
	"github.com/Jacod97/taste-map/internal/platform/dbctx"
	"github.com/Jacod97/taste-map/internal/services"
)

type ReviewHandler struct {
	reviewService services.ReviewService
}

func NewReviewHandler(reviewService services.ReviewService) *ReviewHandler {
	RegisterValidators()
	return &ReviewHandler{reviewService: reviewService}
}

type reviewCreateRequest struct {
	PlaceID        uint                        `json:"place_id" binding:"required"`
	Rating         *float64                    `json:"rating" binding:"required,min=1,max=5"`
	Content        *string                     `json:"content"`
	Recommendation *types.ReviewRecommendation `json:"recommendation" binding:"omitempty,recommendation"`
}

type reviewUpdateRequest struct {
	Rating         *float64                    `json:"rating" binding:"omitempty,min=1,max=5"`
	Content        *string                     `json:"content"`
	Recommendation *types.ReviewRecommendation `json:"recommendation" binding:"omitempty,recommendation"`
}

// POST /reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	var req reviewCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	rv, err := h.reviewService.Create(dbctx.Of(c.Request.Context()), ctxutil.UserID(c.Request.Context()), services.ReviewInput{
		PlaceID:        req.PlaceID,
		Rating:         *req.Rating,
		Content:        req.Content,
		Recommendation: req.Recommendation,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondCreated(c, rv)
}

// GET /reviews/place/:place_id
func (h *ReviewHandler) ListPlaceReviews(c *gin.Context) {
	placeID, ok := pathID(c, "place_id")
	if !ok {
		return
	}
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	out, err := h.reviewService.ListByPlace(dbctx.Of(c.Request.Context()), ctxutil.UserID(c.Request.Context()), placeID, q.Skip, q.Limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, nonNil(out))
}

// GET /reviews/place/:place_id/stats
func (h *ReviewHandler) GetPlaceStats(c *gin.Context) {
	placeID, ok := pathID(c, "place_id")
	if !ok {
		return
	}
	st, err := h.reviewService.Stats(dbctx.Of(c.Request.Context()), ctxutil.UserID(c.Request.Context()), placeID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, st)
}

// GET /reviews/my
func (h *ReviewHandler) ListMyReviews(c *gin.Context) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	out, err := h.reviewService.ListMine(dbctx.Of(c.Request.Context()), ctxutil.UserID(c.Request.Context()), q.Skip, q.Limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, nonNil(out))
}

// GET /reviews/:id
func (h *ReviewHandler) GetReview(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	rv, err := h.reviewService.Get(dbctx.Of(c.Request.Context()), ctxutil.UserID(c.Request.Context()), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, rv)
}

// PUT /reviews/:id
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req reviewUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	rv, err := h.reviewService.Update(dbctx.Of(c.Request.Context()), ctxutil.UserID(c.Request.Context()), id, services.ReviewUpdate{
		Rating:         req.Rating,
		Content:        req.Content,
		Recommendation: req.Recommendation,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, rv)
}

// DELETE /reviews/:id
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.reviewService.Delete(dbctx.Of(c.Request.Context()), ctxutil.UserID(c.Request.Context()), id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondNoContent(c)
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil(in []*types.Review) []*types.Review {
	if in == nil {
		return []*types.Review{}
	}
	return in
}
