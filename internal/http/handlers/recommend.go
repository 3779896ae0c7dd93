package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Jacod97/taste-map/internal/http/response"
	"github.com/Jacod97/taste-map/internal/platform/ctxutil"
	"github.com/Jacod97/taste-map/internal/platform/dbctx"
	"github.com/Jacod97/taste-map/internal/services"
)

type RecommendHandler struct {
	recommendService services.RecommendService
}

func NewRecommendHandler(recommendService services.RecommendService) *RecommendHandler {
	RegisterValidators()
	return &RecommendHandler{recommendService: recommendService}
}

type recommendRequest struct {
	Message      string   `json:"message" binding:"required"`
	SessionToken *string  `json:"session_token"`
	Latitude     *float64 `json:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude    *float64 `json:"longitude" binding:"omitempty,min=-180,max=180"`
}

type feedbackRequest struct {
	SessionToken string `json:"session_token" binding:"required"`
	PlaceID      uint   `json:"place_id" binding:"required"`
	IsHelpful    int    `json:"is_helpful" binding:"helpful"`
}

// POST /recommend
func (h *RecommendHandler) Recommend(c *gin.Context) {
	var req recommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	in := services.RecommendRequest{
		Message:   req.Message,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	if req.SessionToken != nil {
		in.SessionToken = *req.SessionToken
	}
	resp, err := h.recommendService.Recommend(dbctx.Of(c.Request.Context()), ctxutil.UserID(c.Request.Context()), in)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, resp)
}

// POST /recommend/feedback
func (h *RecommendHandler) SubmitFeedback(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	err := h.recommendService.SubmitFeedback(dbctx.Of(c.Request.Context()), ctxutil.UserID(c.Request.Context()), services.FeedbackRequest{
		SessionToken: req.SessionToken,
		PlaceID:      req.PlaceID,
		IsHelpful:    req.IsHelpful,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondNoContent(c)
}

// GET /recommend/sessions/:token
func (h *RecommendHandler) GetSession(c *gin.Context) {
	view, err := h.recommendService.GetSession(dbctx.Of(c.Request.Context()), ctxutil.UserID(c.Request.Context()), c.Param("token"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, view)
}
