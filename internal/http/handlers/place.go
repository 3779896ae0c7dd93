package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Jacod97/taste-map/internal/data/repos"
	types "github.com/Jacod97/taste-map/internal/domain"
	"github.com/Jacod97/taste-map/internal/http/response"
	"github.com/Jacod97/taste-map/internal/platform/ctxutil"
	"github.com/Jacod97/taste-map/internal/platform/dbctx"
	"github.com/Jacod97/taste-map/internal/services"
)

type PlaceHandler struct {
	placeService services.PlaceService
}

func NewPlaceHandler(placeService services.PlaceService) *PlaceHandler {
	RegisterValidators()
	return &PlaceHandler{placeService: placeService}
}

type placeCreateRequest struct {
	Name       string           `json:"name" binding:"required,max=200"`
	Category   types.Category   `json:"category" binding:"omitempty,category"`
	Latitude   *float64         `json:"latitude" binding:"required,min=-90,max=90"`
	Longitude  *float64         `json:"longitude" binding:"required,min=-180,max=180"`
	Address    *string          `json:"address" binding:"omitempty,max=500"`
	Memo       *string          `json:"memo"`
	Tags       *string          `json:"tags" binding:"omitempty,max=500"`
	VisitedAt  *time.Time       `json:"visited_at"`
	Visibility types.Visibility `json:"visibility" binding:"omitempty,visibility"`
}

type placeUpdateRequest struct {
	Name       *string           `json:"name" binding:"omitempty,min=1,max=200"`
	Category   *types.Category   `json:"category" binding:"omitempty,category"`
	Latitude   *float64          `json:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude  *float64          `json:"longitude" binding:"omitempty,min=-180,max=180"`
	Address    *string           `json:"address" binding:"omitempty,max=500"`
	Memo       *string           `json:"memo"`
	Tags       *string           `json:"tags" binding:"omitempty,max=500"`
	VisitedAt  *time.Time        `json:"visited_at"`
	Visibility *types.Visibility `json:"visibility" binding:"omitempty,visibility"`
}

type boundsQuery struct {
	MinLat        *float64 `form:"min_lat" binding:"required,min=-90,max=90"`
	MaxLat        *float64 `form:"max_lat" binding:"required,min=-90,max=90"`
	MinLng        *float64 `form:"min_lng" binding:"required,min=-180,max=180"`
	MaxLng        *float64 `form:"max_lng" binding:"required,min=-180,max=180"`
	IncludePublic bool     `form:"include_public"`
}

type nearbyQuery struct {
	Lat           *float64 `form:"lat" binding:"required,min=-90,max=90"`
	Lng           *float64 `form:"lng" binding:"required,min=-180,max=180"`
	RadiusKm      float64  `form:"radius_km,default=1" binding:"min=0.1,max=50"`
	IncludePublic bool     `form:"include_public"`
}

type searchQuery struct {
	Keyword   string         `form:"keyword"`
	Category  types.Category `form:"category" binding:"omitempty,category"`
	MinRating *float64       `form:"min_rating" binding:"omitempty,min=1,max=5"`
	OnlyMine  bool           `form:"only_mine,default=true"`
	SortBy    string         `form:"sort_by,default=created_at" binding:"oneof=created_at name visited_at"`
	pageQuery
}

type placeListResponse struct {
	Places []*services.PlaceView `json:"places"`
	Total  int64                 `json:"total"`
}

// POST /places
func (h *PlaceHandler) CreatePlace(c *gin.Context) {
	var req placeCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	view, err := h.placeService.Create(dbctx.Of(c.Request.Context()), ctxutil.UserID(c.Request.Context()), services.PlaceInput{
		Name:       req.Name,
		Category:   req.Category,
		Latitude:   *req.Latitude,
		Longitude:  *req.Longitude,
		Address:    req.Address,
		Memo:       req.Memo,
		Tags:       req.Tags,
		VisitedAt:  req.VisitedAt,
		Visibility: req.Visibility,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondCreated(c, view)
}

// GET /places
func (h *PlaceHandler) ListMyPlaces(c *gin.Context) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	places, total, err := h.placeService.ListMine(dbctx.Of(c.Request.Context()), ctxutil.UserID(c.Request.Context()), q.Skip, q.Limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, placeListResponse{Places: places, Total: total})
}

// GET /places/bounds
func (h *PlaceHandler) ListInBounds(c *gin.Context) {
	var q boundsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	places, err := h.placeService.InBounds(dbctx.Of(c.Request.Context()), ctxutil.UserID(c.Request.Context()), repos.PlaceBounds{
		MinLat: *q.MinLat,
		MaxLat: *q.MaxLat,
		MinLng: *q.MinLng,
		MaxLng: *q.MaxLng,
	}, q.IncludePublic)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, places)
}

// GET /places/nearby
func (h *PlaceHandler) ListNearby(c *gin.Context) {
	var q nearbyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	places, err := h.placeService.Nearby(dbctx.Of(c.Request.Context()), ctxutil.UserID(c.Request.Context()), *q.Lat, *q.Lng, q.RadiusKm, q.IncludePublic)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, places)
}

// GET /places/search
func (h *PlaceHandler) SearchPlaces(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	places, total, err := h.placeService.Search(dbctx.Of(c.Request.Context()), ctxutil.UserID(c.Request.Context()), repos.PlaceSearchFilter{
		Keyword:   q.Keyword,
		Category:  q.Category,
		MinRating: q.MinRating,
		OnlyMine:  q.OnlyMine,
		SortBy:    q.SortBy,
		Skip:      q.Skip,
		Limit:     q.Limit,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, placeListResponse{Places: places, Total: total})
}

// GET /places/:id
func (h *PlaceHandler) GetPlace(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	view, err := h.placeService.Get(dbctx.Of(c.Request.Context()), ctxutil.UserID(c.Request.Context()), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// PUT /places/:id
func (h *PlaceHandler) UpdatePlace(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req placeUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	view, err := h.placeService.Update(dbctx.Of(c.Request.Context()), ctxutil.UserID(c.Request.Context()), id, services.PlaceUpdate{
		Name:       req.Name,
		Category:   req.Category,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		Address:    req.Address,
		Memo:       req.Memo,
		Tags:       req.Tags,
		VisitedAt:  req.VisitedAt,
		Visibility: req.Visibility,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// DELETE /places/:id
func (h *PlaceHandler) DeletePlace(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.placeService.Delete(dbctx.Of(c.Request.Context()), ctxutil.UserID(c.Request.Context()), id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondNoContent(c)
}
