package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/cabgo/rider-web/internal/common/response"
	"github.com/cabgo/rider-web/internal/location"
)

// PlacesHandler handles place search and resolution outside the map picker.
type PlacesHandler struct {
	resolver *location.Resolver
}

func NewPlacesHandler(resolver *location.Resolver) *PlacesHandler {
	return &PlacesHandler{resolver: resolver}
}

// RegisterRoutes registers place routes on the given router group.
func (h *PlacesHandler) RegisterRoutes(r *gin.RouterGroup) {
	places := r.Group("/places")
	{
		places.GET("/suggest", h.Suggest)
		places.POST("/resolve", h.Resolve)
		places.POST("/reverse", h.Reverse)
		places.POST("/current", h.Current)
	}
}

type suggestResponse struct {
	Query       string `json:"query"`
	Suggestions any    `json:"suggestions"`
	Superseded  bool   `json:"superseded"`
}

type placeInput struct {
	PlaceID string `json:"placeId" binding:"required"`
}

type pointInput struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lng *float64 `json:"lng" binding:"required"`
}

// Suggest handles GET /api/v1/places/suggest?q=. The request waits for the debounce; a
// request overtaken by newer input returns superseded=true.
func (h *PlacesHandler) Suggest(c *gin.Context) {
	results := currentSession(c).Suggester.Suggest(c.Request.Context(), c.Query("q"))

	var res location.SuggestResult
	select {
	case res = <-results:
	case <-c.Request.Context().Done():
		return
	}

	if errors.Is(res.Err, location.ErrSuperseded) {
		response.Success(c, suggestResponse{Query: res.Query, Suggestions: []any{}, Superseded: true})
		return
	}
	if res.Err != nil {
		response.Error(c, res.Err)
		return
	}
	response.Success(c, suggestResponse{Query: res.Query, Suggestions: res.Suggestions})
}

// Resolve handles POST /api/v1/places/resolve.
func (h *PlacesHandler) Resolve(c *gin.Context) {
	var req placeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	loc, err := h.resolver.ResolvePlace(c.Request.Context(), req.PlaceID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, loc)
}

// Reverse handles POST /api/v1/places/reverse.
func (h *PlacesHandler) Reverse(c *gin.Context) {
	var req pointInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	loc, err := h.resolver.ResolveCoordinates(c.Request.Context(), *req.Lat, *req.Lng)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, loc)
}

// Current handles POST /api/v1/places/current with the browser's geolocation report.
func (h *PlacesHandler) Current(c *gin.Context) {
	var req location.ReportedPosition
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	loc, err := h.resolver.ResolveCurrentDevicePosition(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, loc)
}
