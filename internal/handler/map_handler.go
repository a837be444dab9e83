package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/cabgo/rider-web/internal/application"
	"github.com/cabgo/rider-web/internal/common/response"
	"github.com/cabgo/rider-web/internal/domain/booking"
	"github.com/cabgo/rider-web/internal/location"
	"github.com/cabgo/rider-web/internal/mapselect"
)

// MapHandler drives the per-session map picker.
type MapHandler struct{}

func NewMapHandler() *MapHandler {
	return &MapHandler{}
}

// RegisterRoutes registers map picker routes on the given router group.
func (h *MapHandler) RegisterRoutes(r *gin.RouterGroup) {
	m := r.Group("/map")
	{
		m.GET("", h.GetMap)
		m.POST("/open", h.Open)
		m.POST("/pin", h.MovePin)
		m.POST("/search", h.SelectSearchResult)
		m.POST("/current", h.UseCurrentLocation)
		m.POST("/confirm", h.Confirm)
		m.POST("/close", h.Close)
	}
}

type openMapInput struct {
	Slot string `json:"slot" binding:"required"`
}

type confirmMapResponse struct {
	Map    mapselect.View         `json:"map"`
	Wizard application.WizardView `json:"wizard"`
}

// GetMap handles GET /api/v1/map.
func (h *MapHandler) GetMap(c *gin.Context) {
	response.Success(c, currentSession(c).Modal.View())
}

// Open handles POST /api/v1/map/open, seeding the map with the wizard's location for the slot.
func (h *MapHandler) Open(c *gin.Context) {
	var req openMapInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	slot, err := mapselect.ParseSlot(req.Slot)
	if err != nil {
		response.Error(c, err)
		return
	}

	sess := currentSession(c)
	state := sess.Wizard.View().State
	current := state.Pickup
	if slot == mapselect.SlotDrop {
		current = state.Drop
	}

	view, err := sess.Modal.Open(slot, current)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// MovePin handles POST /api/v1/map/pin.
func (h *MapHandler) MovePin(c *gin.Context) {
	var req pointInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	view, err := currentSession(c).Modal.MovePin(c.Request.Context(), *req.Lat, *req.Lng)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// SelectSearchResult handles POST /api/v1/map/search.
func (h *MapHandler) SelectSearchResult(c *gin.Context) {
	var req placeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	view, err := currentSession(c).Modal.SelectSearchResult(c.Request.Context(), req.PlaceID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// UseCurrentLocation handles POST /api/v1/map/current.
func (h *MapHandler) UseCurrentLocation(c *gin.Context) {
	var req location.ReportedPosition
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	view, err := currentSession(c).Modal.UseCurrentLocation(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// Confirm handles POST /api/v1/map/confirm, committing the drafted location to the wizard.
func (h *MapHandler) Confirm(c *gin.Context) {
	sess := currentSession(c)
	slot, loc, err := sess.Modal.Confirm()
	if err != nil {
		response.Error(c, err)
		return
	}

	var ev booking.Event = booking.SetPickup{Location: loc}
	if slot == mapselect.SlotDrop {
		ev = booking.SetDrop{Location: loc}
	}
	wizard, err := sess.Wizard.Dispatch(ev)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, confirmMapResponse{Map: sess.Modal.View(), Wizard: wizard})
}

// Close handles POST /api/v1/map/close.
func (h *MapHandler) Close(c *gin.Context) {
	response.Success(c, currentSession(c).Modal.Close())
}
