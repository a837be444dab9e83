package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cabgo/rider-web/internal/application"
	"github.com/cabgo/rider-web/internal/common/response"
	"github.com/cabgo/rider-web/internal/tracking"
)

// TrackingHandler serves the live ride view.
type TrackingHandler struct {
	service *application.TrackingService
	hub     *tracking.Hub
	logger  *zap.Logger
}

func NewTrackingHandler(service *application.TrackingService, hub *tracking.Hub, logger *zap.Logger) *TrackingHandler {
	return &TrackingHandler{service: service, hub: hub, logger: logger}
}

// RegisterRoutes registers tracking routes on the given router group.
func (h *TrackingHandler) RegisterRoutes(r *gin.RouterGroup) {
	t := r.Group("/tracking")
	{
		t.GET("/:bookingId", h.GetTracking)
		t.GET("/:bookingId/ws", h.Watch)
	}
}

// GetTracking handles GET /api/v1/tracking/:bookingId.
func (h *TrackingHandler) GetTracking(c *gin.Context) {
	view, err := h.service.Get(c.Param("bookingId"), currentSession(c).Identity())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// Watch handles GET /api/v1/tracking/:bookingId/ws and streams updates until the socket closes.
func (h *TrackingHandler) Watch(c *gin.Context) {
	bookingID := c.Param("bookingId")
	view, err := h.service.Get(bookingID, currentSession(c).Identity())
	if err != nil {
		response.Error(c, err)
		return
	}

	conn, err := tracking.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.String("booking_id", bookingID), zap.Error(err))
		return
	}
	h.hub.Attach(bookingID, conn, view)
}
