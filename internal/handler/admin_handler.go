package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/cabgo/rider-web/internal/application"
	"github.com/cabgo/rider-web/internal/common/response"
	"github.com/cabgo/rider-web/internal/domain/booking"
	"github.com/cabgo/rider-web/internal/domain/pricing"
)

// AdminPricingHandler handles the admin pricing panel.
type AdminPricingHandler struct {
	service *application.PricingService
}

// NewAdminPricingHandler creates a new AdminPricingHandler.
func NewAdminPricingHandler(service *application.PricingService) *AdminPricingHandler {
	return &AdminPricingHandler{service: service}
}

// RegisterRoutes registers admin pricing routes. Role checks happen in the service.
func (h *AdminPricingHandler) RegisterRoutes(r *gin.RouterGroup) {
	admin := r.Group("/admin")
	{
		admin.GET("/pricing", h.ListRates)
		admin.PUT("/pricing/:vehicleType", h.UpdateRate)
	}
}

// ListRates handles GET /api/v1/admin/pricing.
func (h *AdminPricingHandler) ListRates(c *gin.Context) {
	rates, err := h.service.ListRates(c.Request.Context(), currentSession(c).Identity())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, rates)
}

// UpdateRate handles PUT /api/v1/admin/pricing/:vehicleType.
func (h *AdminPricingHandler) UpdateRate(c *gin.Context) {
	var rate pricing.Rate
	if err := c.ShouldBindJSON(&rate); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	rate.VehicleType = booking.VehicleType(c.Param("vehicleType"))

	updated, err := h.service.UpdateRate(c.Request.Context(), currentSession(c).Identity(), rate)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, updated)
}
