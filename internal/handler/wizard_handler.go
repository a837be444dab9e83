package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/cabgo/rider-web/internal/common/domain"
	"github.com/cabgo/rider-web/internal/common/response"
	"github.com/cabgo/rider-web/internal/domain/booking"
)

// PlaceResolver resolves wizard location input.
type PlaceResolver interface {
	ResolvePlace(ctx context.Context, placeID string) (booking.Location, error)
	ResolveCoordinates(ctx context.Context, lat, lng float64) (booking.Location, error)
}

// WizardHandler handles HTTP requests for the booking wizard.
type WizardHandler struct {
	resolver PlaceResolver
}

// NewWizardHandler creates a new WizardHandler.
func NewWizardHandler(resolver PlaceResolver) *WizardHandler {
	return &WizardHandler{resolver: resolver}
}

// RegisterRoutes registers all wizard routes on the given router group.
func (h *WizardHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/vehicles", h.ListVehicles)

	wizard := r.Group("/wizard")
	{
		wizard.GET("", h.GetWizard)
		wizard.PUT("/pickup", h.SetPickup)
		wizard.PUT("/drop", h.SetDrop)
		wizard.PUT("/vehicle", h.SelectVehicle)
		wizard.PUT("/trip-type", h.ChangeTripType)
		wizard.POST("/count/increment", h.dispatch(booking.IncrementCount{}))
		wizard.POST("/count/decrement", h.dispatch(booking.DecrementCount{}))
		wizard.PUT("/payment-method", h.SetPaymentMethod)
		wizard.PUT("/schedule", h.SetSchedule)
		wizard.POST("/next", h.dispatch(booking.Advance{}))
		wizard.POST("/back", h.dispatch(booking.GoBack{}))
		wizard.POST("/reset", h.dispatch(booking.Reset{}))
		wizard.POST("/fare", h.CalculateFare)
		wizard.POST("/confirm", h.ConfirmBooking)
	}
}

// LocationInput selects a location by place id, by point, or as free text.
type LocationInput struct {
	PlaceID string   `json:"placeId"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
	Text    string   `json:"text"`
}

type vehicleInput struct {
	VehicleType booking.VehicleType `json:"vehicleType" binding:"required"`
}

type tripTypeInput struct {
	TripType booking.TripType `json:"tripType" binding:"required"`
}

type paymentMethodInput struct {
	PaymentMethod booking.PaymentMethod `json:"paymentMethod" binding:"required"`
}

// ListVehicles handles GET /api/v1/vehicles.
func (h *WizardHandler) ListVehicles(c *gin.Context) {
	response.Success(c, booking.Vehicles())
}

// GetWizard handles GET /api/v1/wizard.
func (h *WizardHandler) GetWizard(c *gin.Context) {
	response.Success(c, currentSession(c).Wizard.View())
}

// SetPickup handles PUT /api/v1/wizard/pickup.
func (h *WizardHandler) SetPickup(c *gin.Context) {
	h.setLocation(c, func(loc booking.Location) booking.Event { return booking.SetPickup{Location: loc} })
}

// SetDrop handles PUT /api/v1/wizard/drop.
func (h *WizardHandler) SetDrop(c *gin.Context) {
	h.setLocation(c, func(loc booking.Location) booking.Event { return booking.SetDrop{Location: loc} })
}

func (h *WizardHandler) setLocation(c *gin.Context, event func(booking.Location) booking.Event) {
	var req LocationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	loc, err := h.resolveInput(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.apply(c, event(loc))
}

func (h *WizardHandler) resolveInput(ctx context.Context, in LocationInput) (booking.Location, error) {
	switch {
	case in.PlaceID != "":
		return h.resolver.ResolvePlace(ctx, in.PlaceID)
	case in.Lat != nil && in.Lng != nil:
		return h.resolver.ResolveCoordinates(ctx, *in.Lat, *in.Lng)
	case in.Lat != nil || in.Lng != nil:
		return booking.Location{}, domain.NewValidationError("both lat and lng are required")
	default:
		return booking.TextLocation(in.Text), nil
	}
}

// SelectVehicle handles PUT /api/v1/wizard/vehicle.
func (h *WizardHandler) SelectVehicle(c *gin.Context) {
	var req vehicleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	h.apply(c, booking.SelectVehicle{VehicleType: req.VehicleType})
}

// ChangeTripType handles PUT /api/v1/wizard/trip-type.
func (h *WizardHandler) ChangeTripType(c *gin.Context) {
	var req tripTypeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	h.apply(c, booking.ChangeTripType{TripType: req.TripType})
}

// SetPaymentMethod handles PUT /api/v1/wizard/payment-method.
func (h *WizardHandler) SetPaymentMethod(c *gin.Context) {
	var req paymentMethodInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	h.apply(c, booking.SetPaymentMethod{Method: req.PaymentMethod})
}

// SetSchedule handles PUT /api/v1/wizard/schedule.
func (h *WizardHandler) SetSchedule(c *gin.Context) {
	var req booking.BookingSchedule
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	h.apply(c, booking.SetSchedule{Schedule: req})
}

// CalculateFare handles POST /api/v1/wizard/fare.
func (h *WizardHandler) CalculateFare(c *gin.Context) {
	view, err := currentSession(c).Wizard.CalculateFare(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// ConfirmBooking handles POST /api/v1/wizard/confirm.
func (h *WizardHandler) ConfirmBooking(c *gin.Context) {
	sess := currentSession(c)
	result, err := sess.Wizard.ConfirmBooking(c.Request.Context(), sess.Identity())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

func (h *WizardHandler) dispatch(ev booking.Event) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.apply(c, ev)
	}
}

func (h *WizardHandler) apply(c *gin.Context, ev booking.Event) {
	view, err := currentSession(c).Wizard.Dispatch(ev)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}
