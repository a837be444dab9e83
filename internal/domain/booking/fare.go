package booking

import "github.com/cabgo/rider-web/internal/common/domain"

// FareQuote is the backend's price breakdown for one pickup/drop/vehicle/trip combination.
type FareQuote struct {
	TripType        TripType    `json:"tripType"`
	VehicleType     VehicleType `json:"vehicleType"`
	DistanceKm      float64     `json:"distanceKm"`
	PricePerKm      float64     `json:"pricePerKm"`
	BaseFare        float64     `json:"baseFare"`
	EstimatedFare   float64     `json:"estimatedFare"`
	Days            int         `json:"days,omitempty"`
	Nights          int         `json:"nights,omitempty"`
	DriverAllowance float64     `json:"driverAllowance,omitempty"`
	Hours           int         `json:"hours,omitempty"`
}

// FareRequest is what the fare endpoint needs. Days is set for day-based trips, Hours for rentals.
type FareRequest struct {
	Pickup        Location
	Drop          Location
	VehicleType   VehicleType
	TripType      TripType
	Days          int
	Hours         int
	PaymentMethod PaymentMethod
}

// NewFareRequest builds the request from the wizard state, rejecting incomplete input.
func NewFareRequest(s State) (FareRequest, error) {
	if s.Pickup == nil || !s.Pickup.IsResolved() {
		return FareRequest{}, domain.NewValidationError("please select a pickup location from the suggestions or the map")
	}
	if s.Drop == nil || !s.Drop.IsResolved() {
		return FareRequest{}, domain.NewValidationError("please select a drop location from the suggestions or the map")
	}
	if s.Vehicle == nil {
		return FareRequest{}, domain.NewValidationError("please select a vehicle")
	}

	req := FareRequest{
		Pickup:        *s.Pickup,
		Drop:          *s.Drop,
		VehicleType:   s.Vehicle.ID,
		TripType:      s.Trip.TripType,
		PaymentMethod: s.Trip.PaymentMethod,
	}
	switch {
	case s.Trip.TripType.UsesHours():
		req.Hours = s.Trip.Days
	case s.Trip.TripType.UsesDays():
		req.Days = s.Trip.Days
	}
	return req, nil
}
