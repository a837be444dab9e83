package booking

import (
	"context"
	"time"
)

// FareCalculator prices a trip. The backend owns the fare math.
type FareCalculator interface {
	CalculateFare(ctx context.Context, req FareRequest) (*FareQuote, error)
}

// BookingCreator places a booking on behalf of an authenticated rider.
type BookingCreator interface {
	CreateBooking(ctx context.Context, token string, req BookingRequest) (*BookingConfirmation, error)
}

// BookingRequest is the payload for booking creation.
type BookingRequest struct {
	Pickup        Location
	Drop          Location
	VehicleType   VehicleType
	BookingType   BookingType
	ScheduledAt   *time.Time
	PaymentMethod PaymentMethod
	DistanceKm    float64
	EstimatedFare float64
}

// BookingConfirmation is what the backend returns for a placed booking.
type BookingConfirmation struct {
	BookingID     string      `json:"bookingId"`
	OTP           string      `json:"otp"`
	EstimatedFare float64     `json:"estimatedFare"`
	Pickup        Location    `json:"pickup"`
	Drop          Location    `json:"drop"`
	VehicleType   VehicleType `json:"vehicleType"`
}
