package backend

import (
	"strings"
	"time"

	"github.com/cabgo/rider-web/internal/domain/booking"
)

// locationDTO is the flat location shape the backend speaks.
type locationDTO struct {
	AddressText string   `json:"addressText"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	PlaceID     string   `json:"placeId,omitempty"`
	City        string   `json:"city,omitempty"`
	State       string   `json:"state,omitempty"`
	Country     string   `json:"country,omitempty"`
}

func fromLocation(l booking.Location) locationDTO {
	dto := locationDTO{
		AddressText: l.AddressText,
		PlaceID:     l.PlaceID,
		City:        l.City,
		State:       l.State,
		Country:     l.Country,
	}
	if l.Coordinates != nil {
		lat, lng := l.Coordinates.Lat, l.Coordinates.Lng
		dto.Lat, dto.Lng = &lat, &lng
	}
	return dto
}

func (d locationDTO) toLocation() booking.Location {
	loc := booking.Location{
		AddressText: d.AddressText,
		PlaceID:     d.PlaceID,
		City:        d.City,
		State:       d.State,
		Country:     d.Country,
	}
	if d.Lat != nil && d.Lng != nil {
		loc.Coordinates = &booking.Coordinates{Lat: *d.Lat, Lng: *d.Lng}
	}
	return loc
}

type autocompleteResponse struct {
	Suggestions []booking.PlaceSuggestion `json:"suggestions"`
}

// placeResponse covers both place details and reverse geocoding; the latter may
// send the label as "address" instead of "addressText".
type placeResponse struct {
	AddressText string   `json:"addressText"`
	Address     string   `json:"address"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	City        string   `json:"city"`
	State       string   `json:"state"`
	Country     string   `json:"country"`
}

func (p placeResponse) toDetails() *booking.PlaceDetails {
	addr := strings.TrimSpace(p.AddressText)
	if addr == "" {
		addr = strings.TrimSpace(p.Address)
	}
	details := &booking.PlaceDetails{
		AddressText: addr,
		City:        p.City,
		State:       p.State,
		Country:     p.Country,
	}
	if p.Lat != nil && p.Lng != nil {
		details.Coordinates = &booking.Coordinates{Lat: *p.Lat, Lng: *p.Lng}
	}
	return details
}

type fareRequestDTO struct {
	Pickup        locationDTO           `json:"pickup"`
	Drop          locationDTO           `json:"drop"`
	VehicleType   booking.VehicleType   `json:"vehicleType"`
	TripType      booking.TripType      `json:"tripType"`
	Days          int                   `json:"days,omitempty"`
	Hours         int                   `json:"hours,omitempty"`
	PaymentMethod booking.PaymentMethod `json:"paymentMethod"`
}

type bookingRequestDTO struct {
	Pickup        locationDTO           `json:"pickup"`
	Drop          locationDTO           `json:"drop"`
	VehicleType   booking.VehicleType   `json:"vehicleType"`
	BookingType   booking.BookingType   `json:"bookingType"`
	ScheduledAt   *time.Time            `json:"scheduledAt"`
	PaymentMethod booking.PaymentMethod `json:"paymentMethod"`
	DistanceKm    float64               `json:"distanceKm"`
	EstimatedFare float64               `json:"estimatedFare"`
}

type bookingResponseDTO struct {
	BookingID     string              `json:"bookingId"`
	ID            string              `json:"id"`
	OTP           string              `json:"otp"`
	EstimatedFare float64             `json:"estimatedFare"`
	Pickup        locationDTO         `json:"pickup"`
	Drop          locationDTO         `json:"drop"`
	VehicleType   booking.VehicleType `json:"vehicleType"`
}

func (b bookingResponseDTO) toConfirmation() *booking.BookingConfirmation {
	id := b.BookingID
	if id == "" {
		id = b.ID
	}
	return &booking.BookingConfirmation{
		BookingID:     id,
		OTP:           b.OTP,
		EstimatedFare: b.EstimatedFare,
		Pickup:        b.Pickup.toLocation(),
		Drop:          b.Drop.toLocation(),
		VehicleType:   b.VehicleType,
	}
}

// User is the signed-in account as returned by the auth endpoints.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Role  string `json:"role"`
}

// AuthResult is the reply of every sign-in flow.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type otpSendRequest struct {
	Phone string `json:"phone"`
}

type otpVerifyRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"otp"`
}

type googleRequest struct {
	IDToken string `json:"idToken"`
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}
