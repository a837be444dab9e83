package booking

import (
	"fmt"
	"time"

	"github.com/cabgo/rider-web/internal/common/domain"
)

// State is the booking wizard's complete state. It is a value: Apply returns a new State
// and never mutates its input.
type State struct {
	Step     Step            `json:"step"`
	Pickup   *Location       `json:"pickup"`
	Drop     *Location       `json:"drop"`
	Vehicle  *VehicleOption  `json:"vehicle"`
	Trip     TripParameters  `json:"trip"`
	Schedule BookingSchedule `json:"schedule"`
	Fare     *FareQuote      `json:"fare"`

	// Revision increases on every change that invalidates a fare.
	Revision uint64 `json:"revision"`
}

// NewState returns an empty wizard on the locations step.
func NewState() State {
	return State{
		Step:     StepLocations,
		Trip:     DefaultTripParameters(),
		Schedule: BookingSchedule{Type: BookingNow},
	}
}

// Event is an input to the wizard state machine.
type Event interface {
	eventName() string
}

type (
	// SetPickup replaces the pickup location. Unresolved text is accepted but blocks advancing.
	SetPickup struct{ Location Location }
	// SetDrop replaces the drop location.
	SetDrop struct{ Location Location }
	// SelectVehicle picks a catalog vehicle.
	SelectVehicle struct{ VehicleType VehicleType }
	// ChangeTripType switches trip type and resets the count to its minimum.
	ChangeTripType   struct{ TripType TripType }
	IncrementCount   struct{}
	DecrementCount   struct{}
	SetPaymentMethod struct{ Method PaymentMethod }
	SetSchedule      struct{ Schedule BookingSchedule }
	// Advance moves forward one step if the current step's requirements hold.
	Advance struct{}
	GoBack  struct{}
	// FareQuoted stores a quote computed for the given revision and moves to the confirm step.
	FareQuoted struct {
		Quote    FareQuote
		Revision uint64
	}
	Reset struct{}
)

func (SetPickup) eventName() string        { return "set_pickup" }
func (SetDrop) eventName() string          { return "set_drop" }
func (SelectVehicle) eventName() string    { return "select_vehicle" }
func (ChangeTripType) eventName() string   { return "change_trip_type" }
func (IncrementCount) eventName() string   { return "increment_count" }
func (DecrementCount) eventName() string   { return "decrement_count" }
func (SetPaymentMethod) eventName() string { return "set_payment_method" }
func (SetSchedule) eventName() string      { return "set_schedule" }
func (Advance) eventName() string          { return "advance" }
func (GoBack) eventName() string           { return "go_back" }
func (FareQuoted) eventName() string       { return "fare_quoted" }
func (Reset) eventName() string            { return "reset" }

// EventName returns a stable identifier for logging.
func EventName(ev Event) string { return ev.eventName() }

// ErrStaleFare is returned when a fare reply was computed for parameters that have since changed.
var ErrStaleFare = domain.NewValidationError("trip details changed while the fare was being calculated, please recalculate")

// Apply is the wizard's transition function.
func Apply(s State, ev Event) (State, error) {
	switch e := ev.(type) {
	case SetPickup:
		if sameLocation(s.Pickup, &e.Location) {
			return s, nil
		}
		loc := e.Location
		s.Pickup = &loc
		return s.invalidateFare(), nil

	case SetDrop:
		if sameLocation(s.Drop, &e.Location) {
			return s, nil
		}
		loc := e.Location
		s.Drop = &loc
		return s.invalidateFare(), nil

	case SelectVehicle:
		opt, ok := FindVehicle(e.VehicleType)
		if !ok {
			return s, domain.NewValidationError(fmt.Sprintf("invalid vehicle type: %s", e.VehicleType))
		}
		if s.Vehicle != nil && s.Vehicle.ID == opt.ID {
			return s, nil
		}
		s.Vehicle = &opt
		return s.invalidateFare(), nil

	case ChangeTripType:
		if e.TripType == s.Trip.TripType {
			return s, nil
		}
		trip, err := s.Trip.WithTripType(e.TripType)
		if err != nil {
			return s, domain.NewValidationError(err.Error())
		}
		s.Trip = trip
		return s.invalidateFare(), nil

	case IncrementCount:
		return s.withTrip(s.Trip.Increment()), nil

	case DecrementCount:
		return s.withTrip(s.Trip.Decrement()), nil

	case SetPaymentMethod:
		if !e.Method.IsValid() {
			return s, domain.NewValidationError(fmt.Sprintf("invalid payment method: %s", e.Method))
		}
		s.Trip.PaymentMethod = e.Method
		return s, nil

	case SetSchedule:
		if !e.Schedule.Type.IsValid() {
			return s, domain.NewValidationError(fmt.Sprintf("invalid booking type: %s", e.Schedule.Type))
		}
		s.Schedule = e.Schedule
		return s, nil

	case Advance:
		return s.advance()

	case GoBack:
		if !s.Step.CanTransitionTo(s.Step - 1) {
			return s, domain.NewInvalidStateError(s.Step.String(), (s.Step - 1).String())
		}
		s.Step--
		return s, nil

	case FareQuoted:
		if e.Revision != s.Revision {
			return s, ErrStaleFare
		}
		if s.Step != StepVehicle {
			return s, domain.NewInvalidStateError(s.Step.String(), StepConfirm.String())
		}
		if _, err := NewFareRequest(s); err != nil {
			return s, err
		}
		quote := e.Quote
		s.Fare = &quote
		s.Step = StepConfirm
		return s, nil

	case Reset:
		next := NewState()
		next.Revision = s.Revision + 1
		return next, nil
	}

	return s, fmt.Errorf("unknown wizard event %T", ev)
}

func (s State) advance() (State, error) {
	switch s.Step {
	case StepLocations:
		if s.Pickup == nil || !s.Pickup.IsResolved() {
			return s, domain.NewValidationError("please select a pickup location from the suggestions or the map")
		}
		if s.Drop == nil || !s.Drop.IsResolved() {
			return s, domain.NewValidationError("please select a drop location from the suggestions or the map")
		}
		s.Step = StepVehicle
		return s, nil
	case StepVehicle:
		if s.Vehicle == nil {
			return s, domain.NewValidationError("please select a vehicle")
		}
		if s.Fare == nil {
			return s, domain.NewValidationError("please calculate the fare first")
		}
		s.Step = StepConfirm
		return s, nil
	}
	return s, domain.NewInvalidStateError(s.Step.String(), (s.Step + 1).String())
}

func (s State) withTrip(trip TripParameters) State {
	if trip == s.Trip {
		return s
	}
	s.Trip = trip
	return s.invalidateFare()
}

// invalidateFare drops the quote and bumps the revision. A confirm page without a fare
// falls back to the vehicle page.
func (s State) invalidateFare() State {
	s.Revision++
	s.Fare = nil
	if s.Step == StepConfirm {
		s.Step = StepVehicle
	}
	return s
}

// NewBookingRequest checks the confirm-step requirements and builds the booking payload.
// now and loc are used to resolve scheduled pickups.
func NewBookingRequest(s State, now time.Time, loc *time.Location) (BookingRequest, error) {
	if s.Fare == nil {
		return BookingRequest{}, domain.NewValidationError("please calculate the fare before confirming")
	}
	if s.Step != StepConfirm {
		return BookingRequest{}, domain.NewInvalidStateError(s.Step.String(), "booking")
	}
	fareReq, err := NewFareRequest(s)
	if err != nil {
		return BookingRequest{}, err
	}
	scheduledAt, err := s.Schedule.PickupTime(now, loc)
	if err != nil {
		return BookingRequest{}, err
	}

	bookingType := s.Schedule.Type
	if bookingType == "" {
		bookingType = BookingNow
	}
	return BookingRequest{
		Pickup:        fareReq.Pickup,
		Drop:          fareReq.Drop,
		VehicleType:   fareReq.VehicleType,
		BookingType:   bookingType,
		ScheduledAt:   scheduledAt,
		PaymentMethod: s.Trip.PaymentMethod,
		DistanceKm:    s.Fare.DistanceKm,
		EstimatedFare: s.Fare.EstimatedFare,
	}, nil
}
