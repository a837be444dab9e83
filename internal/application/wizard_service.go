package application

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cabgo/rider-web/internal/common/domain"
	"github.com/cabgo/rider-web/internal/domain/booking"
	"github.com/cabgo/rider-web/internal/domain/ride"
)

// BookingTracker starts tracking a confirmed booking.
type BookingTracker interface {
	Register(riderID string, conf booking.BookingConfirmation, scheduledAt *time.Time) (ride.View, error)
}

// WizardService drives one rider's booking wizard. Handlers are serialized by a mutex that
// is never held across backend calls; fare and booking calls each allow one in flight.
type WizardService struct {
	sessionID string
	fares     booking.FareCalculator
	bookings  booking.BookingCreator
	tracker   BookingTracker
	publisher EventPublisher
	location  *time.Location
	now       func() time.Time
	logger    *zap.Logger

	mu              sync.Mutex
	state           booking.State
	fareInFlight    bool
	bookingInFlight bool
}

// NewWizardService creates a wizard for one session. loc is the zone scheduled pickups are
// entered in.
func NewWizardService(
	sessionID string,
	fares booking.FareCalculator,
	bookings booking.BookingCreator,
	tracker BookingTracker,
	publisher EventPublisher,
	loc *time.Location,
	logger *zap.Logger,
) *WizardService {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &WizardService{
		sessionID: sessionID,
		fares:     fares,
		bookings:  bookings,
		tracker:   tracker,
		publisher: publisher,
		location:  loc,
		now:       time.Now,
		logger:    logger.With(zap.String("session_id", sessionID)),
		state:     booking.NewState(),
	}
}

// WizardView is the wizard state plus which actions are currently running.
type WizardView struct {
	booking.State
	// CountUnit is "days" or "hours" depending on the trip type.
	CountUnit       string `json:"countUnit"`
	CalculatingFare bool   `json:"calculatingFare"`
	ConfirmingRide  bool   `json:"confirmingBooking"`
}

func (s *WizardService) View() WizardView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Dispatch applies one event. On error the state is unchanged.
func (s *WizardService) Dispatch(ev booking.Event) (WizardView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := booking.Apply(s.state, ev)
	if err != nil {
		s.logger.Debug("wizard event rejected", zap.String("event", booking.EventName(ev)), zap.Error(err))
		return s.viewLocked(), err
	}
	if next.Revision != s.state.Revision {
		s.logger.Debug("fare invalidated", zap.String("event", booking.EventName(ev)), zap.Uint64("revision", next.Revision))
	}
	s.state = next
	return s.viewLocked(), nil
}

// CalculateFare prices the current selection and moves to the confirm step. Incomplete
// input is rejected before any backend call. A reply for parameters that changed while it
// was in flight is dropped.
func (s *WizardService) CalculateFare(ctx context.Context) (WizardView, error) {
	s.mu.Lock()
	if s.fareInFlight {
		s.mu.Unlock()
		return s.View(), domain.NewValidationError("fare calculation is already in progress")
	}
	req, err := booking.NewFareRequest(s.state)
	if err != nil {
		defer s.mu.Unlock()
		return s.viewLocked(), err
	}
	if s.state.Step != booking.StepVehicle {
		defer s.mu.Unlock()
		return s.viewLocked(), domain.NewInvalidStateError(s.state.Step.String(), "fare calculation")
	}
	revision := s.state.Revision
	s.fareInFlight = true
	s.mu.Unlock()

	quote, err := s.fares.CalculateFare(ctx, req)

	s.mu.Lock()
	s.fareInFlight = false
	if err != nil {
		defer s.mu.Unlock()
		s.logger.Warn("fare calculation failed", zap.Error(err))
		return s.viewLocked(), err
	}
	next, err := booking.Apply(s.state, booking.FareQuoted{Quote: *quote, Revision: revision})
	if err != nil {
		defer s.mu.Unlock()
		s.logger.Info("fare reply dropped", zap.Uint64("revision", revision), zap.Error(err))
		return s.viewLocked(), err
	}
	s.state = next
	view := s.viewLocked()
	s.mu.Unlock()

	s.logger.Info("fare calculated",
		zap.String("vehicle_type", string(quote.VehicleType)),
		zap.String("trip_type", string(quote.TripType)),
		zap.Float64("estimated_fare", quote.EstimatedFare),
	)
	if err := s.publisher.PublishFareQuoted(ctx, s.sessionID, *quote); err != nil {
		s.logger.Warn("failed to publish fare quoted event", zap.Error(err))
	}
	return view, nil
}

// ConfirmBooking places the booking. Without a valid identity the wizard is reset and
// AuthenticationRequired is returned. A missing fare or a scheduled pickup that is not in
// the future is rejected before any backend call. On success the wizard starts over.
func (s *WizardService) ConfirmBooking(ctx context.Context, identity *Identity) (*ride.View, error) {
	s.mu.Lock()
	if s.bookingInFlight {
		s.mu.Unlock()
		return nil, domain.NewValidationError("booking is already in progress")
	}
	now := s.now()
	if !identity.Valid(now) {
		s.state, _ = booking.Apply(s.state, booking.Reset{})
		s.mu.Unlock()
		return nil, domain.NewAuthenticationRequiredError("please sign in to book a ride")
	}
	req, err := booking.NewBookingRequest(s.state, now, s.location)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.bookingInFlight = true
	s.mu.Unlock()

	conf, err := s.bookings.CreateBooking(ctx, identity.Token, req)

	s.mu.Lock()
	s.bookingInFlight = false
	if err != nil {
		s.mu.Unlock()
		s.logger.Warn("booking creation failed", zap.Error(err))
		return nil, err
	}
	s.state, _ = booking.Apply(s.state, booking.Reset{})
	s.mu.Unlock()

	s.logger.Info("booking confirmed",
		zap.String("booking_id", conf.BookingID),
		zap.String("user_id", identity.UserID),
	)

	view, err := s.tracker.Register(identity.UserID, *conf, req.ScheduledAt)
	if err != nil {
		return nil, err
	}
	if err := s.publisher.PublishBookingConfirmed(ctx, identity.UserID, *conf); err != nil {
		s.logger.Warn("failed to publish booking confirmed event", zap.Error(err))
	}
	return &view, nil
}

func (s *WizardService) viewLocked() WizardView {
	return WizardView{
		State:           s.state,
		CountUnit:       s.state.Trip.CountUnit(),
		CalculatingFare: s.fareInFlight,
		ConfirmingRide:  s.bookingInFlight,
	}
}
