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

// Notifier pushes tracking updates to connected riders.
type Notifier interface {
	Broadcast(bookingID string, view ride.View)
}

// RideStatusChanged is the payload of a ride status event from dispatch.
type RideStatusChanged struct {
	BookingID  string       `json:"bookingId"`
	Status     string       `json:"status"`
	Driver     *ride.Driver `json:"driver,omitempty"`
	OccurredAt time.Time    `json:"occurredAt"`
}

// DriverLocationUpdated is the payload of a driver position event.
type DriverLocationUpdated struct {
	BookingID  string    `json:"bookingId"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	RecordedAt time.Time `json:"recordedAt"`
}

// TrackingService keeps the live view of every booking confirmed through this instance.
type TrackingService struct {
	notifier Notifier
	now      func() time.Time
	logger   *zap.Logger

	mu    sync.RWMutex
	rides map[string]*ride.Tracking
}

// NewTrackingService creates a TrackingService. notifier may be nil.
func NewTrackingService(notifier Notifier, logger *zap.Logger) *TrackingService {
	return &TrackingService{
		notifier: notifier,
		now:      time.Now,
		logger:   logger,
		rides:    make(map[string]*ride.Tracking),
	}
}

// Register starts tracking a confirmed booking.
func (s *TrackingService) Register(riderID string, conf booking.BookingConfirmation, scheduledAt *time.Time) (ride.View, error) {
	t, err := ride.NewTracking(riderID, conf, scheduledAt, s.now().UTC())
	if err != nil {
		return ride.View{}, err
	}

	s.mu.Lock()
	s.rides[t.BookingID()] = t
	s.mu.Unlock()

	s.logger.Info("tracking booking", zap.String("booking_id", t.BookingID()), zap.String("rider_id", riderID))
	return t.ToView(), nil
}

// Get returns the tracking view of a booking owned by the identity. Admins may see any booking.
func (s *TrackingService) Get(bookingID string, identity *Identity) (ride.View, error) {
	if !identity.Valid(s.now()) {
		return ride.View{}, domain.NewAuthenticationRequiredError("please sign in to track your ride")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.rides[bookingID]
	if !ok {
		return ride.View{}, domain.NewNotFoundError("booking", bookingID)
	}
	if t.RiderID() != identity.UserID && !identity.IsAdmin() {
		return ride.View{}, domain.NewForbiddenError("this booking belongs to another rider")
	}
	return t.ToView(), nil
}

// HandleStatusChanged applies a dispatch status event. Events for unknown bookings are ignored.
func (s *TrackingService) HandleStatusChanged(ctx context.Context, ev RideStatusChanged) error {
	status, err := ride.ParseStatus(ev.Status)
	if err != nil {
		return domain.NewValidationError(err.Error())
	}
	at := ev.OccurredAt
	if at.IsZero() {
		at = s.now().UTC()
	}

	return s.update(ev.BookingID, func(t *ride.Tracking) error {
		return t.ApplyStatus(status, ev.Driver, at)
	})
}

// HandleDriverLocation records the driver's position. Events for unknown bookings are ignored.
func (s *TrackingService) HandleDriverLocation(ctx context.Context, ev DriverLocationUpdated) error {
	at := ev.RecordedAt
	if at.IsZero() {
		at = s.now().UTC()
	}

	return s.update(ev.BookingID, func(t *ride.Tracking) error {
		return t.MoveDriver(booking.Coordinates{Lat: ev.Lat, Lng: ev.Lng}, at)
	})
}

// Prune forgets finished rides last updated before cutoff.
func (s *TrackingService) Prune(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, t := range s.rides {
		if t.Status().IsTerminal() && t.UpdatedAt().Before(cutoff) {
			delete(s.rides, id)
			removed++
		}
	}
	return removed
}

func (s *TrackingService) update(bookingID string, apply func(t *ride.Tracking) error) error {
	s.mu.Lock()
	t, ok := s.rides[bookingID]
	if !ok {
		s.mu.Unlock()
		s.logger.Debug("ignoring event for untracked booking", zap.String("booking_id", bookingID))
		return nil
	}
	if err := apply(t); err != nil {
		s.mu.Unlock()
		return err
	}
	view := t.ToView()
	s.mu.Unlock()

	if s.notifier != nil {
		s.notifier.Broadcast(bookingID, view)
	}
	return nil
}
