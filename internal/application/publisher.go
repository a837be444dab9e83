package application

import (
	"context"

	"github.com/cabgo/rider-web/internal/domain/booking"
)

// EventPublisher emits rider analytics events. Failures are logged by callers and never
// affect the rider's flow.
type EventPublisher interface {
	PublishFareQuoted(ctx context.Context, sessionID string, quote booking.FareQuote) error
	PublishBookingConfirmed(ctx context.Context, riderID string, conf booking.BookingConfirmation) error
}

// NoopPublisher drops every event. Used when Kafka is not configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishFareQuoted(context.Context, string, booking.FareQuote) error {
	return nil
}

func (NoopPublisher) PublishBookingConfirmed(context.Context, string, booking.BookingConfirmation) error {
	return nil
}
