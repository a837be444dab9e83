package events

import (
	"context"
	"fmt"

	"github.com/cabgo/rider-web/internal/common/kafka"
	"github.com/cabgo/rider-web/internal/domain/booking"
)

// EventWriter is the producer side used by the publisher.
type EventWriter interface {
	PublishEvent(ctx context.Context, topic, key string, event kafka.CloudEvent) error
}

// FareQuotedEvent is published whenever a rider receives a fare.
type FareQuotedEvent struct {
	SessionID       string              `json:"sessionId"`
	VehicleType     booking.VehicleType `json:"vehicleType"`
	TripType        booking.TripType    `json:"tripType"`
	DistanceKm      float64             `json:"distanceKm"`
	EstimatedFare   float64             `json:"estimatedFare"`
	Days            int                 `json:"days,omitempty"`
	Hours           int                 `json:"hours,omitempty"`
	DriverAllowance float64             `json:"driverAllowance,omitempty"`
}

// BookingConfirmedEvent is published when a booking placed through this service succeeds.
type BookingConfirmedEvent struct {
	BookingID     string              `json:"bookingId"`
	RiderID       string              `json:"riderId"`
	VehicleType   booking.VehicleType `json:"vehicleType"`
	EstimatedFare float64             `json:"estimatedFare"`
	PickupCity    string              `json:"pickupCity,omitempty"`
	DropCity      string              `json:"dropCity,omitempty"`
}

// AnalyticsPublisher writes rider funnel events to the rider topic.
type AnalyticsPublisher struct {
	writer EventWriter
}

func NewAnalyticsPublisher(writer EventWriter) *AnalyticsPublisher {
	return &AnalyticsPublisher{writer: writer}
}

// PublishFareQuoted implements application.EventPublisher.
func (p *AnalyticsPublisher) PublishFareQuoted(ctx context.Context, sessionID string, quote booking.FareQuote) error {
	return p.publish(ctx, RiderFareQuoted, sessionID, FareQuotedEvent{
		SessionID:       sessionID,
		VehicleType:     quote.VehicleType,
		TripType:        quote.TripType,
		DistanceKm:      quote.DistanceKm,
		EstimatedFare:   quote.EstimatedFare,
		Days:            quote.Days,
		Hours:           quote.Hours,
		DriverAllowance: quote.DriverAllowance,
	})
}

// PublishBookingConfirmed implements application.EventPublisher.
func (p *AnalyticsPublisher) PublishBookingConfirmed(ctx context.Context, riderID string, conf booking.BookingConfirmation) error {
	return p.publish(ctx, RiderBookingConfirmed, conf.BookingID, BookingConfirmedEvent{
		BookingID:     conf.BookingID,
		RiderID:       riderID,
		VehicleType:   conf.VehicleType,
		EstimatedFare: conf.EstimatedFare,
		PickupCity:    conf.Pickup.City,
		DropCity:      conf.Drop.City,
	})
}

func (p *AnalyticsPublisher) publish(ctx context.Context, eventType, key string, data any) error {
	event, err := kafka.NewCloudEvent(EventSource, eventType, data)
	if err != nil {
		return err
	}
	if err := p.writer.PublishEvent(ctx, TopicRiderEvents, key, event); err != nil {
		return fmt.Errorf("failed to publish %s: %w", eventType, err)
	}
	return nil
}
