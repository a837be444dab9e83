package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cabgo/rider-web/internal/application"
	"github.com/cabgo/rider-web/internal/common/kafka"
	"github.com/cabgo/rider-web/internal/domain/booking"
)

type recordingHandler struct {
	statuses  []application.RideStatusChanged
	locations []application.DriverLocationUpdated
	err       error
}

func (h *recordingHandler) HandleStatusChanged(_ context.Context, ev application.RideStatusChanged) error {
	h.statuses = append(h.statuses, ev)
	return h.err
}

func (h *recordingHandler) HandleDriverLocation(_ context.Context, ev application.DriverLocationUpdated) error {
	h.locations = append(h.locations, ev)
	return h.err
}

func newTestConsumer(h RideEventHandler) *RideEventConsumer {
	return NewRideEventConsumer([]string{"localhost:9092"}, "test-group", h, zap.NewNop())
}

func message(t *testing.T, eventType string, data any) kafkago.Message {
	t.Helper()
	ce, err := kafka.NewCloudEvent("dispatch", eventType, data)
	require.NoError(t, err)
	raw, err := json.Marshal(ce)
	require.NoError(t, err)
	return kafkago.Message{Value: raw}
}

func TestRideEventConsumer_DispatchesByType(t *testing.T) {
	h := &recordingHandler{}
	c := newTestConsumer(h)
	defer c.Close()
	ctx := context.Background()

	occurred := time.Date(2026, 3, 10, 9, 5, 0, 0, time.UTC)
	require.NoError(t, c.handleMessage(ctx, message(t, RideStatusChanged, application.RideStatusChanged{
		BookingID: "bk-1", Status: "driver_assigned", OccurredAt: occurred,
	})))
	require.NoError(t, c.handleMessage(ctx, message(t, RideDriverLocation, application.DriverLocationUpdated{
		BookingID: "bk-1", Lat: 28.62, Lng: 77.21,
	})))
	require.NoError(t, c.handleMessage(ctx, message(t, "ride.fare_adjusted", map[string]any{"bookingId": "bk-1"})))

	require.Len(t, h.statuses, 1)
	assert.Equal(t, "driver_assigned", h.statuses[0].Status)
	assert.True(t, h.statuses[0].OccurredAt.Equal(occurred))
	require.Len(t, h.locations, 1)
	assert.Equal(t, 28.62, h.locations[0].Lat)
}

func TestRideEventConsumer_SkipsMalformedMessages(t *testing.T) {
	h := &recordingHandler{}
	c := newTestConsumer(h)
	defer c.Close()

	assert.NoError(t, c.handleMessage(context.Background(), kafkago.Message{Value: []byte("not json")}))
	assert.NoError(t, c.handleMessage(context.Background(), message(t, RideStatusChanged, "just a string")))
	assert.Empty(t, h.statuses)
}

func TestRideEventConsumer_PropagatesHandlerErrors(t *testing.T) {
	h := &recordingHandler{err: errors.New("boom")}
	c := newTestConsumer(h)
	defer c.Close()

	err := c.handleMessage(context.Background(), message(t, RideStatusChanged, application.RideStatusChanged{BookingID: "bk-1", Status: "cancelled"}))
	assert.Error(t, err)
}

type publishedEvent struct {
	topic string
	key   string
	event kafka.CloudEvent
}

type recordingWriter struct {
	events []publishedEvent
	err    error
}

func (w *recordingWriter) PublishEvent(_ context.Context, topic, key string, event kafka.CloudEvent) error {
	w.events = append(w.events, publishedEvent{topic: topic, key: key, event: event})
	return w.err
}

func TestAnalyticsPublisher(t *testing.T) {
	w := &recordingWriter{}
	p := NewAnalyticsPublisher(w)
	ctx := context.Background()

	require.NoError(t, p.PublishFareQuoted(ctx, "sess-1", booking.FareQuote{
		VehicleType: booking.VehicleSedan, TripType: booking.TripOneWay, DistanceKm: 12, EstimatedFare: 232,
	}))
	require.NoError(t, p.PublishBookingConfirmed(ctx, "rider-7", booking.BookingConfirmation{
		BookingID:     "bk-1",
		EstimatedFare: 232,
		VehicleType:   booking.VehicleSedan,
		Pickup:        booking.Location{AddressText: "CP", City: "New Delhi"},
		Drop:          booking.Location{AddressText: "Sector 29", City: "Gurugram"},
	}))

	require.Len(t, w.events, 2)

	fare := w.events[0]
	assert.Equal(t, TopicRiderEvents, fare.topic)
	assert.Equal(t, "sess-1", fare.key)
	assert.Equal(t, RiderFareQuoted, fare.event.Type)
	assert.Equal(t, EventSource, fare.event.Source)
	var fareData FareQuotedEvent
	require.NoError(t, fare.event.ParseData(&fareData))
	assert.Equal(t, 232.0, fareData.EstimatedFare)

	confirmed := w.events[1]
	assert.Equal(t, "bk-1", confirmed.key)
	var bookingData BookingConfirmedEvent
	require.NoError(t, confirmed.event.ParseData(&bookingData))
	assert.Equal(t, "rider-7", bookingData.RiderID)
	assert.Equal(t, "Gurugram", bookingData.DropCity)
}

func TestAnalyticsPublisher_WrapsWriterErrors(t *testing.T) {
	p := NewAnalyticsPublisher(&recordingWriter{err: errors.New("broker down")})
	err := p.PublishFareQuoted(context.Background(), "sess-1", booking.FareQuote{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), RiderFareQuoted)
}
