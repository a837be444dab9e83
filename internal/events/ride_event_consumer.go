package events

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/cabgo/rider-web/internal/application"
	"github.com/cabgo/rider-web/internal/common/kafka"
)

// RideEventHandler applies ride events to tracked bookings.
type RideEventHandler interface {
	HandleStatusChanged(ctx context.Context, ev application.RideStatusChanged) error
	HandleDriverLocation(ctx context.Context, ev application.DriverLocationUpdated) error
}

// RideEventConsumer listens to dispatch's ride events and updates live tracking.
type RideEventConsumer struct {
	consumer *kafka.Consumer
	handler  RideEventHandler
	logger   *zap.Logger
}

// NewRideEventConsumer creates a new RideEventConsumer.
func NewRideEventConsumer(
	brokers []string,
	groupID string,
	handler RideEventHandler,
	logger *zap.Logger,
) *RideEventConsumer {
	return &RideEventConsumer{
		consumer: kafka.NewConsumer(brokers, groupID, TopicRideEvents, logger),
		handler:  handler,
		logger:   logger,
	}
}

// Start begins consuming ride events. This blocks until the context is cancelled.
func (c *RideEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

func (c *RideEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *RideEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from ride topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}
	return c.dispatch(ctx, cloudEvent)
}

func (c *RideEventConsumer) dispatch(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	switch cloudEvent.Type {
	case RideStatusChanged:
		var evt application.RideStatusChanged
		if err := cloudEvent.ParseData(&evt); err != nil {
			c.logger.Error("failed to parse ride status event data", zap.Error(err))
			return nil
		}
		c.logger.Info("processing ride status change",
			zap.String("booking_id", evt.BookingID),
			zap.String("status", evt.Status),
		)
		return c.handler.HandleStatusChanged(ctx, evt)

	case RideDriverLocation:
		var evt application.DriverLocationUpdated
		if err := cloudEvent.ParseData(&evt); err != nil {
			c.logger.Error("failed to parse driver location event data", zap.Error(err))
			return nil
		}
		return c.handler.HandleDriverLocation(ctx, evt)

	default:
		c.logger.Debug("ignoring unhandled ride event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}
