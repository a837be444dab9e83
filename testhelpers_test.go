//go:build integration

package main_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/cabgo/rider-web/internal/application"
	"github.com/cabgo/rider-web/internal/common/kafka"
	riderEvents "github.com/cabgo/rider-web/internal/events"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	RedisURL     string
	KafkaBrokers []string
	Cleanup      func()
}

// riderStack holds wired-up tracking and analytics components.
type riderStack struct {
	Tracking        *application.TrackingService
	Publisher       *riderEvents.AnalyticsPublisher
	Consumer        *riderEvents.RideEventConsumer
	CleanupProducer func()
}

// setupContainers starts Redis and Kafka testcontainers.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	redisReq := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor: wait.ForLog("Ready to accept connections").
			WithStartupTimeout(60 * time.Second),
	}
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: redisReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start Redis container")

	redisHost, err := redisContainer.Host(ctx)
	require.NoError(t, err)
	redisPort, err := redisContainer.MappedPort(ctx, "6379")
	require.NoError(t, err)

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	// Pre-create required topics.
	createTopics(t, kafkaBrokers, riderEvents.TopicRideEvents, riderEvents.TopicRiderEvents)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := redisContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Redis container: %v", err)
		}
	}

	return &testInfra{
		RedisURL:     fmt.Sprintf("redis://%s:%s/0", redisHost, redisPort.Port()),
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupRiderStack wires tracking, the ride event consumer and the analytics publisher.
func setupRiderStack(t *testing.T, brokers []string) *riderStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	producer := kafka.NewProducer(brokers, logger)
	trackingSvc := application.NewTrackingService(nil, logger)

	groupID := fmt.Sprintf("test-rider-%s", uuid.New().String()[:8])
	consumer := riderEvents.NewRideEventConsumer(brokers, groupID, trackingSvc, logger)

	return &riderStack{
		Tracking:        trackingSvc,
		Publisher:       riderEvents.NewAnalyticsPublisher(producer),
		Consumer:        consumer,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// fakeBackend serves the booking backend endpoints the wizard calls.
type fakeBackend struct {
	server       *httptest.Server
	detailsCalls atomic.Int32
}

func newFakeBackend(t *testing.T, bookingID string) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/maps/place-details", func(w http.ResponseWriter, r *http.Request) {
		fb.detailsCalls.Add(1)
		writeJSON(w, map[string]any{
			"addressText": "Connaught Place, New Delhi",
			"lat":         28.6315,
			"lng":         77.2167,
			"city":        "New Delhi",
		})
	})
	mux.HandleFunc("/api/fares/calculate", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"distanceKm":    12,
			"baseFare":      100,
			"pricePerKm":    11,
			"estimatedFare": 232,
		})
	})
	mux.HandleFunc("/api/bookings", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			writeJSON(w, map[string]any{"message": "unauthorized"})
			return
		}
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, map[string]any{
			"bookingId":     bookingID,
			"otp":           "4821",
			"estimatedFare": 232,
			"vehicleType":   "sedan",
			"pickup":        map[string]any{"addressText": "Connaught Place", "lat": 28.6315, "lng": 77.2167, "city": "New Delhi"},
			"drop":          map[string]any{"addressText": "IGI Airport T3", "lat": 28.5562, "lng": 77.1000, "city": "New Delhi"},
		})
	})

	fb.server = httptest.NewServer(mux)
	t.Cleanup(fb.server.Close)
	return fb
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, key, source, eventType string, data interface{}) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := kafka.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()

	ce, err := kafka.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, key, ce)
	require.NoError(t, err, "failed to publish event")
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
