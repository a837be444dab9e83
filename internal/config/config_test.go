package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8085", cfg.Port)
	assert.Equal(t, 500*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, 3, cfg.Search.MinChars)
	assert.Equal(t, 28.6139, cfg.Map.DefaultCenterLat)
	assert.Equal(t, "Asia/Kolkata", cfg.TimeZone.String())
	assert.False(t, cfg.Kafka.Enabled())
	assert.Empty(t, cfg.Redis.URL)
	assert.Equal(t, time.Minute, cfg.Session.SweepInterval)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("RIDER_BACKEND_BASE_URL", "https://api.example.com/")
	t.Setenv("RIDER_SEARCH_DEBOUNCE", "250ms")
	t.Setenv("RIDER_KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("RIDER_REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("RIDER_TIMEZONE", "UTC")
	t.Setenv("RIDER_CORS_ALLOWED_ORIGINS", "https://ride.example.com,https://admin.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, 250*time.Millisecond, cfg.Search.Debounce)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, "redis://localhost:6379/1", cfg.Redis.URL)
	assert.Equal(t, time.UTC, cfg.TimeZone)
	assert.Equal(t, []string{"https://ride.example.com", "https://admin.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"unknown timezone", "RIDER_TIMEZONE", "Mars/Olympus"},
		{"no min chars", "RIDER_SEARCH_MIN_CHARS", "0"},
		{"no geolocation timeout", "RIDER_GEOLOCATION_TIMEOUT", "0s"},
		{"zero sweep interval", "RIDER_SESSION_SWEEP_INTERVAL", "0s"},
		{"negative sweep interval", "RIDER_SESSION_SWEEP_INTERVAL", "-1m"},
		{"no cors origins", "RIDER_CORS_ALLOWED_ORIGINS", " , "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
