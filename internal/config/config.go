package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServiceConfig holds all configuration for the rider web service.
type ServiceConfig struct {
	Port        string
	AppEnv      string
	Backend     BackendConfig
	Search      SearchConfig
	Map         MapConfig
	Geolocation GeolocationConfig
	TimeZone    *time.Location
	Session     SessionConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
	CORS        CORSConfig
}

// BackendConfig points at the booking backend API.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SearchConfig tunes place autocomplete.
type SearchConfig struct {
	Debounce time.Duration
	MinChars int
}

// MapConfig holds the map view defaults.
type MapConfig struct {
	DefaultCenterLat float64
	DefaultCenterLng float64
}

type GeolocationConfig struct {
	Timeout time.Duration
}

type SessionConfig struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

// RedisConfig enables the place resolution cache when URL is set.
type RedisConfig struct {
	URL      string
	PlaceTTL time.Duration
}

// KafkaConfig enables ride tracking events and rider analytics when Brokers is non-empty.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// CORSConfig lists the browser origins allowed to call the API. "*" allows any origin.
type CORSConfig struct {
	AllowedOrigins []string
}

// Enabled reports whether any broker is configured.
func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

const envPrefix = "RIDER"

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_PORT", ":8085")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("BACKEND_BASE_URL", "http://localhost:5000")
	v.SetDefault("BACKEND_TIMEOUT", "15s")
	v.SetDefault("SEARCH_DEBOUNCE", "500ms")
	v.SetDefault("SEARCH_MIN_CHARS", 3)
	v.SetDefault("DEFAULT_CENTER_LAT", 28.6139)
	v.SetDefault("DEFAULT_CENTER_LNG", 77.2090)
	v.SetDefault("GEOLOCATION_TIMEOUT", "10s")
	v.SetDefault("TIMEZONE", "Asia/Kolkata")
	v.SetDefault("SESSION_IDLE_TTL", "30m")
	v.SetDefault("SESSION_SWEEP_INTERVAL", "1m")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("PLACE_CACHE_TTL", "24h")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_GROUP_PREFIX", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
}

// Load reads configuration from RIDER_* environment variables and, when
// RIDER_CONFIG_FILE is set, from that file first.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	setDefaults(v)

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
			}
		}
	}

	tz, err := time.LoadLocation(v.GetString("TIMEZONE"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	cfg := &ServiceConfig{
		Port:   v.GetString("SERVICE_PORT"),
		AppEnv: v.GetString("APP_ENV"),
		Backend: BackendConfig{
			BaseURL: strings.TrimRight(v.GetString("BACKEND_BASE_URL"), "/"),
			Timeout: v.GetDuration("BACKEND_TIMEOUT"),
		},
		Search: SearchConfig{
			Debounce: v.GetDuration("SEARCH_DEBOUNCE"),
			MinChars: v.GetInt("SEARCH_MIN_CHARS"),
		},
		Map: MapConfig{
			DefaultCenterLat: v.GetFloat64("DEFAULT_CENTER_LAT"),
			DefaultCenterLng: v.GetFloat64("DEFAULT_CENTER_LNG"),
		},
		Geolocation: GeolocationConfig{Timeout: v.GetDuration("GEOLOCATION_TIMEOUT")},
		TimeZone:    tz,
		Session: SessionConfig{
			IdleTTL:       v.GetDuration("SESSION_IDLE_TTL"),
			SweepInterval: v.GetDuration("SESSION_SWEEP_INTERVAL"),
		},
		Redis: RedisConfig{
			URL:      v.GetString("REDIS_URL"),
			PlaceTTL: v.GetDuration("PLACE_CACHE_TTL"),
		},
		Kafka: KafkaConfig{
			Brokers:     splitList(v.GetString("KAFKA_BROKERS")),
			GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
		},
		CORS: CORSConfig{AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS"))},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *ServiceConfig) validate() error {
	if c.Backend.BaseURL == "" {
		return errors.New("BACKEND_BASE_URL is required")
	}
	if c.Search.Debounce < 0 {
		return errors.New("SEARCH_DEBOUNCE must not be negative")
	}
	if c.Search.MinChars < 1 {
		return errors.New("SEARCH_MIN_CHARS must be at least 1")
	}
	if c.Geolocation.Timeout <= 0 {
		return errors.New("GEOLOCATION_TIMEOUT must be positive")
	}
	if c.Session.IdleTTL <= 0 {
		return errors.New("SESSION_IDLE_TTL must be positive")
	}
	if c.Session.SweepInterval <= 0 {
		return errors.New("SESSION_SWEEP_INTERVAL must be positive")
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		return errors.New("CORS_ALLOWED_ORIGINS must list at least one origin")
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
