package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cabgo/rider-web/internal/domain/booking"
)

// Cache memoizes resolved locations. Get methods return nil, nil on a miss.
type Cache interface {
	GetPlace(ctx context.Context, placeID string) (*booking.Location, error)
	SetPlace(ctx context.Context, placeID string, loc booking.Location) error
	GetPoint(ctx context.Context, point booking.Coordinates) (*booking.Location, error)
	SetPoint(ctx context.Context, point booking.Coordinates, loc booking.Location) error
}

// NoopCache never stores anything.
type NoopCache struct{}

func (NoopCache) GetPlace(context.Context, string) (*booking.Location, error) { return nil, nil }
func (NoopCache) SetPlace(context.Context, string, booking.Location) error    { return nil }
func (NoopCache) GetPoint(context.Context, booking.Coordinates) (*booking.Location, error) {
	return nil, nil
}
func (NoopCache) SetPoint(context.Context, booking.Coordinates, booking.Location) error { return nil }

// RedisCache stores resolved locations as JSON with a fixed TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to the given redis URL and verifies the connection.
func NewRedisCache(ctx context.Context, redisURL string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisCache{client: client, ttl: ttl}, nil
}

func placeKey(placeID string) string {
	return "place:" + placeID
}

// pointKey rounds to five decimals, roughly one metre.
func pointKey(p booking.Coordinates) string {
	return fmt.Sprintf("geo:%.5f,%.5f", p.Lat, p.Lng)
}

func (c *RedisCache) GetPlace(ctx context.Context, placeID string) (*booking.Location, error) {
	return c.get(ctx, placeKey(placeID))
}

func (c *RedisCache) SetPlace(ctx context.Context, placeID string, loc booking.Location) error {
	return c.set(ctx, placeKey(placeID), loc)
}

// GetPoint returns the cached address for a point. The cached coordinates are replaced
// by the requested ones so rounding never moves the pin.
func (c *RedisCache) GetPoint(ctx context.Context, point booking.Coordinates) (*booking.Location, error) {
	loc, err := c.get(ctx, pointKey(point))
	if err != nil || loc == nil {
		return loc, err
	}
	p := point
	loc.Coordinates = &p
	return loc, nil
}

func (c *RedisCache) SetPoint(ctx context.Context, point booking.Coordinates, loc booking.Location) error {
	return c.set(ctx, pointKey(point), loc)
}

// Ping checks the redis connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) get(ctx context.Context, key string) (*booking.Location, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	var loc booking.Location
	if err := json.Unmarshal(raw, &loc); err != nil {
		return nil, fmt.Errorf("decode cached location %s: %w", key, err)
	}
	if !loc.IsResolved() {
		return nil, nil
	}
	return &loc, nil
}

func (c *RedisCache) set(ctx context.Context, key string, loc booking.Location) error {
	raw, err := json.Marshal(loc)
	if err != nil {
		return fmt.Errorf("encode location: %w", err)
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
