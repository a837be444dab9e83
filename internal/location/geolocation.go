package location

import (
	"context"
	"strings"

	"github.com/cabgo/rider-web/internal/common/domain"
	"github.com/cabgo/rider-web/internal/domain/booking"
)

// Geolocator provides the device position.
type Geolocator interface {
	CurrentPosition(ctx context.Context) (booking.Coordinates, error)
}

// GeolocationPositionError codes as reported by browsers.
const (
	positionPermissionDenied = 1
	positionUnavailable      = 2
	positionTimeout          = 3
)

// ReportedPosition is a position (or failure) reported by the rider's browser.
// When no position was obtained, Code carries the browser's numeric error code and
// Error its reason, either by name ("PERMISSION_DENIED") or as the code ("1").
type ReportedPosition struct {
	Lat   *float64 `json:"lat"`
	Lng   *float64 `json:"lng"`
	Code  int      `json:"code"`
	Error string   `json:"error"`
}

// CurrentPosition implements Geolocator.
func (p ReportedPosition) CurrentPosition(ctx context.Context) (booking.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return booking.Coordinates{}, err
	}

	if p.Code != 0 || p.Error != "" {
		return booking.Coordinates{}, p.failure()
	}
	if p.Lat == nil || p.Lng == nil {
		return booking.Coordinates{}, domain.NewGeolocationUnavailableError()
	}

	pos := booking.Coordinates{Lat: *p.Lat, Lng: *p.Lng}
	if err := pos.Validate(); err != nil {
		return booking.Coordinates{}, domain.NewValidationError(err.Error())
	}
	return pos, nil
}

func (p ReportedPosition) failure() error {
	code := p.Code
	if code == 0 {
		switch normalizeReason(p.Error) {
		case "denied", "permission_denied", "permissiondenied", "1":
			code = positionPermissionDenied
		case "timeout", "3":
			code = positionTimeout
		default:
			code = positionUnavailable
		}
	}

	switch code {
	case positionPermissionDenied:
		return domain.NewGeolocationDeniedError()
	case positionTimeout:
		return domain.NewGeolocationTimeoutError()
	}
	return domain.NewGeolocationUnavailableError()
}

func normalizeReason(reason string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(reason)), "-", "_")
}
