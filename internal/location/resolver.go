// Package location turns rider input (search text, place ids, map pins, device
// positions) into resolved booking locations.
package location

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cabgo/rider-web/internal/common/domain"
	"github.com/cabgo/rider-web/internal/domain/booking"
)

// PlacesAPI is the subset of the backend used for place lookups.
type PlacesAPI interface {
	SearchPlaces(ctx context.Context, input string) ([]booking.PlaceSuggestion, error)
	PlaceDetails(ctx context.Context, placeID string) (*booking.PlaceDetails, error)
	ReverseGeocode(ctx context.Context, lat, lng float64) (*booking.PlaceDetails, error)
}

// Resolver resolves place ids and coordinates, consulting an optional cache first.
type Resolver struct {
	api        PlacesAPI
	cache      Cache
	geoTimeout time.Duration
	logger     *zap.Logger
}

// NewResolver creates a Resolver. A nil cache disables caching.
func NewResolver(api PlacesAPI, cache Cache, geoTimeout time.Duration, logger *zap.Logger) *Resolver {
	if cache == nil {
		cache = NoopCache{}
	}
	return &Resolver{
		api:        api,
		cache:      cache,
		geoTimeout: geoTimeout,
		logger:     logger,
	}
}

// ResolvePlace looks up an autocomplete candidate. A lookup without coordinates is a
// ResolutionError; the rider should retry or use the map.
func (r *Resolver) ResolvePlace(ctx context.Context, placeID string) (booking.Location, error) {
	placeID = strings.TrimSpace(placeID)
	if placeID == "" {
		return booking.Location{}, domain.NewValidationError("place id is required")
	}

	if cached, err := r.cache.GetPlace(ctx, placeID); err != nil {
		r.logger.Warn("place cache read failed", zap.String("place_id", placeID), zap.Error(err))
	} else if cached != nil {
		return *cached, nil
	}

	details, err := r.api.PlaceDetails(ctx, placeID)
	if err != nil {
		return booking.Location{}, domain.NewResolutionError("could not load this place, please try again or pick it on the map", err)
	}
	if details == nil || details.Coordinates == nil || details.Coordinates.Validate() != nil {
		return booking.Location{}, domain.NewResolutionError("this place has no map position, please choose another suggestion or pick it on the map", nil)
	}
	if strings.TrimSpace(details.AddressText) == "" {
		return booking.Location{}, domain.NewResolutionError("this place has no address, please choose another suggestion or pick it on the map", nil)
	}

	coords := *details.Coordinates
	loc := booking.Location{
		AddressText: details.AddressText,
		Coordinates: &coords,
		PlaceID:     placeID,
		City:        details.City,
		State:       details.State,
		Country:     details.Country,
	}
	if err := r.cache.SetPlace(ctx, placeID, loc); err != nil {
		r.logger.Warn("place cache write failed", zap.String("place_id", placeID), zap.Error(err))
	}
	return loc, nil
}

// ResolveCoordinates reverse geocodes a point. When the lookup fails the point is kept
// with the "Current Location" label instead of failing.
func (r *Resolver) ResolveCoordinates(ctx context.Context, lat, lng float64) (booking.Location, error) {
	point := booking.Coordinates{Lat: lat, Lng: lng}
	if err := point.Validate(); err != nil {
		return booking.Location{}, domain.NewValidationError(err.Error())
	}

	if cached, err := r.cache.GetPoint(ctx, point); err != nil {
		r.logger.Warn("geocode cache read failed", zap.Error(err))
	} else if cached != nil {
		return *cached, nil
	}

	details, err := r.api.ReverseGeocode(ctx, lat, lng)
	if err != nil || details == nil || strings.TrimSpace(details.AddressText) == "" {
		r.logger.Info("reverse geocode unavailable, using fallback label",
			zap.Float64("lat", lat),
			zap.Float64("lng", lng),
			zap.Error(err),
		)
		return booking.NewResolvedLocation(booking.CurrentLocationLabel, lat, lng), nil
	}

	loc := booking.Location{
		AddressText: details.AddressText,
		Coordinates: &point,
		City:        details.City,
		State:       details.State,
		Country:     details.Country,
	}
	if err := r.cache.SetPoint(ctx, point, loc); err != nil {
		r.logger.Warn("geocode cache write failed", zap.Error(err))
	}
	return loc, nil
}

// ResolveCurrentDevicePosition asks the geolocator for the device position and reverse
// geocodes it. Geolocation failures keep their distinct error codes.
func (r *Resolver) ResolveCurrentDevicePosition(ctx context.Context, geo Geolocator) (booking.Location, error) {
	if geo == nil {
		return booking.Location{}, domain.NewGeolocationUnavailableError()
	}

	geoCtx := ctx
	if r.geoTimeout > 0 {
		var cancel context.CancelFunc
		geoCtx, cancel = context.WithTimeout(ctx, r.geoTimeout)
		defer cancel()
	}

	pos, err := geo.CurrentPosition(geoCtx)
	if err != nil {
		return booking.Location{}, geolocationError(err)
	}
	return r.ResolveCoordinates(ctx, pos.Lat, pos.Lng)
}

func geolocationError(err error) error {
	switch {
	case domain.IsCode(err, domain.CodeGeolocationDenied),
		domain.IsCode(err, domain.CodeGeolocationTimeout),
		domain.IsCode(err, domain.CodeGeolocationUnavailable):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return domain.NewGeolocationTimeoutError()
	case domain.IsCode(err, domain.CodeValidation):
		return err
	}
	return domain.NewGeolocationUnavailableError()
}
