package booking

import (
	"fmt"
	"strings"
)

// CurrentLocationLabel is the address used when coordinates could not be reverse geocoded.
const CurrentLocationLabel = "Current Location"

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate checks that the point lies on the globe.
func (c Coordinates) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %f out of range", c.Lat)
	}
	if c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("longitude %f out of range", c.Lng)
	}
	return nil
}

// Location is a pickup or drop point as the rider sees it.
// It may be partial (free text without coordinates) while the rider is still typing.
type Location struct {
	AddressText string       `json:"addressText"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	PlaceID     string       `json:"placeId,omitempty"`
	City        string       `json:"city,omitempty"`
	State       string       `json:"state,omitempty"`
	Country     string       `json:"country,omitempty"`
}

// NewResolvedLocation builds a Location with both address and coordinates.
func NewResolvedLocation(addressText string, lat, lng float64) Location {
	return Location{
		AddressText: addressText,
		Coordinates: &Coordinates{Lat: lat, Lng: lng},
	}
}

// TextLocation builds an unresolved Location from what the rider typed.
func TextLocation(text string) Location {
	return Location{AddressText: text}
}

// IsResolved reports whether the location has an address and coordinates,
// which is what fare and booking calls need.
func (l Location) IsResolved() bool {
	return l.Coordinates != nil && strings.TrimSpace(l.AddressText) != ""
}

// Equal compares two locations by value.
func (l Location) Equal(o Location) bool {
	if l.AddressText != o.AddressText || l.PlaceID != o.PlaceID ||
		l.City != o.City || l.State != o.State || l.Country != o.Country {
		return false
	}
	if l.Coordinates == nil || o.Coordinates == nil {
		return l.Coordinates == nil && o.Coordinates == nil
	}
	return *l.Coordinates == *o.Coordinates
}

func sameLocation(a, b *Location) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// PlaceSuggestion is one autocomplete candidate.
type PlaceSuggestion struct {
	Description string `json:"description"`
	PlaceID     string `json:"placeId"`
}

// PlaceDetails is what the backend knows about a place or a point.
// Coordinates is nil when the lookup returned none.
type PlaceDetails struct {
	AddressText string       `json:"addressText"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	City        string       `json:"city,omitempty"`
	State       string       `json:"state,omitempty"`
	Country     string       `json:"country,omitempty"`
}
