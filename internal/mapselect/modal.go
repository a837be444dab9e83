// Package mapselect holds the map picker dialog used to choose a pickup or drop point.
package mapselect

import (
	"context"
	"fmt"
	"sync"

	"github.com/cabgo/rider-web/internal/common/domain"
	"github.com/cabgo/rider-web/internal/domain/booking"
	"github.com/cabgo/rider-web/internal/location"
)

// Slot is the wizard field the modal was opened for.
type Slot string

const (
	SlotPickup Slot = "pickup"
	SlotDrop   Slot = "drop"
)

func (s Slot) IsValid() bool {
	return s == SlotPickup || s == SlotDrop
}

// ParseSlot converts a string to a Slot, returning an error if invalid.
func ParseSlot(s string) (Slot, error) {
	slot := Slot(s)
	if !slot.IsValid() {
		return "", domain.NewValidationError(fmt.Sprintf("invalid map slot: %s", s))
	}
	return slot, nil
}

type Phase string

const (
	PhaseClosed Phase = "closed"
	PhaseOpen   Phase = "open"
)

// Resolver is what the modal needs from the location resolver.
type Resolver interface {
	ResolvePlace(ctx context.Context, placeID string) (booking.Location, error)
	ResolveCoordinates(ctx context.Context, lat, lng float64) (booking.Location, error)
	ResolveCurrentDevicePosition(ctx context.Context, geo location.Geolocator) (booking.Location, error)
}

// View is a snapshot of the modal.
type View struct {
	Phase  Phase               `json:"phase"`
	Slot   Slot                `json:"slot,omitempty"`
	Center booking.Coordinates `json:"center"`
	Draft  *booking.Location   `json:"draft,omitempty"`
}

var (
	errNotOpen = domain.NewValidationError("the map is not open")
	// ErrSelectionChanged is returned when a resolution finished after the modal moved on.
	ErrSelectionChanged = domain.NewValidationError("the map selection changed, please try again")
)

// Modal is the map picker state. Nothing leaves the modal until Confirm.
type Modal struct {
	resolver      Resolver
	defaultCenter booking.Coordinates

	mu         sync.Mutex
	phase      Phase
	slot       Slot
	center     booking.Coordinates
	draft      *booking.Location
	generation uint64
}

// NewModal creates a closed modal.
func NewModal(resolver Resolver, defaultCenter booking.Coordinates) *Modal {
	return &Modal{
		resolver:      resolver,
		defaultCenter: defaultCenter,
		phase:         PhaseClosed,
		center:        defaultCenter,
	}
}

// Open shows the map for a slot, centered on current when it has coordinates and on the
// default city center otherwise. Opening again discards the previous draft.
func (m *Modal) Open(slot Slot, current *booking.Location) (View, error) {
	if !slot.IsValid() {
		return View{}, domain.NewValidationError(fmt.Sprintf("invalid map slot: %s", slot))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.generation++
	m.phase = PhaseOpen
	m.slot = slot
	m.center = m.defaultCenter
	m.draft = nil
	if current != nil && current.Coordinates != nil {
		m.center = *current.Coordinates
		if current.IsResolved() {
			seed := *current
			m.draft = &seed
		}
	}
	return m.viewLocked(), nil
}

// MovePin places the pin and reverse geocodes it.
func (m *Modal) MovePin(ctx context.Context, lat, lng float64) (View, error) {
	point := booking.Coordinates{Lat: lat, Lng: lng}
	if err := point.Validate(); err != nil {
		return m.View(), domain.NewValidationError(err.Error())
	}

	gen, err := m.begin(&point)
	if err != nil {
		return m.View(), err
	}
	loc, err := m.resolver.ResolveCoordinates(ctx, lat, lng)
	return m.finish(gen, loc, err)
}

// SelectSearchResult moves the pin to an autocomplete candidate.
func (m *Modal) SelectSearchResult(ctx context.Context, placeID string) (View, error) {
	gen, err := m.begin(nil)
	if err != nil {
		return m.View(), err
	}
	loc, err := m.resolver.ResolvePlace(ctx, placeID)
	return m.finish(gen, loc, err)
}

// UseCurrentLocation moves the pin to the device position.
func (m *Modal) UseCurrentLocation(ctx context.Context, geo location.Geolocator) (View, error) {
	gen, err := m.begin(nil)
	if err != nil {
		return m.View(), err
	}
	loc, err := m.resolver.ResolveCurrentDevicePosition(ctx, geo)
	return m.finish(gen, loc, err)
}

// Confirm closes the modal and hands back the drafted location for its slot.
func (m *Modal) Confirm() (Slot, booking.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != PhaseOpen {
		return "", booking.Location{}, errNotOpen
	}
	if m.draft == nil || !m.draft.IsResolved() {
		return "", booking.Location{}, domain.NewValidationError("move the pin or search for a place before confirming")
	}

	slot, loc := m.slot, *m.draft
	m.resetLocked()
	return slot, loc, nil
}

// Close discards everything chosen in the modal.
func (m *Modal) Close() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
	return m.viewLocked()
}

func (m *Modal) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.viewLocked()
}

// begin starts a resolution and returns its generation. The lock is not held while resolving.
func (m *Modal) begin(pin *booking.Coordinates) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != PhaseOpen {
		return 0, errNotOpen
	}
	m.generation++
	if pin != nil {
		m.center = *pin
	}
	return m.generation, nil
}

func (m *Modal) finish(gen uint64, loc booking.Location, err error) (View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.generation || m.phase != PhaseOpen {
		return m.viewLocked(), ErrSelectionChanged
	}
	if err != nil {
		return m.viewLocked(), err
	}
	m.draft = &loc
	if loc.Coordinates != nil {
		m.center = *loc.Coordinates
	}
	return m.viewLocked(), nil
}

func (m *Modal) resetLocked() {
	m.generation++
	m.phase = PhaseClosed
	m.slot = ""
	m.center = m.defaultCenter
	m.draft = nil
}

func (m *Modal) viewLocked() View {
	v := View{Phase: m.phase, Slot: m.slot, Center: m.center}
	if m.draft != nil {
		d := *m.draft
		v.Draft = &d
	}
	return v
}
