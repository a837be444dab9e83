package booking

import (
	"time"

	"github.com/cabgo/rider-web/internal/common/domain"
)

// BookingType tells the backend whether to dispatch now or later.
type BookingType string

const (
	BookingNow       BookingType = "now"
	BookingScheduled BookingType = "scheduled"
)

func (b BookingType) IsValid() bool {
	return b == BookingNow || b == BookingScheduled
}

const (
	scheduleDateLayout = "2006-01-02"
	scheduleTimeLayout = "15:04"
)

// BookingSchedule is the rider's pickup timing. Date and Time are only read for scheduled bookings.
type BookingSchedule struct {
	Type BookingType `json:"bookingType"`
	Date string      `json:"scheduledDate,omitempty"`
	Time string      `json:"scheduledTime,omitempty"`
}

// PickupTime resolves the schedule in loc. It returns nil for immediate bookings and a
// ValidationError when a scheduled pickup is missing, malformed, or not after now.
func (s BookingSchedule) PickupTime(now time.Time, loc *time.Location) (*time.Time, error) {
	switch s.Type {
	case BookingNow, "":
		return nil, nil
	case BookingScheduled:
	default:
		return nil, domain.NewValidationError("invalid booking type: " + string(s.Type))
	}

	if s.Date == "" || s.Time == "" {
		return nil, domain.NewValidationError("please choose a pickup date and time")
	}
	if loc == nil {
		loc = time.UTC
	}
	at, err := time.ParseInLocation(scheduleDateLayout+" "+scheduleTimeLayout, s.Date+" "+s.Time, loc)
	if err != nil {
		return nil, domain.NewValidationError("pickup date must be YYYY-MM-DD and time HH:MM")
	}
	if !at.After(now) {
		return nil, domain.NewValidationError("scheduled pickup time must be in the future")
	}
	return &at, nil
}
