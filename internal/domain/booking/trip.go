package booking

import "fmt"

// TripType selects which fare fields apply.
type TripType string

const (
	TripOneWay      TripType = "one_way"
	TripRoundTrip   TripType = "round_trip"
	TripOutstation  TripType = "outstation"
	TripLocalRental TripType = "local_rental"
)

const (
	minDays  = 1
	minHours = 2
)

// IsValid returns true if the trip type is recognized.
func (t TripType) IsValid() bool {
	switch t {
	case TripOneWay, TripRoundTrip, TripOutstation, TripLocalRental:
		return true
	}
	return false
}

// UsesHours reports whether the trip count is measured in hours.
func (t TripType) UsesHours() bool { return t == TripLocalRental }

// UsesDays reports whether the trip count is measured in days.
func (t TripType) UsesDays() bool { return t == TripRoundTrip || t == TripOutstation }

// MinCount is the smallest day (or hour) count allowed for the trip type.
func (t TripType) MinCount() int {
	if t.UsesHours() {
		return minHours
	}
	return minDays
}

// PaymentMethod is how the rider intends to pay.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentOnline PaymentMethod = "online"
)

func (p PaymentMethod) IsValid() bool {
	return p == PaymentCash || p == PaymentOnline
}

// TripParameters holds the rider's trip choices.
// Days doubles as hours for local rentals and never drops below TripType.MinCount.
type TripParameters struct {
	TripType      TripType      `json:"tripType"`
	Days          int           `json:"days"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
}

// DefaultTripParameters is a one-way cash trip.
func DefaultTripParameters() TripParameters {
	return TripParameters{TripType: TripOneWay, Days: minDays, PaymentMethod: PaymentCash}
}

// WithTripType switches the trip type and resets the count to the new minimum,
// since the unit may change between days and hours.
func (p TripParameters) WithTripType(t TripType) (TripParameters, error) {
	if !t.IsValid() {
		return p, fmt.Errorf("invalid trip type: %s", t)
	}
	p.TripType = t
	p.Days = t.MinCount()
	return p, nil
}

// WithCount sets the day/hour count, clamped to the minimum.
func (p TripParameters) WithCount(n int) TripParameters {
	if min := p.TripType.MinCount(); n < min {
		n = min
	}
	p.Days = n
	return p
}

func (p TripParameters) Increment() TripParameters { return p.WithCount(p.Days + 1) }

func (p TripParameters) Decrement() TripParameters { return p.WithCount(p.Days - 1) }

// CountUnit names the unit of Days for display.
func (p TripParameters) CountUnit() string {
	if p.TripType.UsesHours() {
		return "hours"
	}
	return "days"
}
