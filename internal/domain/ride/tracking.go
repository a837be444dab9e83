package ride

import (
	"time"

	"github.com/cabgo/rider-web/internal/common/domain"
	"github.com/cabgo/rider-web/internal/domain/booking"
)

// Driver is what the rider is shown about the assigned driver.
type Driver struct {
	Name         string `json:"name"`
	Phone        string `json:"phone,omitempty"`
	VehicleModel string `json:"vehicleModel,omitempty"`
	PlateNumber  string `json:"plateNumber,omitempty"`
}

// Tracking is the rider-side view of one placed booking.
type Tracking struct {
	bookingID      string
	riderID        string
	otp            string
	estimatedFare  float64
	pickup         booking.Location
	drop           booking.Location
	vehicleType    booking.VehicleType
	scheduledAt    *time.Time
	status         Status
	driver         *Driver
	driverLocation *booking.Coordinates
	createdAt      time.Time
	updatedAt      time.Time
}

// NewTracking starts tracking a freshly confirmed booking in the requested state.
func NewTracking(riderID string, conf booking.BookingConfirmation, scheduledAt *time.Time, now time.Time) (*Tracking, error) {
	if conf.BookingID == "" {
		return nil, domain.NewValidationError("booking ID is required")
	}
	return &Tracking{
		bookingID:     conf.BookingID,
		riderID:       riderID,
		otp:           conf.OTP,
		estimatedFare: conf.EstimatedFare,
		pickup:        conf.Pickup,
		drop:          conf.Drop,
		vehicleType:   conf.VehicleType,
		scheduledAt:   scheduledAt,
		status:        StatusRequested,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

func (t *Tracking) BookingID() string                    { return t.bookingID }
func (t *Tracking) RiderID() string                      { return t.riderID }
func (t *Tracking) OTP() string                          { return t.otp }
func (t *Tracking) EstimatedFare() float64               { return t.estimatedFare }
func (t *Tracking) Pickup() booking.Location             { return t.pickup }
func (t *Tracking) Drop() booking.Location               { return t.drop }
func (t *Tracking) VehicleType() booking.VehicleType     { return t.vehicleType }
func (t *Tracking) ScheduledAt() *time.Time              { return t.scheduledAt }
func (t *Tracking) Status() Status                       { return t.status }
func (t *Tracking) Driver() *Driver                      { return t.driver }
func (t *Tracking) DriverLocation() *booking.Coordinates { return t.driverLocation }
func (t *Tracking) UpdatedAt() time.Time                 { return t.updatedAt }

// ApplyStatus moves the ride to the given status. A repeated status is a no-op so that
// redelivered events are harmless.
func (t *Tracking) ApplyStatus(status Status, driver *Driver, at time.Time) error {
	if status == t.status {
		if driver != nil {
			t.driver = driver
		}
		return nil
	}
	if !t.status.CanTransitionTo(status) {
		return domain.NewInvalidStateError(string(t.status), string(status))
	}
	t.status = status
	if driver != nil {
		t.driver = driver
	}
	if !status.HasDriver() {
		t.driverLocation = nil
	}
	t.touch(at)
	return nil
}

// MoveDriver records the driver's latest position. Positions are ignored once the ride
// no longer has an active driver.
func (t *Tracking) MoveDriver(pos booking.Coordinates, at time.Time) error {
	if err := pos.Validate(); err != nil {
		return domain.NewValidationError(err.Error())
	}
	if !t.status.HasDriver() {
		return domain.NewInvalidStateError(string(t.status), "driver_location")
	}
	t.driverLocation = &pos
	t.touch(at)
	return nil
}

func (t *Tracking) touch(at time.Time) {
	if at.After(t.updatedAt) {
		t.updatedAt = at
	}
}

// View is the JSON shape pushed to the rider.
type View struct {
	BookingID      string               `json:"bookingId"`
	OTP            string               `json:"otp"`
	EstimatedFare  float64              `json:"estimatedFare"`
	Pickup         booking.Location     `json:"pickup"`
	Drop           booking.Location     `json:"drop"`
	VehicleType    booking.VehicleType  `json:"vehicleType"`
	ScheduledAt    *time.Time           `json:"scheduledAt,omitempty"`
	Status         Status               `json:"status"`
	Driver         *Driver              `json:"driver,omitempty"`
	DriverLocation *booking.Coordinates `json:"driverLocation,omitempty"`
	UpdatedAt      time.Time            `json:"updatedAt"`
}

// ToView snapshots the tracking state.
func (t *Tracking) ToView() View {
	v := View{
		BookingID:     t.bookingID,
		OTP:           t.otp,
		EstimatedFare: t.estimatedFare,
		Pickup:        t.pickup,
		Drop:          t.drop,
		VehicleType:   t.vehicleType,
		ScheduledAt:   t.scheduledAt,
		Status:        t.status,
		UpdatedAt:     t.updatedAt,
	}
	if t.driver != nil {
		d := *t.driver
		v.Driver = &d
	}
	if t.driverLocation != nil {
		p := *t.driverLocation
		v.DriverLocation = &p
	}
	return v
}
