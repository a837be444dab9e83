package pricing

import (
	"fmt"

	"github.com/cabgo/rider-web/internal/common/domain"
	"github.com/cabgo/rider-web/internal/domain/booking"
)

// Rate is the per-vehicle tariff maintained by admins.
type Rate struct {
	VehicleType     booking.VehicleType `json:"vehicleType"`
	BaseFare        float64             `json:"baseFare"`
	PricePerKm      float64             `json:"pricePerKm"`
	DriverAllowance float64             `json:"driverAllowance"`
	HourlyRate      float64             `json:"hourlyRate"`
}

// Validate checks the rate before it is sent to the backend.
func (r Rate) Validate() error {
	if !r.VehicleType.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("invalid vehicle type: %s", r.VehicleType))
	}
	for name, v := range map[string]float64{
		"base fare":        r.BaseFare,
		"price per km":     r.PricePerKm,
		"driver allowance": r.DriverAllowance,
		"hourly rate":      r.HourlyRate,
	} {
		if v < 0 {
			return domain.NewValidationError(name + " must not be negative")
		}
	}
	if r.PricePerKm == 0 && r.HourlyRate == 0 {
		return domain.NewValidationError("either price per km or hourly rate must be set")
	}
	return nil
}
