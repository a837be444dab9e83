package booking

// VehicleType identifies an entry of the vehicle catalog.
type VehicleType string

const (
	VehicleHatchback      VehicleType = "hatchback"
	VehicleSedan          VehicleType = "sedan"
	VehicleSUV            VehicleType = "suv"
	VehicleTempoTraveller VehicleType = "tempo_traveller"
)

// VehicleOption is a static catalog entry shown in the vehicle step.
type VehicleOption struct {
	ID          VehicleType `json:"id"`
	Name        string      `json:"name"`
	Capacity    int         `json:"capacity"`
	Luggage     int         `json:"luggage"`
	Description string      `json:"description"`
}

var vehicleCatalog = []VehicleOption{
	{ID: VehicleHatchback, Name: "Hatchback", Capacity: 4, Luggage: 1, Description: "Compact and economical for short city trips"},
	{ID: VehicleSedan, Name: "Sedan", Capacity: 4, Luggage: 2, Description: "Comfortable ride for city and airport transfers"},
	{ID: VehicleSUV, Name: "SUV", Capacity: 6, Luggage: 4, Description: "Spacious for families and outstation travel"},
	{ID: VehicleTempoTraveller, Name: "Tempo Traveller", Capacity: 12, Luggage: 8, Description: "Group travel with plenty of luggage room"},
}

// IsValid returns true if the vehicle type is in the catalog.
func (v VehicleType) IsValid() bool {
	_, ok := FindVehicle(v)
	return ok
}

// Vehicles returns a copy of the catalog.
func Vehicles() []VehicleOption {
	out := make([]VehicleOption, len(vehicleCatalog))
	copy(out, vehicleCatalog)
	return out
}

// FindVehicle looks up a catalog entry.
func FindVehicle(id VehicleType) (VehicleOption, bool) {
	for _, v := range vehicleCatalog {
		if v.ID == id {
			return v, true
		}
	}
	return VehicleOption{}, false
}
