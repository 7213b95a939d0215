package domain

// VehicleType is the category a parking spot and a slot entitlement belong to.
type VehicleType string

const (
	VehicleCar  VehicleType = "car"
	VehicleMoto VehicleType = "moto"
)

// VehicleTypes lists the categories every resident holds an entitlement for.
var VehicleTypes = []VehicleType{VehicleCar, VehicleMoto}

// IsValidVehicleType returns true if v is one of the known categories.
func IsValidVehicleType(v VehicleType) bool {
	for _, t := range VehicleTypes {
		if t == v {
			return true
		}
	}
	return false
}

// SpotPrefix is the label prefix for spots of this category (C-01, M-01).
func (v VehicleType) SpotPrefix() string {
	switch v {
	case VehicleCar:
		return "C"
	case VehicleMoto:
		return "M"
	}
	return "S"
}
