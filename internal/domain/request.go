package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequestStatus is the lifecycle state of a parking request.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

// IsValidRequestStatus returns true for pending, approved and rejected.
func IsValidRequestStatus(s RequestStatus) bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// ParkingRequest is a resident's application for a spot in one period's draw.
// Status only moves pending -> approved or pending -> rejected.
type ParkingRequest struct {
	RequestID    uuid.UUID     `gorm:"column:request_id;type:uuid;primaryKey" json:"request_id"`
	ResidentID   uuid.UUID     `gorm:"column:resident_id;type:uuid;not null;index:idx_requests_resident_period" json:"resident_id"`
	VehicleType  VehicleType   `gorm:"column:vehicle_type;type:varchar(20);not null" json:"vehicle_type"`
	LicensePlate string        `gorm:"column:license_plate;type:varchar(10);not null" json:"license_plate"`
	Description  *string       `gorm:"column:description;type:varchar(500)" json:"description"`
	Disability   bool          `gorm:"column:disability;not null;default:false" json:"disability"`
	Pay          bool          `gorm:"column:pay;not null;default:false" json:"pay"`
	Status       RequestStatus `gorm:"column:status;type:varchar(20);not null;default:pending;index" json:"status"`
	Period       string        `gorm:"column:period;type:char(7);not null;index;index:idx_requests_resident_period" json:"period"`
	CreatedAt    time.Time     `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt    time.Time     `gorm:"column:updatedAt" json:"updatedAt"`
}

func (ParkingRequest) TableName() string {
	return "ParkingRequests"
}

func (r *ParkingRequest) BeforeCreate(tx *gorm.DB) error {
	if r.RequestID == uuid.Nil {
		r.RequestID = uuid.New()
	}
	return nil
}
