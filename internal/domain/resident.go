package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleResident = "resident"
	RoleAdmin    = "admin"
)

// Resident is a condominium resident (or administrator) known to the parking system.
type Resident struct {
	ResidentID   uuid.UUID     `gorm:"column:resident_id;type:uuid;primaryKey" json:"resident_id"`
	FullName     string        `gorm:"column:full_name;not null" json:"full_name"`
	DocumentID   string        `gorm:"column:document_id;type:varchar(20);not null;uniqueIndex" json:"document_id"`
	Email        string        `gorm:"column:email;not null;uniqueIndex" json:"email"`
	PasswordHash string        `gorm:"column:password_hash;not null" json:"-"`
	Apartment    string        `gorm:"column:apartment;not null" json:"apartment"`
	PhoneNumber  string        `gorm:"column:phone_number" json:"phone_number"`
	Role         string        `gorm:"column:role;type:varchar(20);not null;default:resident" json:"role"`
	Slots        []VehicleSlot `gorm:"foreignKey:ResidentID;references:ResidentID" json:"vehicle_slots,omitempty"`
	CreatedAt    time.Time     `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt    time.Time     `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Resident) TableName() string {
	return "Residents"
}

func (r *Resident) BeforeCreate(tx *gorm.DB) error {
	if r.ResidentID == uuid.Nil {
		r.ResidentID = uuid.New()
	}
	return nil
}

// VehicleSlot is one resident entitlement for a vehicle category. Available is false
// exactly when RequestID points at the approved request that won the slot.
type VehicleSlot struct {
	SlotID      uuid.UUID   `gorm:"column:slot_id;type:uuid;primaryKey" json:"slot_id"`
	ResidentID  uuid.UUID   `gorm:"column:resident_id;type:uuid;not null;uniqueIndex:idx_slots_resident_vehicle" json:"resident_id"`
	VehicleType VehicleType `gorm:"column:vehicle_type;type:varchar(20);not null;uniqueIndex:idx_slots_resident_vehicle" json:"vehicle_type"`
	Available   bool        `gorm:"column:available;not null" json:"available"`
	RequestID   *uuid.UUID  `gorm:"column:request_id;type:uuid" json:"request_id"`
	CreatedAt   time.Time   `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt   time.Time   `gorm:"column:updatedAt" json:"updatedAt"`
}

func (VehicleSlot) TableName() string {
	return "VehicleSlots"
}

func (s *VehicleSlot) BeforeCreate(tx *gorm.DB) error {
	if s.SlotID == uuid.Nil {
		s.SlotID = uuid.New()
	}
	return nil
}
