package slots

import (
	"context"
	"errors"
	"fmt"

	"parknet-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service is the resident slot registry. DB may be a transaction handle (see WithTx).
type Service struct {
	DB *gorm.DB
}

func (s *Service) WithTx(tx *gorm.DB) *Service {
	return &Service{DB: tx}
}

// Bind marks the resident's slot for vehicleType as taken by requestID. The update
// only matches an available slot, so a slot can never be bound twice.
func (s *Service) Bind(ctx context.Context, residentID uuid.UUID, vehicleType domain.VehicleType, requestID uuid.UUID) error {
	if !domain.IsValidVehicleType(vehicleType) {
		return domain.ErrInvalidVehicleType
	}
	db := s.DB.WithContext(ctx)
	res := db.Model(&domain.VehicleSlot{}).
		Where("resident_id = ? AND vehicle_type = ? AND available = ?", residentID, vehicleType, true).
		Updates(map[string]interface{}{"available": false, "request_id": requestID})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}
	if _, err := s.find(db, residentID, vehicleType); err != nil {
		return err
	}
	return fmt.Errorf("%w: resident %s %s", domain.ErrSlotConflict, residentID, vehicleType)
}

// Release makes a bound slot available again. Releasing an available slot is a no-op.
func (s *Service) Release(ctx context.Context, residentID uuid.UUID, vehicleType domain.VehicleType) (*domain.VehicleSlot, error) {
	if !domain.IsValidVehicleType(vehicleType) {
		return nil, domain.ErrInvalidVehicleType
	}
	db := s.DB.WithContext(ctx)
	slot, err := s.find(db, residentID, vehicleType)
	if err != nil {
		return nil, err
	}
	if slot.Available {
		return slot, nil
	}
	if err := db.Model(slot).Updates(map[string]interface{}{"available": true, "request_id": nil}).Error; err != nil {
		return nil, err
	}
	slot.Available = true
	slot.RequestID = nil
	return slot, nil
}

// Slots returns the resident's entitlements ordered by vehicle type.
func (s *Service) Slots(ctx context.Context, residentID uuid.UUID) ([]domain.VehicleSlot, error) {
	db := s.DB.WithContext(ctx)
	var count int64
	if err := db.Model(&domain.Resident{}).Where("resident_id = ?", residentID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, domain.ErrResidentNotFound
	}
	var out []domain.VehicleSlot
	if err := db.Where("resident_id = ?", residentID).Order("vehicle_type ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// EnsureSlots creates any missing entitlement rows for the resident, one per vehicle type.
func (s *Service) EnsureSlots(ctx context.Context, residentID uuid.UUID) ([]domain.VehicleSlot, error) {
	existing, err := s.Slots(ctx, residentID)
	if err != nil {
		return nil, err
	}
	have := make(map[domain.VehicleType]bool, len(existing))
	for _, sl := range existing {
		have[sl.VehicleType] = true
	}
	db := s.DB.WithContext(ctx)
	for _, vt := range domain.VehicleTypes {
		if have[vt] {
			continue
		}
		slot := domain.VehicleSlot{ResidentID: residentID, VehicleType: vt, Available: true}
		if err := db.Create(&slot).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("create %s slot: %w", vt, err)
		}
	}
	return s.Slots(ctx, residentID)
}

func (s *Service) find(db *gorm.DB, residentID uuid.UUID, vehicleType domain.VehicleType) (*domain.VehicleSlot, error) {
	var slot domain.VehicleSlot
	err := db.Where("resident_id = ? AND vehicle_type = ?", residentID, vehicleType).First(&slot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSlotNotFound
		}
		return nil, err
	}
	return &slot, nil
}
