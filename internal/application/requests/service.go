package requests

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"parknet-backend/internal/domain"
	"parknet-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service is the request ledger. DB may be a transaction handle (see WithTx).
type Service struct {
	DB *gorm.DB
}

// WithTx returns a ledger bound to an open transaction.
func (s *Service) WithTx(tx *gorm.DB) *Service {
	return &Service{DB: tx}
}

type SubmitInput struct {
	ResidentID   uuid.UUID
	VehicleType  domain.VehicleType
	LicensePlate string
	Description  *string
	Disability   bool
	Pay          bool
	Period       string
}

func (in SubmitInput) validate() error {
	if !validation.IsValidPeriod(in.Period) {
		return domain.ErrInvalidPeriod
	}
	if !domain.IsValidVehicleType(in.VehicleType) {
		return domain.ErrInvalidVehicleType
	}
	if !validation.IsValidLicensePlate(in.LicensePlate) {
		return fmt.Errorf("%w: license plate must be 5-10 letters or digits", domain.ErrInvalidInput)
	}
	if in.Description != nil && len(*in.Description) > 500 {
		return fmt.Errorf("%w: description must be at most 500 characters", domain.ErrInvalidInput)
	}
	return nil
}

// Submit records a new pending request. A resident may hold only one pending or
// approved request per period and vehicle type, and a period whose lottery has
// been executed accepts no more requests.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*domain.ParkingRequest, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	in.LicensePlate = strings.ToUpper(strings.TrimSpace(in.LicensePlate))

	var created *domain.ParkingRequest
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var resident domain.Resident
		found := tx.Where("resident_id = ?", in.ResidentID).Limit(1).Find(&resident)
		if found.Error != nil {
			return found.Error
		}
		if found.RowsAffected == 0 {
			return domain.ErrResidentNotFound
		}

		var drawn int64
		if err := tx.Model(&domain.Lottery{}).
			Where("period = ? AND executed_at IS NOT NULL", in.Period).
			Count(&drawn).Error; err != nil {
			return err
		}
		if drawn > 0 {
			return domain.ErrPeriodClosed
		}

		// Touching the entitlement row takes its row lock, so two submissions for the
		// same resident and category cannot both pass the duplicate check.
		res := tx.Model(&domain.VehicleSlot{}).
			Where("resident_id = ? AND vehicle_type = ?", in.ResidentID, in.VehicleType).
			UpdateColumn("updatedAt", time.Now().UTC())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrSlotNotFound
		}

		var count int64
		if err := tx.Model(&domain.ParkingRequest{}).
			Where("resident_id = ? AND period = ? AND vehicle_type = ? AND status IN ?",
				in.ResidentID, in.Period, in.VehicleType, activeStatuses).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrDuplicateActiveRequest
		}

		req := &domain.ParkingRequest{
			ResidentID:   in.ResidentID,
			VehicleType:  in.VehicleType,
			LicensePlate: in.LicensePlate,
			Description:  in.Description,
			Disability:   in.Disability,
			Pay:          in.Pay,
			Status:       domain.StatusPending,
			Period:       in.Period,
		}
		if err := tx.Create(req).Error; err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		created = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

var activeStatuses = []string{string(domain.StatusPending), string(domain.StatusApproved)}

// ListPendingForPeriod returns the period's pending requests in submission order.
func (s *Service) ListPendingForPeriod(ctx context.Context, period string) ([]domain.ParkingRequest, error) {
	if !validation.IsValidPeriod(period) {
		return nil, domain.ErrInvalidPeriod
	}
	var out []domain.ParkingRequest
	err := s.DB.WithContext(ctx).
		Where("period = ? AND status = ?", period, string(domain.StatusPending)).
		Order(`"createdAt" ASC`).Order("request_id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Transition moves a pending request to approved or rejected. The update is
// conditional on the stored status still being pending.
func (s *Service) Transition(ctx context.Context, requestID uuid.UUID, to domain.RequestStatus) error {
	if to != domain.StatusApproved && to != domain.StatusRejected {
		return fmt.Errorf("%w: cannot move to %q", domain.ErrInvalidTransition, to)
	}
	db := s.DB.WithContext(ctx)
	res := db.Model(&domain.ParkingRequest{}).
		Where("request_id = ? AND status = ?", requestID, string(domain.StatusPending)).
		Update("status", string(to))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}
	var current domain.ParkingRequest
	if err := db.Where("request_id = ?", requestID).First(&current).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRequestNotFound
		}
		return err
	}
	return fmt.Errorf("%w: request %s is %s", domain.ErrInvalidTransition, requestID, current.Status)
}

func (s *Service) Get(ctx context.Context, requestID uuid.UUID) (*domain.ParkingRequest, error) {
	var req domain.ParkingRequest
	if err := s.DB.WithContext(ctx).Where("request_id = ?", requestID).First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

// ListForResident returns a page of a resident's request history, newest first.
// A non-positive limit means the default page size.
func (s *Service) ListForResident(ctx context.Context, residentID uuid.UUID, offset, limit int) ([]domain.ParkingRequest, error) {
	var out []domain.ParkingRequest
	if err := s.DB.WithContext(ctx).Where("resident_id = ?", residentID).
		Order(`"createdAt" DESC`).Order("request_id ASC").
		Offset(pageOffset(offset)).Limit(pageLimit(limit)).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func pageLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return limit
}

func pageOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

type ListFilter struct {
	Status *domain.RequestStatus
	Period *string
	Offset int
	Limit  int
}

const defaultListLimit = 200

// List returns requests for administrators: pending first, then approved, then rejected.
func (s *Service) List(ctx context.Context, f ListFilter) ([]domain.ParkingRequest, error) {
	q := s.DB.WithContext(ctx).Model(&domain.ParkingRequest{})
	if f.Status != nil {
		if !domain.IsValidRequestStatus(*f.Status) {
			return nil, domain.ErrInvalidStatus
		}
		q = q.Where("status = ?", string(*f.Status))
	}
	if f.Period != nil {
		if !validation.IsValidPeriod(*f.Period) {
			return nil, domain.ErrInvalidPeriod
		}
		q = q.Where("period = ?", *f.Period)
	}
	var out []domain.ParkingRequest
	err := q.Order("CASE status WHEN 'pending' THEN 0 WHEN 'approved' THEN 1 ELSE 2 END").
		Order(`"createdAt" ASC`).
		Offset(pageOffset(f.Offset)).Limit(pageLimit(f.Limit)).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
