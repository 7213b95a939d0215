package lottery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parknet-backend/internal/application/priority"
	"parknet-backend/internal/application/requests"
	"parknet-backend/internal/application/slots"
	"parknet-backend/internal/domain"
	"parknet-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Locker serializes draws of the same period across processes.
type Locker interface {
	Acquire(ctx context.Context, key string) (unlock func(), err error)
}

// EventPublisher receives the executed-lottery event after commit.
type EventPublisher interface {
	PublishJSON(ctx context.Context, v interface{}) error
}

// Service runs and reads period lotteries. Locker and Events are optional.
type Service struct {
	DB      *gorm.DB
	Weights priority.Weights
	Locker  Locker
	Events  EventPublisher
	Now     func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func lockKey(period string) string {
	return "lottery:lock:" + period
}

// RunLottery executes the draw for period. Every request transition, slot binding
// and the record itself commit together or not at all. A period runs at most once;
// later calls fail with domain.ErrAlreadyExecuted.
func (s *Service) RunLottery(ctx context.Context, period string, capacity map[domain.VehicleType]int) (*domain.Lottery, error) {
	if !validation.IsValidPeriod(period) {
		return nil, domain.ErrInvalidPeriod
	}
	if err := ValidateCapacity(capacity); err != nil {
		return nil, err
	}
	if s.Locker != nil {
		unlock, err := s.Locker.Acquire(ctx, lockKey(period))
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	start := time.Now()
	var record *domain.Lottery
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := s.claimPeriod(tx, period)
		if err != nil {
			return err
		}
		weights, err := s.weightsFor(tx, period)
		if err != nil {
			return err
		}
		carry, err := carryoverFor(tx, period)
		if err != nil {
			return err
		}

		ledger := (&requests.Service{DB: s.DB}).WithTx(tx)
		pending, err := ledger.ListPendingForPeriod(ctx, period)
		if err != nil {
			return err
		}
		cands, err := candidates(tx, pending, priority.Classifier{Weights: weights, Carryover: carry})
		if err != nil {
			return err
		}

		draw := Allocate(cands, capacity)
		registry := (&slots.Service{DB: s.DB}).WithTx(tx)
		for _, c := range draw.Approved {
			if err := ledger.Transition(ctx, c.Request.RequestID, domain.StatusApproved); err != nil {
				return err
			}
			if err := registry.Bind(ctx, c.Resident.ResidentID, c.Request.VehicleType, c.Request.RequestID); err != nil {
				return err
			}
		}
		for _, c := range draw.Rejected {
			if err := ledger.Transition(ctx, c.Request.RequestID, domain.StatusRejected); err != nil {
				return err
			}
		}

		executedAt := s.now()
		rec.SpotsOffered = datatypes.NewJSONType(offered(capacity))
		rec.Participants = draw.Participants
		rec.Winners = draw.Winners
		rec.ExecutedAt = &executedAt
		res := tx.Model(&domain.Lottery{}).
			Where("lottery_id = ? AND executed_at IS NULL", rec.LotteryID).
			Updates(map[string]interface{}{
				"spots_offered": rec.SpotsOffered,
				"participants":  rec.Participants,
				"winners":       rec.Winners,
				"executed_at":   executedAt,
			})
		if res.Error != nil {
			return fmt.Errorf("save lottery record: %w", res.Error)
		}
		if res.RowsAffected != 1 {
			return domain.ErrAlreadyExecuted
		}
		record = rec
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrSlotConflict) {
			log.Error().Err(err).Str("period", period).Msg("lottery rolled back: slot already bound")
		} else if !errors.Is(err, domain.ErrAlreadyExecuted) {
			log.Warn().Err(err).Str("period", period).Msg("lottery rolled back")
		}
		return nil, err
	}

	log.Info().
		Str("period", period).
		Int("participants", len(record.Participants)).
		Int("winners", len(record.Winners)).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("lottery executed")

	s.publish(ctx, record)
	return record, nil
}

// claimPeriod returns the period's record, creating it if needed. The unique index
// on period makes a concurrent creator fail here rather than run a second draw.
func (s *Service) claimPeriod(tx *gorm.DB, period string) (*domain.Lottery, error) {
	var existing domain.Lottery
	found := tx.Where("period = ?", period).Limit(1).Find(&existing)
	if found.Error != nil {
		return nil, found.Error
	}
	if found.RowsAffected == 1 {
		if existing.ExecutedAt != nil {
			return nil, domain.ErrAlreadyExecuted
		}
		res := tx.Model(&domain.Lottery{}).
			Where("lottery_id = ? AND executed_at IS NULL", existing.LotteryID).
			UpdateColumn("updatedAt", s.now())
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, domain.ErrAlreadyExecuted
		}
		return &existing, nil
	}

	rec := &domain.Lottery{
		Period:       period,
		SpotsOffered: datatypes.NewJSONType(map[domain.VehicleType]int{}),
		Participants: datatypes.JSONSlice[domain.ParticipantSnapshot]{},
		Winners:      datatypes.JSONSlice[domain.ParticipantSnapshot]{},
	}
	if err := tx.Create(rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrAlreadyExecuted
		}
		return nil, fmt.Errorf("create lottery record: %w", err)
	}
	return rec, nil
}

// weightsFor prefers a stored per-period override over the configured weights.
func (s *Service) weightsFor(tx *gorm.DB, period string) (priority.Weights, error) {
	w := s.Weights
	if w == (priority.Weights{}) {
		w = priority.DefaultWeights
	}
	var row domain.RankingWeights
	found := tx.Where("period = ?", period).Limit(1).Find(&row)
	if found.Error != nil {
		return w, found.Error
	}
	if found.RowsAffected == 1 {
		w = priority.FromModel(row)
	}
	if err := w.Validate(); err != nil {
		return w, err
	}
	return w, nil
}

// carryoverFor marks the residents that took part in the previous period's draw
// and did not win, per vehicle type.
func carryoverFor(tx *gorm.DB, period string) (map[priority.CarryoverKey]bool, error) {
	prev, err := PreviousPeriod(period)
	if err != nil {
		return nil, err
	}
	out := map[priority.CarryoverKey]bool{}
	var last domain.Lottery
	found := tx.Where("period = ? AND executed_at IS NOT NULL", prev).Limit(1).Find(&last)
	if found.Error != nil {
		return nil, found.Error
	}
	if found.RowsAffected == 0 {
		return out, nil
	}
	for _, p := range last.NonWinners() {
		out[priority.CarryoverKey{ResidentID: p.ResidentID, VehicleType: p.VehicleType}] = true
	}
	return out, nil
}

// PreviousPeriod returns the calendar month before period.
func PreviousPeriod(period string) (string, error) {
	t, err := time.Parse("2006-01", period)
	if err != nil {
		return "", domain.ErrInvalidPeriod
	}
	return t.AddDate(0, -1, 0).Format("2006-01"), nil
}

func candidates(tx *gorm.DB, pending []domain.ParkingRequest, cl priority.Classifier) ([]Candidate, error) {
	if len(pending) == 0 {
		return nil, nil
	}
	ids := make([]uuid.UUID, 0, len(pending))
	for _, r := range pending {
		ids = append(ids, r.ResidentID)
	}
	var residents []domain.Resident
	if err := tx.Where("resident_id IN ?", ids).Find(&residents).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]domain.Resident, len(residents))
	for _, r := range residents {
		byID[r.ResidentID] = r
	}
	out := make([]Candidate, 0, len(pending))
	for _, req := range pending {
		res, ok := byID[req.ResidentID]
		if !ok {
			return nil, fmt.Errorf("%w: %s (request %s)", domain.ErrResidentNotFound, req.ResidentID, req.RequestID)
		}
		out = append(out, Candidate{Request: req, Resident: res, Key: cl.Rank(req, res)})
	}
	return out, nil
}

func offered(capacity map[domain.VehicleType]int) map[domain.VehicleType]int {
	out := make(map[domain.VehicleType]int, len(domain.VehicleTypes))
	for _, vt := range domain.VehicleTypes {
		out[vt] = capacity[vt]
	}
	return out
}

// GetResult returns an executed lottery. With vehicleType set, participants and
// winners are narrowed to that category.
func (s *Service) GetResult(ctx context.Context, period string, vehicleType *domain.VehicleType) (*domain.Lottery, error) {
	if !validation.IsValidPeriod(period) {
		return nil, domain.ErrInvalidPeriod
	}
	if vehicleType != nil && !domain.IsValidVehicleType(*vehicleType) {
		return nil, domain.ErrInvalidVehicleType
	}
	var rec domain.Lottery
	found := s.DB.WithContext(ctx).Where("period = ? AND executed_at IS NOT NULL", period).Limit(1).Find(&rec)
	if found.Error != nil {
		return nil, found.Error
	}
	if found.RowsAffected == 0 {
		return nil, domain.ErrLotteryNotFound
	}
	if vehicleType != nil {
		rec.Participants = filterByType(rec.Participants, *vehicleType)
		rec.Winners = filterByType(rec.Winners, *vehicleType)
	}
	return &rec, nil
}

// MyAssignments returns the resident's entries in the period's draw. A non-empty
// Spot marks a won entry.
func (s *Service) MyAssignments(ctx context.Context, residentID uuid.UUID, period string) ([]domain.ParticipantSnapshot, error) {
	rec, err := s.GetResult(ctx, period, nil)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ParticipantSnapshot, 0)
	for _, p := range rec.Participants {
		if p.ResidentID == residentID {
			out = append(out, p)
		}
	}
	return out, nil
}

func filterByType(in []domain.ParticipantSnapshot, vt domain.VehicleType) []domain.ParticipantSnapshot {
	out := make([]domain.ParticipantSnapshot, 0, len(in))
	for _, p := range in {
		if p.VehicleType == vt {
			out = append(out, p)
		}
	}
	return out
}
