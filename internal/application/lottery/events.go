package lottery

import (
	"context"
	"time"

	"parknet-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const EventLotteryExecuted = "lottery.executed"

// ExecutedEvent is published once a draw has committed.
type ExecutedEvent struct {
	Type         string                       `json:"type"`
	LotteryID    uuid.UUID                    `json:"lottery_id"`
	Period       string                       `json:"period"`
	ExecutedAt   time.Time                    `json:"executed_at"`
	SpotsOffered map[domain.VehicleType]int   `json:"spots_offered"`
	Participants int                          `json:"participants"`
	Winners      []domain.ParticipantSnapshot `json:"winners"`
}

func NewExecutedEvent(rec *domain.Lottery) ExecutedEvent {
	ev := ExecutedEvent{
		Type:         EventLotteryExecuted,
		LotteryID:    rec.LotteryID,
		Period:       rec.Period,
		SpotsOffered: rec.SpotsOffered.Data(),
		Participants: len(rec.Participants),
		Winners:      rec.Winners,
	}
	if rec.ExecutedAt != nil {
		ev.ExecutedAt = *rec.ExecutedAt
	}
	return ev
}

// publish is best effort: the draw has already committed.
func (s *Service) publish(ctx context.Context, rec *domain.Lottery) {
	if s.Events == nil {
		return
	}
	if err := s.Events.PublishJSON(ctx, NewExecutedEvent(rec)); err != nil {
		log.Warn().Err(err).Str("period", rec.Period).Msg("publish lottery event failed")
	}
}
