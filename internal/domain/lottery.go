package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ParticipantSnapshot freezes the resident/request data a draw was decided on.
// Spot is empty for participants that did not win.
type ParticipantSnapshot struct {
	ResidentID   uuid.UUID   `json:"resident_id"`
	RequestID    uuid.UUID   `json:"request_id"`
	FullName     string      `json:"full_name"`
	Apartment    string      `json:"apartment"`
	VehicleType  VehicleType `json:"vehicle_type"`
	LicensePlate string      `json:"license_plate"`
	Spot         string      `json:"spot,omitempty"`
	Rank         int         `json:"rank"`
	Score        int         `json:"score"`
}

// Lottery is the audit record of one period's draw. At most one row exists per period;
// once ExecutedAt is set the row is never modified again.
type Lottery struct {
	LotteryID    uuid.UUID                                `gorm:"column:lottery_id;type:uuid;primaryKey" json:"lottery_id"`
	Period       string                                   `gorm:"column:period;type:char(7);not null;uniqueIndex" json:"period"`
	SpotsOffered datatypes.JSONType[map[VehicleType]int]  `gorm:"column:spots_offered" json:"spots_offered"`
	Participants datatypes.JSONSlice[ParticipantSnapshot] `gorm:"column:participants" json:"participants"`
	Winners      datatypes.JSONSlice[ParticipantSnapshot] `gorm:"column:winners" json:"winners"`
	ExecutedAt   *time.Time                               `gorm:"column:executed_at" json:"executed_at"`
	CreatedAt    time.Time                                `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt    time.Time                                `gorm:"column:updatedAt" json:"updatedAt"`
}

func (Lottery) TableName() string {
	return "Lotteries"
}

func (l *Lottery) BeforeCreate(tx *gorm.DB) error {
	if l.LotteryID == uuid.Nil {
		l.LotteryID = uuid.New()
	}
	return nil
}

// NonWinners returns the participants that did not receive a spot, in rank order.
func (l *Lottery) NonWinners() []ParticipantSnapshot {
	out := make([]ParticipantSnapshot, 0, len(l.Participants))
	for _, p := range l.Participants {
		if p.Spot == "" {
			out = append(out, p)
		}
	}
	return out
}

// RankingWeights overrides the configured priority weights for one period.
type RankingWeights struct {
	Period     string    `gorm:"column:period;type:char(7);primaryKey" json:"period"`
	Disability int       `gorm:"column:disability;not null" json:"disability"`
	Pay        int       `gorm:"column:pay;not null" json:"pay"`
	Carryover  int       `gorm:"column:carryover;not null" json:"carryover"`
	CreatedAt  time.Time `gorm:"column:createdAt" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"column:updatedAt" json:"updatedAt"`
}

func (RankingWeights) TableName() string {
	return "RankingWeights"
}
