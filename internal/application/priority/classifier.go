// Package priority ranks competing parking requests for scarce spots.
//
// Ordering, highest first: disability, then willingness to pay, then carry-over
// from an unsuccessful previous draw, then earlier submission, then request id.
// Every step is deterministic so the same inputs always produce the same draw.
package priority

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"parknet-backend/internal/domain"

	"github.com/google/uuid"
)

// Weights are the score contributions of each priority flag.
type Weights struct {
	Disability int `json:"disability"`
	Pay        int `json:"pay"`
	Carryover  int `json:"carryover"`
}

// DefaultWeights keep each tier strictly above everything below it.
var DefaultWeights = Weights{Disability: 1000, Pay: 100, Carryover: 10}

// Validate enforces disability > pay + carryover and pay > carryover >= 0, which
// keeps the tiers lexicographic whatever the concrete numbers are.
func (w Weights) Validate() error {
	if w.Carryover < 0 || w.Pay <= w.Carryover || w.Disability <= w.Pay+w.Carryover {
		return fmt.Errorf("%w: disability=%d pay=%d carryover=%d", domain.ErrInvalidWeights, w.Disability, w.Pay, w.Carryover)
	}
	return nil
}

// FromModel converts a stored per-period override.
func FromModel(m domain.RankingWeights) Weights {
	return Weights{Disability: m.Disability, Pay: m.Pay, Carryover: m.Carryover}
}

// CarryoverKey identifies a resident's entitlement in one vehicle category.
type CarryoverKey struct {
	ResidentID  uuid.UUID
	VehicleType domain.VehicleType
}

// Key is the ordering key of one request. Higher Score ranks first; ties go to the
// earlier SubmittedAt, then to the smaller RequestID.
type Key struct {
	Score       int
	SubmittedAt time.Time
	RequestID   uuid.UUID
}

// Before reports whether k ranks strictly ahead of other.
func (k Key) Before(other Key) bool {
	if k.Score != other.Score {
		return k.Score > other.Score
	}
	if !k.SubmittedAt.Equal(other.SubmittedAt) {
		return k.SubmittedAt.Before(other.SubmittedAt)
	}
	return bytes.Compare(k.RequestID[:], other.RequestID[:]) < 0
}

// Classifier ranks requests under fixed weights and a fixed carry-over set.
type Classifier struct {
	Weights   Weights
	Carryover map[CarryoverKey]bool
}

// Rank maps a request and its owner to an ordering key. It has no side effects.
func (c Classifier) Rank(req domain.ParkingRequest, resident domain.Resident) Key {
	score := 0
	if req.Disability {
		score += c.Weights.Disability
	}
	if req.Pay {
		score += c.Weights.Pay
	}
	if c.Carryover[CarryoverKey{ResidentID: resident.ResidentID, VehicleType: req.VehicleType}] {
		score += c.Weights.Carryover
	}
	return Key{Score: score, SubmittedAt: req.CreatedAt, RequestID: req.RequestID}
}

// Ranked pairs a key with the index of the candidate it was computed for.
type Ranked struct {
	Key   Key
	Index int
}

// Order returns candidate indexes sorted by descending priority.
func Order(keys []Key) []Ranked {
	out := make([]Ranked, len(keys))
	for i, k := range keys {
		out[i] = Ranked{Key: k, Index: i}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Key.Before(out[j].Key)
	})
	return out
}
