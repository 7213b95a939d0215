package lottery

import (
	"fmt"
	"sort"

	"parknet-backend/internal/application/priority"
	"parknet-backend/internal/domain"
)

// Candidate is one participant of a draw with its precomputed priority key.
type Candidate struct {
	Request  domain.ParkingRequest
	Resident domain.Resident
	Key      priority.Key
}

// Draw is the outcome of Allocate. Participants and Winners are grouped by vehicle
// type and ranked within each group; Approved and Rejected partition the candidates.
type Draw struct {
	Participants []domain.ParticipantSnapshot
	Winners      []domain.ParticipantSnapshot
	Approved     []Candidate
	Rejected     []Candidate
}

// ValidateCapacity rejects unknown vehicle types and negative counts.
func ValidateCapacity(capacity map[domain.VehicleType]int) error {
	for vt, n := range capacity {
		if !domain.IsValidVehicleType(vt) {
			return fmt.Errorf("%w: %q", domain.ErrInvalidVehicleType, vt)
		}
		if n < 0 {
			return fmt.Errorf("%w: %s=%d", domain.ErrInvalidCapacity, vt, n)
		}
	}
	return nil
}

// Allocate partitions candidates by vehicle type, ranks each group and gives the
// first capacity[type] of them a spot. A missing capacity entry means zero spots.
func Allocate(cands []Candidate, capacity map[domain.VehicleType]int) Draw {
	groups := make(map[domain.VehicleType][]Candidate)
	for _, c := range cands {
		groups[c.Request.VehicleType] = append(groups[c.Request.VehicleType], c)
	}

	d := Draw{
		Participants: make([]domain.ParticipantSnapshot, 0, len(cands)),
		Winners:      make([]domain.ParticipantSnapshot, 0),
	}
	for _, vt := range categoryOrder(groups) {
		group := groups[vt]
		keys := make([]priority.Key, len(group))
		for i, c := range group {
			keys[i] = c.Key
		}
		seats := capacity[vt]
		for pos, r := range priority.Order(keys) {
			c := group[r.Index]
			snap := snapshot(c, pos+1)
			if pos < seats {
				snap.Spot = SpotLabel(vt, pos+1)
				d.Winners = append(d.Winners, snap)
				d.Approved = append(d.Approved, c)
			} else {
				d.Rejected = append(d.Rejected, c)
			}
			d.Participants = append(d.Participants, snap)
		}
	}
	return d
}

// SpotLabel is the label of the n-th spot (1-based) of a vehicle type, e.g. C-01.
func SpotLabel(vt domain.VehicleType, n int) string {
	return fmt.Sprintf("%s-%02d", vt.SpotPrefix(), n)
}

func snapshot(c Candidate, rank int) domain.ParticipantSnapshot {
	return domain.ParticipantSnapshot{
		ResidentID:   c.Resident.ResidentID,
		RequestID:    c.Request.RequestID,
		FullName:     c.Resident.FullName,
		Apartment:    c.Resident.Apartment,
		VehicleType:  c.Request.VehicleType,
		LicensePlate: c.Request.LicensePlate,
		Rank:         rank,
		Score:        c.Key.Score,
	}
}

// categoryOrder lists known vehicle types first, in their declared order, then any
// other type present alphabetically.
func categoryOrder(groups map[domain.VehicleType][]Candidate) []domain.VehicleType {
	out := make([]domain.VehicleType, 0, len(groups))
	for _, vt := range domain.VehicleTypes {
		if _, ok := groups[vt]; ok {
			out = append(out, vt)
		}
	}
	var extra []domain.VehicleType
	for vt := range groups {
		if !domain.IsValidVehicleType(vt) {
			extra = append(extra, vt)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}
