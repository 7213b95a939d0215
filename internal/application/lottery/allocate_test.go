package lottery

import (
	"math/rand"
	"testing"
	"time"

	"parknet-backend/internal/application/priority"
	"parknet-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)

func cand(name string, vt domain.VehicleType, disability, pay bool, minute int) Candidate {
	res := domain.Resident{ResidentID: uuid.New(), FullName: name, Apartment: "A-" + name}
	req := domain.ParkingRequest{
		RequestID:    uuid.New(),
		ResidentID:   res.ResidentID,
		VehicleType:  vt,
		LicensePlate: "PLT" + name,
		Disability:   disability,
		Pay:          pay,
		Status:       domain.StatusPending,
		Period:       "2025-06",
		CreatedAt:    t0.Add(time.Duration(minute) * time.Minute),
	}
	cl := priority.Classifier{Weights: priority.DefaultWeights}
	return Candidate{Request: req, Resident: res, Key: cl.Rank(req, res)}
}

func names(snaps []domain.ParticipantSnapshot) []string {
	out := make([]string, len(snaps))
	for i, s := range snaps {
		out[i] = s.FullName
	}
	return out
}

func TestAllocate_PerCategoryCapacity(t *testing.T) {
	cands := []Candidate{
		cand("A", domain.VehicleCar, false, true, 0),
		cand("B", domain.VehicleCar, true, false, 5),
		cand("M1", domain.VehicleMoto, false, false, 0),
		cand("M2", domain.VehicleMoto, false, true, 1),
		cand("M3", domain.VehicleMoto, false, true, 2),
	}
	d := Allocate(cands, map[domain.VehicleType]int{domain.VehicleCar: 1, domain.VehicleMoto: 2})

	assert.Equal(t, []string{"B", "A", "M2", "M3", "M1"}, names(d.Participants))
	assert.Equal(t, []string{"B", "M2", "M3"}, names(d.Winners))
	require.Len(t, d.Approved, 3)
	require.Len(t, d.Rejected, 2)
	assert.Equal(t, "A", d.Rejected[0].Resident.FullName)
	assert.Equal(t, "M1", d.Rejected[1].Resident.FullName)

	assert.Equal(t, "C-01", d.Winners[0].Spot)
	assert.Equal(t, "M-01", d.Winners[1].Spot)
	assert.Equal(t, "M-02", d.Winners[2].Spot)
	assert.Equal(t, 1, d.Participants[0].Rank)
	assert.Equal(t, 2, d.Participants[1].Rank)
	assert.Equal(t, 1, d.Participants[2].Rank, "ranks restart per category")
	assert.Empty(t, d.Participants[1].Spot)
}

func TestAllocate_ZeroOrMissingCapacityRejectsCategory(t *testing.T) {
	cands := []Candidate{
		cand("A", domain.VehicleCar, true, true, 0),
		cand("M", domain.VehicleMoto, true, true, 0),
	}
	d := Allocate(cands, map[domain.VehicleType]int{domain.VehicleCar: 0})
	assert.Empty(t, d.Winners)
	assert.Empty(t, d.Approved)
	assert.Len(t, d.Rejected, 2)
	assert.Len(t, d.Participants, 2)
}

func TestAllocate_CapacityAboveDemandTakesAll(t *testing.T) {
	cands := []Candidate{
		cand("A", domain.VehicleCar, false, false, 0),
		cand("B", domain.VehicleCar, false, false, 1),
	}
	d := Allocate(cands, map[domain.VehicleType]int{domain.VehicleCar: 10})
	assert.Len(t, d.Winners, 2)
	assert.Empty(t, d.Rejected)
}

func TestAllocate_EmptyInput(t *testing.T) {
	d := Allocate(nil, map[domain.VehicleType]int{domain.VehicleCar: 3})
	assert.NotNil(t, d.Participants)
	assert.NotNil(t, d.Winners)
	assert.Empty(t, d.Participants)
	assert.Empty(t, d.Winners)
}

func TestAllocate_InputOrderDoesNotMatter(t *testing.T) {
	cands := []Candidate{
		cand("A", domain.VehicleCar, false, false, 3),
		cand("B", domain.VehicleCar, false, true, 4),
		cand("C", domain.VehicleCar, false, false, 3),
		cand("D", domain.VehicleCar, true, false, 9),
		cand("E", domain.VehicleMoto, false, false, 1),
		cand("F", domain.VehicleMoto, false, false, 0),
	}
	capacity := map[domain.VehicleType]int{domain.VehicleCar: 2, domain.VehicleMoto: 1}
	want := Allocate(cands, capacity)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]Candidate(nil), cands...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		got := Allocate(shuffled, capacity)
		assert.Equal(t, want.Participants, got.Participants)
		assert.Equal(t, want.Winners, got.Winners)
	}
}

func TestValidateCapacity(t *testing.T) {
	assert.NoError(t, ValidateCapacity(nil))
	assert.NoError(t, ValidateCapacity(map[domain.VehicleType]int{domain.VehicleCar: 0, domain.VehicleMoto: 4}))
	assert.ErrorIs(t, ValidateCapacity(map[domain.VehicleType]int{domain.VehicleCar: -1}), domain.ErrInvalidCapacity)
	assert.ErrorIs(t, ValidateCapacity(map[domain.VehicleType]int{"truck": 1}), domain.ErrInvalidVehicleType)
}

func TestSpotLabel(t *testing.T) {
	assert.Equal(t, "C-01", SpotLabel(domain.VehicleCar, 1))
	assert.Equal(t, "M-12", SpotLabel(domain.VehicleMoto, 12))
}

func TestPreviousPeriod(t *testing.T) {
	p, err := PreviousPeriod("2025-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-12", p)
	p, err = PreviousPeriod("2025-07")
	require.NoError(t, err)
	assert.Equal(t, "2025-06", p)
	_, err = PreviousPeriod("July")
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)
}
