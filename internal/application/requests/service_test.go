package requests

import (
	"context"
	"sync"
	"testing"
	"time"

	"parknet-backend/internal/domain"
	"parknet-backend/internal/infrastructure/database"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func setupRequestsTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))
	return &Service{DB: db}, db
}

func createResident(t *testing.T, db *gorm.DB, name string) domain.Resident {
	r := domain.Resident{
		FullName:     name,
		DocumentID:   uuid.NewString()[:12],
		Email:        uuid.NewString() + "@parknet.local",
		PasswordHash: "x",
		Apartment:    "101",
	}
	for _, vt := range domain.VehicleTypes {
		r.Slots = append(r.Slots, domain.VehicleSlot{VehicleType: vt, Available: true})
	}
	require.NoError(t, db.Create(&r).Error)
	return r
}

func carInput(residentID uuid.UUID) SubmitInput {
	return SubmitInput{
		ResidentID:   residentID,
		VehicleType:  domain.VehicleCar,
		LicensePlate: "abc-123",
		Period:       "2025-06",
	}
}

func TestSubmit_CreatesPendingRequest(t *testing.T) {
	svc, db := setupRequestsTest(t)
	r := createResident(t, db, "Ana Ruiz")

	in := carInput(r.ResidentID)
	in.Pay = true
	req, err := svc.Submit(context.Background(), in)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, req.RequestID)
	assert.Equal(t, domain.StatusPending, req.Status)
	assert.Equal(t, "ABC-123", req.LicensePlate)
	assert.True(t, req.Pay)
	assert.False(t, req.Disability)

	stored, err := svc.Get(context.Background(), req.RequestID)
	require.NoError(t, err)
	assert.Equal(t, "2025-06", stored.Period)
	assert.Equal(t, domain.VehicleCar, stored.VehicleType)
}

func TestSubmit_ValidatesInput(t *testing.T) {
	svc, db := setupRequestsTest(t)
	r := createResident(t, db, "Ana Ruiz")
	ctx := context.Background()

	in := carInput(r.ResidentID)
	in.Period = "2025-6"
	_, err := svc.Submit(ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)

	in = carInput(r.ResidentID)
	in.VehicleType = "bike"
	_, err = svc.Submit(ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidVehicleType)

	in = carInput(r.ResidentID)
	in.LicensePlate = "A1"
	_, err = svc.Submit(ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Submit(ctx, carInput(uuid.New()))
	assert.ErrorIs(t, err, domain.ErrResidentNotFound)
}

func TestSubmit_RejectsDuplicateActiveRequest(t *testing.T) {
	svc, db := setupRequestsTest(t)
	r := createResident(t, db, "Ana Ruiz")
	ctx := context.Background()

	_, err := svc.Submit(ctx, carInput(r.ResidentID))
	require.NoError(t, err)
	_, err = svc.Submit(ctx, carInput(r.ResidentID))
	assert.ErrorIs(t, err, domain.ErrDuplicateActiveRequest)

	moto := carInput(r.ResidentID)
	moto.VehicleType = domain.VehicleMoto
	_, err = svc.Submit(ctx, moto)
	assert.NoError(t, err, "other vehicle type is independent")

	next := carInput(r.ResidentID)
	next.Period = "2025-07"
	_, err = svc.Submit(ctx, next)
	assert.NoError(t, err, "other period is independent")
}

func TestSubmit_AllowedAgainAfterRejection(t *testing.T) {
	svc, db := setupRequestsTest(t)
	r := createResident(t, db, "Ana Ruiz")
	ctx := context.Background()

	first, err := svc.Submit(ctx, carInput(r.ResidentID))
	require.NoError(t, err)
	require.NoError(t, svc.Transition(ctx, first.RequestID, domain.StatusRejected))

	_, err = svc.Submit(ctx, carInput(r.ResidentID))
	assert.NoError(t, err)
}

func TestSubmit_ConcurrentDuplicatesCreateOne(t *testing.T) {
	svc, db := setupRequestsTest(t)
	r := createResident(t, db, "Ana Ruiz")

	const n = 5
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Submit(context.Background(), carInput(r.ResidentID))
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, domain.ErrDuplicateActiveRequest)
		}
	}
	assert.Equal(t, 1, ok)

	var count int64
	require.NoError(t, db.Model(&domain.ParkingRequest{}).Where("resident_id = ?", r.ResidentID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestListPendingForPeriod_SubmissionOrder(t *testing.T) {
	svc, db := setupRequestsTest(t)
	ctx := context.Background()
	base := time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)

	var ids []uuid.UUID
	for i, name := range []string{"Ana", "Bruno", "Carla"} {
		r := createResident(t, db, name)
		req := domain.ParkingRequest{
			ResidentID:   r.ResidentID,
			VehicleType:  domain.VehicleCar,
			LicensePlate: "ABC123",
			Status:       domain.StatusPending,
			Period:       "2025-06",
			CreatedAt:    base.Add(time.Duration(3-i) * time.Minute),
		}
		require.NoError(t, db.Create(&req).Error)
		ids = append(ids, req.RequestID)
	}
	other := createResident(t, db, "Diego")
	require.NoError(t, db.Create(&domain.ParkingRequest{
		ResidentID: other.ResidentID, VehicleType: domain.VehicleCar, LicensePlate: "XYZ987",
		Status: domain.StatusPending, Period: "2025-07", CreatedAt: base,
	}).Error)

	out, err := svc.ListPendingForPeriod(ctx, "2025-06")
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, ids[2], out[0].RequestID)
	assert.Equal(t, ids[1], out[1].RequestID)
	assert.Equal(t, ids[0], out[2].RequestID)

	require.NoError(t, svc.Transition(ctx, ids[1], domain.StatusApproved))
	out, err = svc.ListPendingForPeriod(ctx, "2025-06")
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestTransition_OnlyFromPending(t *testing.T) {
	svc, db := setupRequestsTest(t)
	r := createResident(t, db, "Ana Ruiz")
	ctx := context.Background()

	req, err := svc.Submit(ctx, carInput(r.ResidentID))
	require.NoError(t, err)

	require.NoError(t, svc.Transition(ctx, req.RequestID, domain.StatusApproved))
	assert.ErrorIs(t, svc.Transition(ctx, req.RequestID, domain.StatusRejected), domain.ErrInvalidTransition)
	assert.ErrorIs(t, svc.Transition(ctx, req.RequestID, domain.StatusApproved), domain.ErrInvalidTransition)
	assert.ErrorIs(t, svc.Transition(ctx, uuid.New(), domain.StatusApproved), domain.ErrRequestNotFound)

	stored, err := svc.Get(ctx, req.RequestID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, stored.Status)
}

func TestTransition_ToPendingIsInvalid(t *testing.T) {
	svc, db := setupRequestsTest(t)
	r := createResident(t, db, "Ana Ruiz")
	req, err := svc.Submit(context.Background(), carInput(r.ResidentID))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Transition(context.Background(), req.RequestID, domain.StatusPending), domain.ErrInvalidTransition)
}

func TestList_OrdersByStatusAndPaginates(t *testing.T) {
	svc, db := setupRequestsTest(t)
	ctx := context.Background()

	statuses := []domain.RequestStatus{domain.StatusRejected, domain.StatusApproved, domain.StatusPending, domain.StatusPending}
	for _, st := range statuses {
		r := createResident(t, db, "R")
		require.NoError(t, db.Create(&domain.ParkingRequest{
			ResidentID: r.ResidentID, VehicleType: domain.VehicleMoto, LicensePlate: "MOT12A",
			Status: st, Period: "2025-06",
		}).Error)
	}

	all, err := svc.List(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, domain.StatusPending, all[0].Status)
	assert.Equal(t, domain.StatusPending, all[1].Status)
	assert.Equal(t, domain.StatusApproved, all[2].Status)
	assert.Equal(t, domain.StatusRejected, all[3].Status)

	page, err := svc.List(ctx, ListFilter{Offset: 2, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, domain.StatusApproved, page[0].Status)

	st := domain.StatusRejected
	only, err := svc.List(ctx, ListFilter{Status: &st})
	require.NoError(t, err)
	require.Len(t, only, 1)

	bad := domain.RequestStatus("done")
	_, err = svc.List(ctx, ListFilter{Status: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestListForResident_NewestFirst(t *testing.T) {
	svc, db := setupRequestsTest(t)
	r := createResident(t, db, "Ana Ruiz")
	ctx := context.Background()

	for i, period := range []string{"2025-04", "2025-05", "2025-06"} {
		require.NoError(t, db.Create(&domain.ParkingRequest{
			ResidentID: r.ResidentID, VehicleType: domain.VehicleCar, LicensePlate: "ABC123",
			Status: domain.StatusRejected, Period: period,
			CreatedAt: time.Date(2025, time.Month(3+i), 25, 0, 0, 0, 0, time.UTC),
		}).Error)
	}

	out, err := svc.ListForResident(ctx, r.ResidentID, 0, 0)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "2025-06", out[0].Period)
	assert.Equal(t, "2025-04", out[2].Period)

	page, err := svc.ListForResident(ctx, r.ResidentID, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "2025-05", page[0].Period)

	rest, err := svc.ListForResident(ctx, r.ResidentID, 2, 10)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "2025-04", rest[0].Period)
}

func TestSubmit_ClosedPeriodIsRejected(t *testing.T) {
	svc, db := setupRequestsTest(t)
	r := createResident(t, db, "Ana Ruiz")
	ctx := context.Background()

	executedAt := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&domain.Lottery{
		Period:       "2025-06",
		SpotsOffered: datatypes.NewJSONType(map[domain.VehicleType]int{}),
		Participants: datatypes.JSONSlice[domain.ParticipantSnapshot]{},
		Winners:      datatypes.JSONSlice[domain.ParticipantSnapshot]{},
		ExecutedAt:   &executedAt,
	}).Error)

	_, err := svc.Submit(ctx, carInput(r.ResidentID))
	assert.ErrorIs(t, err, domain.ErrPeriodClosed)

	var n int64
	require.NoError(t, db.Model(&domain.ParkingRequest{}).Count(&n).Error)
	assert.Zero(t, n)

	// The following month is still open.
	next := carInput(r.ResidentID)
	next.Period = "2025-07"
	req, err := svc.Submit(ctx, next)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, req.Status)
}

func TestSubmit_ClaimedButUnexecutedPeriodStaysOpen(t *testing.T) {
	svc, db := setupRequestsTest(t)
	r := createResident(t, db, "Ana Ruiz")

	require.NoError(t, db.Create(&domain.Lottery{
		Period:       "2025-06",
		SpotsOffered: datatypes.NewJSONType(map[domain.VehicleType]int{}),
		Participants: datatypes.JSONSlice[domain.ParticipantSnapshot]{},
		Winners:      datatypes.JSONSlice[domain.ParticipantSnapshot]{},
	}).Error)

	_, err := svc.Submit(context.Background(), carInput(r.ResidentID))
	assert.NoError(t, err)
}
