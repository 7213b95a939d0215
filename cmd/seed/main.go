package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"parknet-backend/internal/application/requests"
	"parknet-backend/internal/application/slots"
	"parknet-backend/internal/config"
	"parknet-backend/internal/domain"
	"parknet-backend/internal/infrastructure/database"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	password := flag.String("password", os.Getenv("SEED_PASSWORD"), "password for every seeded account")
	period := flag.String("period", "", "also submit one sample pending request per resident for this period (YYYY-MM)")
	reset := flag.Bool("reset", true, "delete existing data before seeding")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *password == "" {
		log.Fatal().Msg("a password is required: pass -password or set SEED_PASSWORD")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load")
	}
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres open")
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	ctx := context.Background()
	if *reset {
		if err := database.Reset(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("reset")
		}
		log.Info().Msg("existing data removed")
	}
	residents, err := database.Seed(ctx, db, *password, database.DefaultSeed)
	if err != nil {
		log.Fatal().Err(err).Msg("seed")
	}
	log.Info().Int("residents", len(residents)).Msg("residents seeded")

	// Residents created outside this script may predate an entitlement category.
	var all []domain.Resident
	if err := db.WithContext(ctx).Find(&all).Error; err != nil {
		log.Fatal().Err(err).Msg("list residents")
	}
	registry := &slots.Service{DB: db}
	for _, r := range all {
		if _, err := registry.EnsureSlots(ctx, r.ResidentID); err != nil {
			log.Fatal().Err(err).Str("resident", r.Email).Msg("ensure slots")
		}
	}

	if *period == "" {
		return
	}
	svc := &requests.Service{DB: db}
	submitted := 0
	for i, r := range residents {
		if r.Role != domain.RoleResident {
			continue
		}
		in := sampleRequest(i, r, *period)
		if _, err := svc.Submit(ctx, in); err != nil {
			log.Fatal().Err(err).Str("resident", r.Email).Msg("submit sample request")
		}
		submitted++
	}
	log.Info().Int("requests", submitted).Str("period", *period).Msg("sample requests submitted")
}

// sampleRequest alternates vehicle types and priority flags so a draw over the
// seeded data exercises every ranking tier.
func sampleRequest(i int, r domain.Resident, period string) requests.SubmitInput {
	vt := domain.VehicleCar
	plate := fmt.Sprintf("CAR%03d", i)
	if i%2 == 0 {
		vt = domain.VehicleMoto
		plate = fmt.Sprintf("MOT%03d", i)
	}
	return requests.SubmitInput{
		ResidentID:   r.ResidentID,
		VehicleType:  vt,
		LicensePlate: plate,
		Disability:   i%3 == 0,
		Pay:          i%2 == 1,
		Period:       period,
	}
}
