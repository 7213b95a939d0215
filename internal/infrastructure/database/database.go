package database

import (
	"time"

	"parknet-backend/internal/domain"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open opens a GORM DB from a Postgres DSN.
// PreferSimpleProtocol disables prepared statement caching to avoid 42P05
// ("prepared statement already exists") behind connection poolers (PgBouncer, Supabase).
// TranslateError maps unique violations to gorm.ErrDuplicatedKey.
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{TranslateError: true, Logger: Logger()})
}

// Logger routes gorm's warnings and errors through zerolog. Lookups that find
// nothing are expected outcomes here, not errors.
func Logger() logger.Interface {
	zl := log.With().Str("component", "gorm").Logger()
	return logger.New(&zl, logger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

// Models lists every table the service owns, parents first.
func Models() []interface{} {
	return []interface{}{
		&domain.Resident{},
		&domain.VehicleSlot{},
		&domain.ParkingRequest{},
		&domain.Lottery{},
		&domain.RankingWeights{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
