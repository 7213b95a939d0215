package main

import (
	"context"
	"os"
	"time"

	"parknet-backend/internal/config"
	"parknet-backend/internal/infrastructure/database"
	"parknet-backend/internal/interfaces/router"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load")
	}
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	app, deps, err := router.CreateApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("app create")
	}

	sqlDB, err := deps.DB.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("postgres: get DB")
	}
	if err := sqlDB.Ping(); err != nil {
		log.Fatal().Err(err).Msg("postgres connection failed")
	}
	if err := database.AutoMigrate(deps.DB); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}
	log.Info().Msg("postgres connected")

	if deps.Rdb != nil {
		if err := deps.Rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		log.Info().Msg("redis connected")
	}
	if deps.Publisher != nil {
		if err := deps.Publisher.Ping(); err != nil {
			log.Warn().Err(err).Msg("broker unreachable, lottery events will be dropped")
		} else {
			log.Info().Str("queue", deps.Publisher.Queue).Msg("broker connected")
		}
	}

	log.Info().Str("port", cfg.Port).Msgf("server running at http://localhost:%s (health: /health/json)", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("listen")
	}
}
