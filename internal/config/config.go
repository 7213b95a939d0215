package config

import (
	"os"
	"strings"
	"time"

	"parknet-backend/internal/application/priority"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	DatabaseURL         string
	RedisURL            string
	AMQPURL             string
	LotteryEventsQueue  string
	FrontendURLEndsWith string
	DevPassword         string
	HealthAdminKey      string
	LotteryLockTTL      time.Duration
	LotteryLockWait     time.Duration
	PriorityWeights     priority.Weights
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("LOTTERY_EVENTS_QUEUE", "lottery.executed")
	viper.SetDefault("LOTTERY_LOCK_TTL", "2m")
	viper.SetDefault("LOTTERY_LOCK_WAIT", "30s")
	viper.SetDefault("PRIORITY_DISABILITY_WEIGHT", priority.DefaultWeights.Disability)
	viper.SetDefault("PRIORITY_PAY_WEIGHT", priority.DefaultWeights.Pay)
	viper.SetDefault("PRIORITY_CARRYOVER_WEIGHT", priority.DefaultWeights.Carryover)

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL_DEV")
	if env == "production" {
		dbURL = viper.GetString("DATABASE_URL_PROD")
	} else if env == "test" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL_DEV")
	}

	weights := priority.Weights{
		Disability: viper.GetInt("PRIORITY_DISABILITY_WEIGHT"),
		Pay:        viper.GetInt("PRIORITY_PAY_WEIGHT"),
		Carryover:  viper.GetInt("PRIORITY_CARRYOVER_WEIGHT"),
	}
	if err := weights.Validate(); err != nil {
		return nil, err
	}

	return &Config{
		Env:                 env,
		Port:                viper.GetString("PORT"),
		DatabaseURL:         dbURL,
		RedisURL:            viper.GetString("REDIS_URL"),
		AMQPURL:             viper.GetString("AMQP_URL"),
		LotteryEventsQueue:  viper.GetString("LOTTERY_EVENTS_QUEUE"),
		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         viper.GetString("DEV_PASSWORD"),
		HealthAdminKey:      viper.GetString("HEALTH_ADMIN_KEY"),
		LotteryLockTTL:      viper.GetDuration("LOTTERY_LOCK_TTL"),
		LotteryLockWait:     viper.GetDuration("LOTTERY_LOCK_WAIT"),
		PriorityWeights:     weights,
	}, nil
}
