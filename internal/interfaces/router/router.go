package router

import (
	healthsvc "parknet-backend/internal/application/health"
	lotterysvc "parknet-backend/internal/application/lottery"
	reqsvc "parknet-backend/internal/application/requests"
	slotsvc "parknet-backend/internal/application/slots"
	"parknet-backend/internal/config"
	"parknet-backend/internal/constants"
	"parknet-backend/internal/infrastructure/database"
	"parknet-backend/internal/infrastructure/lock"
	"parknet-backend/internal/infrastructure/queue"
	healthhandler "parknet-backend/internal/interfaces/handlers/health"
	lotteryhandler "parknet-backend/internal/interfaces/handlers/lottery"
	reqhandler "parknet-backend/internal/interfaces/handlers/requests"
	reshandler "parknet-backend/internal/interfaces/handlers/residents"
	"parknet-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Deps are the opened infrastructure handles. DB is required; Rdb and Publisher
// are optional and disable sessions/locking and event publication when nil.
type Deps struct {
	DB        *gorm.DB
	Rdb       *redis.Client
	Publisher *queue.Publisher
}

// CreateApp opens the configured infrastructure and builds the app.
func CreateApp(cfg *config.Config) (*fiber.App, Deps, error) {
	var deps Deps
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, deps, err
	}
	deps.DB = db
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, deps, err
		}
		deps.Rdb = redis.NewClient(opt)
	} else {
		log.Warn().Msg("REDIS_URL not set: sessions, lottery lock and request stats disabled")
	}
	if cfg.AMQPURL != "" {
		deps.Publisher = queue.NewPublisher(cfg.AMQPURL, cfg.LotteryEventsQueue)
	}
	return NewApp(cfg, deps), deps, nil
}

// NewApp wires handlers and middleware around already-opened dependencies.
func NewApp(cfg *config.Config, deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())
	app.Use(middleware.HealthMarker(deps.Rdb))
	app.Use(middleware.Session(deps.Rdb))

	collector := &healthsvc.Collector{Rdb: deps.Rdb, DB: &gormDBPinger{db: deps.DB}}
	if deps.Publisher != nil {
		collector.Broker = deps.Publisher
	}
	hh := &healthhandler.Handlers{Collector: collector, HealthAdminKey: cfg.HealthAdminKey}
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)
	app.Get("/health/reset", hh.Reset)

	lottery := &lotterysvc.Service{DB: deps.DB, Weights: cfg.PriorityWeights}
	if deps.Rdb != nil {
		lottery.Locker = lock.NewRedisLocker(deps.Rdb, cfg.LotteryLockTTL, cfg.LotteryLockWait)
	}
	if deps.Publisher != nil {
		lottery.Events = deps.Publisher
	}

	rh := &reqhandler.Handlers{Service: &reqsvc.Service{DB: deps.DB}}
	lh := &lotteryhandler.Handlers{Service: lottery}
	sh := &reshandler.Handlers{Service: &slotsvc.Service{DB: deps.DB}}

	api := app.Group("/api/v1", middleware.RequireAuth())

	api.Post("/requests", middleware.AuthorizePermission(constants.SubmitRequest), rh.Submit)
	api.Get("/requests/mine", middleware.AuthorizePermission(constants.ViewOwnRequests), rh.Mine)
	api.Get("/requests/:id", middleware.AuthorizePermission(constants.ViewOwnRequests), rh.Get)
	api.Get("/requests", middleware.AuthorizePermission(constants.ListRequests), rh.List)

	api.Post("/lotteries", middleware.AuthorizePermission(constants.RunLottery), lh.Run)
	api.Get("/lotteries/:period", middleware.AuthorizePermission(constants.ViewLottery), lh.Result)
	api.Get("/lotteries/:period/my-assignment", middleware.AuthorizePermission(constants.ViewOwnLottery), lh.MyAssignment)

	api.Get("/residents/:id/slots", middleware.AuthorizePermission(constants.ViewResidentSlot), sh.Slots)
	api.Post("/residents/:id/slots/:vehicle_type/release", middleware.AuthorizePermission(constants.ReleaseSlot), sh.Release)

	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Route not found")
	})
	return app
}
