package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/deskhive/workspace-reservation/internal/cache"
	"github.com/deskhive/workspace-reservation/internal/checkin"
	"github.com/deskhive/workspace-reservation/internal/config"
	"github.com/deskhive/workspace-reservation/internal/database"
	"github.com/deskhive/workspace-reservation/internal/handler"
	"github.com/deskhive/workspace-reservation/internal/middleware"
	"github.com/deskhive/workspace-reservation/internal/pricing"
	"github.com/deskhive/workspace-reservation/internal/queue"
	"github.com/deskhive/workspace-reservation/internal/repository"
	"github.com/deskhive/workspace-reservation/internal/reservation"
	"github.com/deskhive/workspace-reservation/internal/router"
	"github.com/deskhive/workspace-reservation/internal/service"
)

func main() {
	// .env is optional; real deployments inject the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	db, err := database.Open(database.Config{
		User: cfg.DBUser, Pass: cfg.DBPass,
		Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	orgRepo := repository.NewOrganizationRepo(db)
	workspaceRepo := repository.NewWorkspaceRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	checkinRepo := repository.NewCheckInRepo(db)

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and slot caching disabled")
	}
	var slots *cache.SlotCache
	if slotCfg := config.LoadSlotCacheConfig(); slotCfg.Enabled && rdb != nil {
		slots = cache.NewSlotCache(rdb, slotCfg.Prefix, slotCfg.TTL)
	}

	events := service.NewEventPublisher(cfg.AMQPURL)
	go func() {
		if err := queue.StartAuditConsumer(cfg.AMQPURL); err != nil {
			log.Printf("audit consumer stopped: %v", err)
		}
	}()

	avail := reservation.NewAvailability(workspaceRepo, bookingRepo, cfg.OperatingWindow)
	calc := pricing.NewCalculator(cfg.PeakWindows, cfg.PeakMultiplierPct)
	var slotCache reservation.SlotCache
	if slots != nil {
		slotCache = slots
	}
	manager := reservation.NewManager(
		orgRepo, workspaceRepo, bookingRepo, checkinRepo,
		avail, calc, cfg.LockAcquireTimeout, events, slotCache, nil,
	)
	tracker := checkin.NewTracker(bookingRepo, checkinRepo, workspaceRepo, avail, events, nil)

	sweeper := reservation.NewSweeper(manager, bookingRepo, cfg.SweepInterval, nil)
	go sweeper.Run(context.Background())

	e := echo.New()
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	var limiter echo.MiddlewareFunc
	if rlCfg := config.LoadRateLimitConfig(); rlCfg.Enabled && rdb != nil {
		limiter = middleware.NewTokenBucket(rlCfg, rdb)
	}

	bookingHandler := handler.NewBookingHandler(manager, workspaceRepo, bookingRepo, slots)
	adminHandler := handler.NewAdminHandler(workspaceRepo, orgRepo)
	checkinHandler := handler.NewCheckInHandler(tracker, bookingRepo)

	router.RegisterRoutes(e)
	router.RegisterMember(e, bookingHandler, cfg.JWTSecret, limiter)
	router.RegisterCheckIn(e, checkinHandler, cfg.JWTSecret, limiter)
	router.RegisterAdmin(e, adminHandler, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
