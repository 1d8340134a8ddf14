package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sai-review-api/internal/config"
	"github.com/noah-isme/sai-review-api/internal/database"
	"github.com/noah-isme/sai-review-api/internal/events"
	"github.com/noah-isme/sai-review-api/internal/grading"
	"github.com/noah-isme/sai-review-api/internal/handler"
	"github.com/noah-isme/sai-review-api/internal/kv"
	"github.com/noah-isme/sai-review-api/internal/logger"
	"github.com/noah-isme/sai-review-api/internal/middleware"
	"github.com/noah-isme/sai-review-api/internal/repository"
	"github.com/noah-isme/sai-review-api/internal/router"
	"github.com/noah-isme/sai-review-api/internal/service"
	"github.com/noah-isme/sai-review-api/internal/workflow"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("failed to load configuration")
	}

	log, logCloser := logger.New(cfg)
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
	}

	backend, err := openBackend(cfg, redisClient)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("failed to open store backend")
	}

	table, err := grading.LoadTable(cfg.GradeTablePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load grade table")
	}
	engine, err := grading.NewEngine(table)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid grade table")
	}
	rule, err := grading.NewEligibilityRule(cfg.EligibilityThreshold)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid eligibility threshold")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL, nats.Name(cfg.AppName))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to nats")
		}
		defer natsConn.Drain()
	}

	bus := events.NewBus(redisClient, natsConn, cfg.EventsChannel, log)

	validate := validator.New(validator.WithRequiredStructEnabled())
	store := repository.NewSubmissionStore(backend, log)
	machine := workflow.NewMachine(validate, time.Now)

	dashboardService := service.NewDashboardService(store, engine, validate, redisClient, cfg.StatsCacheTTL, log)
	submissionService := service.NewSubmissionService(store, engine, rule, validate, bus, dashboardService, log)
	reviewService := service.NewReviewService(store, machine, engine, validate, bus, dashboardService, log)
	userService := service.NewUserService(store, engine, validate, log)
	seedService := service.NewSeedService(store, machine, dashboardService, cfg.SeedEnabled, cfg.SeedToken, log)

	if err := bus.Subscribe(ctx, func(event events.Event) {
		log.Debug().
			Str("event", string(event.Type)).
			Str("submission_id", event.SubmissionID).
			Str("source", event.Source).
			Msg("review activity from another node")
	}); err != nil {
		log.Warn().Err(err).Msg("event subscription unavailable")
	}

	if cfg.SeedOnStart {
		result, err := seedService.SeedOnStart(ctx)
		if err != nil {
			log.Error().Err(err).Msg("demo seeding failed")
		} else {
			log.Info().Int("users", result.Users).Int("submissions", result.Submissions).Int("skipped", result.Skipped).Msg("demo data seeded")
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &log, ObservedPrefix: "/api/v2/review"})
	router.Register(app, cfg, router.Dependencies{
		UserHandler:       handler.NewUserHandler(userService, log),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, log),
		ReviewHandler:     handler.NewReviewHandler(reviewService, dashboardService, log),
		SeedHandler:       handler.NewSeedHandler(seedService, log),
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(ctx, app, log)
}

func openBackend(cfg config.Config, redisClient *redis.Client) (kv.Store, error) {
	switch cfg.StoreBackend {
	case config.StoreRedis:
		return kv.NewRedis(redisClient, "sai"), nil
	case config.StorePostgres:
		db, err := database.ConnectPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return kv.NewSQL(db)
	case config.StoreSQLite:
		db, err := database.ConnectSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return kv.NewSQL(db)
	default:
		return kv.NewMemory(), nil
	}
}

func waitForShutdown(ctx context.Context, app *fiber.App, log zerolog.Logger) {
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	log.Info().Msg("server stopped")
}
