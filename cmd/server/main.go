package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/clubvote/clubvote-go/internal/config"
	"github.com/clubvote/clubvote-go/internal/db"
	"github.com/clubvote/clubvote-go/internal/handler"
	"github.com/clubvote/clubvote-go/internal/ledger"
	"github.com/clubvote/clubvote-go/internal/middleware"
	"github.com/clubvote/clubvote-go/internal/repository"
	"github.com/clubvote/clubvote-go/internal/router"
	"github.com/clubvote/clubvote-go/internal/service"
)

func main() {
	cfg := config.Load()

	middleware.InitLogger(cfg.LogLevel, "clubvote-api")
	log := middleware.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate schema")
	}

	handler.InitMetrics(pool)

	cache := service.NewCacheService(cfg.RedisURL, log)
	defer cache.Close()

	bus := service.NewBus()

	candidates := repository.NewCandidateRepo(pool)
	windows := repository.NewWindowRepo(pool)
	templates := repository.NewTemplateRepo(pool)

	settlement := ledger.NewClient(cfg.LedgerURL, cfg.LedgerTimeout, log)

	elections := service.NewElectionService(candidates, windows, cache, bus, log)
	biometrics := service.NewBiometricService(templates, cfg.VectorDim, cfg.StrictReverify, log)
	votes := service.NewVoteService(elections, biometrics, candidates, settlement, cache, bus, log)
	tally := service.NewTallyService(windows, candidates, settlement, cache, log)

	worker := service.NewTallyWorker(tally, bus, log)
	worker.SetFlushObserver(func(d time.Duration) {
		handler.Metrics.TallyRefreshDuration.Observe(d.Seconds())
	})
	go worker.Start(ctx)

	app := fiber.New(fiber.Config{
		AppName:      "ClubVote API",
		ServerHeader: "ClubVote",
	})

	router.Setup(app, &router.Handlers{
		Election: handler.NewElectionHandler(elections),
		Vote:     handler.NewVoteHandler(votes),
		Results:  handler.NewResultsHandler(tally),
		Health:   handler.NewHealthHandler(pool, cache.Client()),
	}, cfg.CORSOrigins)

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		if err := app.Shutdown(); err != nil {
			log.Error().Err(err).Msg("shutdown error")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("env", cfg.Environment).Msg("clubvote backend starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
