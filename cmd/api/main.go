package main

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/hifzhub/quran-quiz-api/internal/cache"
	"github.com/hifzhub/quran-quiz-api/internal/config"
	"github.com/hifzhub/quran-quiz-api/internal/delivery/httpapi"
	"github.com/hifzhub/quran-quiz-api/internal/genai"
	"github.com/hifzhub/quran-quiz-api/internal/infra/postgres"
	"github.com/hifzhub/quran-quiz-api/internal/infra/postgres/repository"
	"github.com/hifzhub/quran-quiz-api/internal/logger"
	"github.com/hifzhub/quran-quiz-api/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zl, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB.URL, postgres.PoolConfig{
		MaxConns:        int32(cfg.DB.MaxConnections),
		MaxConnLifetime: cfg.DB.MaxConnLifetime,
	})
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	questionRepo := repository.NewQuestionRepository(pool)
	attemptRepo := repository.NewAttemptRepository(pool)
	quizRepo := repository.NewDailyQuizRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	streakRepo := repository.NewStreakRepository(pool)
	verseRepo := repository.NewVerseRepository(pool)
	runRepo := repository.NewGenerationRunRepository(pool)
	completionStore := repository.NewCompletionStore(postgres.NewTransactor(pool))

	quizCache, err := cache.NewLRU(cfg.Cache.Size)
	if err != nil {
		zl.Fatal("failed to build quiz cache", zap.Error(err))
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	selector := service.NewSelectorService(quizRepo, questionRepo, quizCache, rng, zl)
	streaks := service.NewStreakService(sessionRepo, streakRepo)
	sessions := service.NewSessionService(sessionRepo, quizRepo, questionRepo, completionStore, streaks, zl)

	// Batch generation runs on a cron schedule when enabled.
	if cfg.Generator.Enabled {
		provider := genai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
		generator := service.NewGeneratorService(verseRepo, questionRepo, runRepo, provider, service.GeneratorConfig{
			TargetCoverage: cfg.Generator.TargetCoverage,
			ScanLimit:      cfg.Generator.ScanLimit,
			SubBatchSize:   cfg.Generator.SubBatchSize,
			PerVerse:       cfg.Generator.PerVerse,
			BatchDelay:     cfg.Generator.BatchDelay,
		}, zl)

		c := cron.New(cron.WithLocation(time.UTC))
		if _, err := c.AddFunc(cfg.Generator.Schedule, func() {
			zl.Info("cron triggered: batch question generation")
			if _, err := generator.Run(ctx); err != nil {
				zl.Error("generation run failed", zap.Error(err))
			}
		}); err != nil {
			zl.Fatal("failed to schedule generation job", zap.Error(err))
		}
		c.Start()
		defer c.Stop()
	}

	handler := httpapi.NewHandler(selector, sessions, streaks, questionRepo, attemptRepo, zl)

	srv := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: handler.Router(cfg.HTTP.AllowedOrigins),
	}

	go func() {
		zl.Info("api server started", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("server shutdown failed", zap.Error(err))
	}
}
