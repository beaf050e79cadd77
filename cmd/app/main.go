// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"scenario-quiz/internal/config"
	"scenario-quiz/internal/domain/ports/repository"
	aiAdapters "scenario-quiz/internal/infra/adapters/ai"
	"scenario-quiz/internal/infra/export"
	"scenario-quiz/internal/infra/logging"
	"scenario-quiz/internal/infra/memstore"
	"scenario-quiz/internal/infra/metrics"
	"scenario-quiz/internal/infra/prompts"
	red "scenario-quiz/internal/infra/redis"
	"scenario-quiz/internal/infra/sched"
	"scenario-quiz/internal/infra/web"
	"scenario-quiz/internal/infra/worker"
	"scenario-quiz/internal/usecase"

	"github.com/rs/zerolog"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
)

const (
	statsInterval   = time.Minute
	shutdownTimeout = 15 * time.Second
)

// stores groups the persistence ports for one backend.
type stores struct {
	ledger   repository.LedgerStore
	sessions repository.SessionStore
	batches  repository.BatchStore
	locker   repository.Locker
	limiter  repository.RateLimiter
	close    func() error
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- Config ----
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Stores ----
	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("store")
	}
	defer func() {
		if err := st.close(); err != nil {
			logger.Error().Err(err).Msg("close store")
		}
	}()

	// ---- Use cases ----
	ledgerUC, err := usecase.NewLedgerUseCase(ctx, st.ledger, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("load ledger")
	}
	sessionUC := usecase.NewSessionUseCase(ledgerUC, st.sessions, st.batches, st.limiter,
		usecase.RedeemPolicy{Limit: cfg.Session.RedeemLimit, Window: cfg.Session.RedeemWindow},
		cfg.Runtime.Dev, logger)

	catalog := prompts.MustDefault()
	text, images, err := aiAdapters.Build(ctx, cfg.AI, catalog, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("ai providers")
	}

	pool := worker.NewPool(cfg.AI.ImageWorkers, cfg.AI.ImageQueue, logger)
	pool.Start(ctx)
	defer pool.Stop()

	generationUC := usecase.NewGenerationUseCase(sessionUC, ledgerUC, st.batches, text, images, pool,
		usecase.GenerationOptions{ImageConcurrency: cfg.AI.ConcurrentLimit, ImageTimeout: cfg.AI.ImageTimeout}, logger)

	printable, err := export.NewPrintableView()
	if err != nil {
		logger.Fatal().Err(err).Msg("printable template")
	}
	renderer := export.NewChromiumRenderer(cfg.Export, logger)
	defer renderer.Close()

	exportUC := usecase.NewExportUseCase(st.batches, printable, renderer, export.NewPDFWriter(), st.locker,
		usecase.ExportOptions{Scale: cfg.Export.Scale, LockTTL: cfg.Export.LockTTL, FileName: cfg.Export.FileName},
		logger)

	// ---- HTTP ----
	auth := web.NewAuthManager(cfg.Admin.JWTSecret, cfg.HTTP.SecureCookies, "", cfg.Admin.SessionTTL)
	handler := web.NewServer(ledgerUC, sessionUC, generationUC, exportUC, auth, cfg, logger).Routes()
	server := web.NewHTTPServer(cfg.HTTP, handler)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
			cancel()
		}
	}()

	// ---- Ledger stats ----
	stats := sched.NewLedgerStatsWorker(statsInterval, ledgerUC, logger)
	go func() { _ = stats.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
		logger.Info().Msg("shutdown requested")
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
}

func openStores(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*stores, error) {
	switch cfg.Store.Driver {
	case "redis":
		client, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		logger.Info().Int("db", cfg.Redis.DB).Msg("using redis store")
		return &stores{
			ledger:   red.NewLedgerStore(client, ""),
			sessions: red.NewSessionStore(client, cfg.Session.TTL),
			batches:  red.NewBatchStore(client, cfg.Session.TTL),
			locker:   red.NewLocker(client),
			limiter:  red.NewRateLimiter(client),
			close:    client.Close,
		}, nil
	default:
		logger.Info().Msg("using in-memory store")
		return &stores{
			ledger:   memstore.NewLedgerStore(),
			sessions: memstore.NewSessionStore(cfg.Session.TTL),
			batches:  memstore.NewBatchStore(cfg.Session.TTL),
			locker:   memstore.NewLocker(),
			limiter:  memstore.NewRateLimiter(),
			close:    func() error { return nil },
		}, nil
	}
}
