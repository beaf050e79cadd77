package sched

import (
	"context"
	"time"

	"scenario-quiz/internal/infra/metrics"
	"scenario-quiz/internal/usecase"

	"github.com/rs/zerolog"
)

// LedgerStatsWorker periodically publishes ledger token counts to the
// tokens gauge.
type LedgerStatsWorker struct {
	interval time.Duration
	ledgerUC usecase.LedgerUseCase
	log      *zerolog.Logger
}

func NewLedgerStatsWorker(interval time.Duration, ledgerUC usecase.LedgerUseCase, logger *zerolog.Logger) *LedgerStatsWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	statsLog := logger.With().Str("component", "LedgerStatsWorker").Logger()
	return &LedgerStatsWorker{
		interval: interval,
		ledgerUC: ledgerUC,
		log:      &statsLog,
	}
}

func (w *LedgerStatsWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting ledger stats worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Run once on startup, then on every tick
	w.publish(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping ledger stats worker")
			return ctx.Err()
		case <-ticker.C:
			w.publish(ctx)
		}
	}
}

func (w *LedgerStatsWorker) publish(ctx context.Context) {
	valid, expired := w.ledgerUC.Counts(ctx)
	metrics.SetLedgerTokens(valid, expired)
	w.log.Debug().Int("valid", valid).Int("expired", expired).Msg("ledger stats published")
}
