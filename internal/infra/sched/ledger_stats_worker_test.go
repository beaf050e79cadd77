//go:build !integration

package sched

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"scenario-quiz/internal/infra/metrics"
	"scenario-quiz/internal/usecase"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
)

type countingLedger struct {
	usecase.LedgerUseCase
	calls atomic.Int32
}

func (c *countingLedger) Counts(context.Context) (int, int) {
	c.calls.Add(1)
	return 7, 4
}

func TestLedgerStatsWorkerPublishesUntilCancelled(t *testing.T) {
	metrics.MustRegister()
	logger := zerolog.New(io.Discard)
	ledger := &countingLedger{}
	w := NewLedgerStatsWorker(5*time.Millisecond, ledger, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for ledger.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("worker ran %d times, want at least 3", ledger.calls.Load())
		case <-time.After(time.Millisecond):
		}
	}
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v, want context.Canceled", err)
	}

	want := `
# HELP tokens_in_ledger Tokens currently in the ledger by state (valid/expired).
# TYPE tokens_in_ledger gauge
tokens_in_ledger{state="expired"} 4
tokens_in_ledger{state="valid"} 7
`
	if err := testutil.GatherAndCompare(prometheus.DefaultGatherer, strings.NewReader(want), "tokens_in_ledger"); err != nil {
		t.Fatal(err)
	}
}

func TestLedgerStatsWorkerDefaultsInterval(t *testing.T) {
	logger := zerolog.New(io.Discard)
	w := NewLedgerStatsWorker(0, &countingLedger{}, &logger)
	if w.interval != time.Minute {
		t.Fatalf("interval = %v, want 1m", w.interval)
	}
}
