//go:build !integration

package worker

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func silent() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

func TestPoolRunsSubmittedTasks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := NewPool(2, 8, silent())
	p.Start(ctx)
	defer p.Stop()

	var ran atomic.Int32
	done := make(chan struct{}, 5)
	for i := 0; i < 5; i++ {
		err := p.Submit(func(ctx context.Context) error {
			ran.Add(1)
			done <- struct{}{}
			return nil
		})
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	for i := 0; i < 5; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %d tasks", ran.Load())
		}
	}
}

func TestPoolRejectsWhenFull(t *testing.T) {
	p := NewPool(1, 1, silent())
	// not started: the single queue slot fills immediately
	if err := p.Submit(func(context.Context) error { return nil }); err != nil {
		t.Fatal(err)
	}
	if err := p.Submit(func(context.Context) error { return nil }); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if err := p.Submit(nil); err == nil {
		t.Fatal("expected error for nil task")
	}
}

func TestPoolSurvivesPanics(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := NewPool(1, 4, silent())
	p.Start(ctx)
	defer p.Stop()

	_ = p.Submit(func(context.Context) error { panic("boom") })
	ok := make(chan struct{})
	_ = p.Submit(func(context.Context) error { close(ok); return nil })
	select {
	case <-ok:
	case <-time.After(2 * time.Second):
		t.Fatal("worker died after panic")
	}
}
