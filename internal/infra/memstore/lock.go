package memstore

import (
	"context"
	"sync"
	"time"

	"scenario-quiz/internal/domain/ports/repository"

	"github.com/google/uuid"
)

var (
	_ repository.Locker      = (*Locker)(nil)
	_ repository.RateLimiter = (*RateLimiter)(nil)
)

type heldLock struct {
	token   string
	expires time.Time
}

// Locker is an in-process try-lock with expiry, mirroring SET NX PX.
type Locker struct {
	mu    sync.Mutex
	held  map[string]heldLock
	now   func() time.Time
	sweep sweeper
}

func NewLocker() *Locker {
	return &Locker{held: make(map[string]heldLock), now: time.Now}
}

func (l *Locker) TryLock(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if l.sweep.due(now) {
		for k, h := range l.held {
			if !now.Before(h.expires) {
				delete(l.held, k)
			}
		}
	}
	if h, ok := l.held[key]; ok && now.Before(h.expires) {
		return "", false, nil
	}
	token := uuid.NewString()
	l.held[key] = heldLock{token: token, expires: now.Add(ttl)}
	return token, true, nil
}

// Unlock releases key only if token still owns it.
func (l *Locker) Unlock(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if h, ok := l.held[key]; ok && h.token == token {
		delete(l.held, key)
	}
	return nil
}

type window struct {
	count   int
	expires time.Time
}

// RateLimiter is a fixed-window counter, the in-process twin of INCR+EXPIRE.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]window
	now     func() time.Time
	sweep   sweeper
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{windows: make(map[string]window), now: time.Now}
}

func (r *RateLimiter) Allow(_ context.Context, key string, limit int, win time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	if r.sweep.due(now) {
		for k, w := range r.windows {
			if !now.Before(w.expires) {
				delete(r.windows, k)
			}
		}
	}
	w, ok := r.windows[key]
	if !ok || !now.Before(w.expires) {
		w = window{expires: now.Add(win)}
	}
	w.count++
	r.windows[key] = w
	return w.count <= limit, nil
}

// Len counts tracked keys of l, expired ones included until they are swept.
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.held)
}

// Len counts tracked windows, expired ones included until they are swept.
func (r *RateLimiter) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.windows)
}
