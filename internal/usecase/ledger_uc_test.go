//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"

	"scenario-quiz/internal/domain"
	"scenario-quiz/internal/domain/model"
	"scenario-quiz/internal/usecase"
)

func newLedger(t *testing.T, store *MockLedgerStore, opts ...usecase.LedgerOption) usecase.LedgerUseCase {
	t.Helper()
	l, err := usecase.NewLedgerUseCase(context.Background(), store, newTestLogger(), opts...)
	if err != nil {
		t.Fatalf("expected ledger to load, got %v", err)
	}
	return l
}

// fixedIDs hands out the given ids in order.
func fixedIDs(ids ...string) usecase.LedgerOption {
	i := 0
	return usecase.WithTokenIDGenerator(func() (string, error) {
		id := ids[i%len(ids)]
		i++
		return id, nil
	})
}

func TestLedgerUseCase_Issue(t *testing.T) {
	ctx := context.Background()

	t.Run("should issue an unused token that appears in list and storage", func(t *testing.T) {
		store := NewMockLedgerStore()
		l := newLedger(t, store)

		tok, err := l.Issue(ctx, 3)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if tok.Used != 0 || tok.Limit != 3 {
			t.Errorf("unexpected token counters: %+v", tok)
		}
		list := l.List(ctx)
		if len(list) != 1 || list[0].ID != tok.ID {
			t.Fatalf("expected issued token in list, got %+v", list)
		}
		if stored := store.Stored(); len(stored) != 1 || stored[0].ID != tok.ID {
			t.Errorf("expected ledger to be persisted, got %+v", stored)
		}
	})

	t.Run("should reject non-positive limits without persisting", func(t *testing.T) {
		store := NewMockLedgerStore()
		l := newLedger(t, store)
		if _, err := l.Issue(ctx, 0); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
		if store.SaveCalls != 0 {
			t.Errorf("expected no save, got %d", store.SaveCalls)
		}
	})

	t.Run("should regenerate on id collision", func(t *testing.T) {
		l := newLedger(t, NewMockLedgerStore(), fixedIDs("11111AA11111", "11111AA11111", "22222BB22222"))
		first, _ := l.Issue(ctx, 1)
		second, err := l.Issue(ctx, 1)
		if err != nil {
			t.Fatalf("expected collision to be absorbed, got %v", err)
		}
		if first.ID == second.ID || second.ID != "22222BB22222" {
			t.Errorf("expected a fresh id, got %q then %q", first.ID, second.ID)
		}
	})

	t.Run("should give up after bounded attempts", func(t *testing.T) {
		l := newLedger(t, NewMockLedgerStore(), fixedIDs("11111AA11111"))
		if _, err := l.Issue(ctx, 1); err != nil {
			t.Fatal(err)
		}
		if _, err := l.Issue(ctx, 1); !errors.Is(err, domain.ErrTokenIDExhausted) {
			t.Fatalf("expected ErrTokenIDExhausted, got %v", err)
		}
	})

	t.Run("should roll back when persistence fails", func(t *testing.T) {
		store := NewMockLedgerStore()
		l := newLedger(t, store)
		store.SaveErr = errors.New("disk full")
		if _, err := l.Issue(ctx, 2); err == nil {
			t.Fatal("expected error")
		}
		if n := len(l.List(ctx)); n != 0 {
			t.Errorf("expected empty ledger after failed issue, got %d tokens", n)
		}
	})
}

func TestLedgerUseCase_Validate(t *testing.T) {
	ctx := context.Background()
	store := NewMockLedgerStore(
		&model.Token{ID: "12345A6789B0", Limit: 2, Used: 1},
		&model.Token{ID: "98765Z4321Y0", Limit: 1, Used: 1},
		&model.Token{ID: "55555Q5555R5", Limit: 1, Used: 3},
	)
	l := newLedger(t, store)

	tests := []struct {
		id   string
		want model.TokenStatus
	}{
		{"12345A6789B0", model.TokenStatusValid},
		{"98765Z4321Y0", model.TokenStatusExpired},
		{"55555Q5555R5", model.TokenStatusExpired},
		{"00000X0000Y0", model.TokenStatusInvalid},
		{"", model.TokenStatusInvalid},
	}
	for _, tc := range tests {
		if got := l.Validate(ctx, tc.id); got != tc.want {
			t.Errorf("Validate(%q) = %s, want %s", tc.id, got, tc.want)
		}
	}
	if store.SaveCalls != 0 {
		t.Errorf("validate must not persist, got %d saves", store.SaveCalls)
	}
}

func TestLedgerUseCase_RecordConsumption(t *testing.T) {
	ctx := context.Background()

	t.Run("should drive a token to expired after limit uses", func(t *testing.T) {
		store := NewMockLedgerStore(&model.Token{ID: "12345A6789B0", Limit: 3, Used: 1})
		l := newLedger(t, store)

		for i := 0; i < 2; i++ {
			if l.Validate(ctx, "12345A6789B0") != model.TokenStatusValid {
				t.Fatalf("expected valid before use %d", i+2)
			}
			if err := l.RecordConsumption(ctx, "12345A6789B0"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		}
		if got := l.Validate(ctx, "12345A6789B0"); got != model.TokenStatusExpired {
			t.Fatalf("expected expired, got %s", got)
		}
		if stored := store.Stored(); stored[0].Used != 3 {
			t.Errorf("expected used=3 persisted, got %d", stored[0].Used)
		}
	})

	t.Run("should fail for unknown ids", func(t *testing.T) {
		l := newLedger(t, NewMockLedgerStore())
		if err := l.RecordConsumption(ctx, "nope"); !errors.Is(err, domain.ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("should restore the counter when persistence fails", func(t *testing.T) {
		store := NewMockLedgerStore(&model.Token{ID: "12345A6789B0", Limit: 3})
		l := newLedger(t, store)
		store.SaveErr = errors.New("unavailable")
		if err := l.RecordConsumption(ctx, "12345A6789B0"); err == nil {
			t.Fatal("expected error")
		}
		tok, _ := l.Get(ctx, "12345A6789B0")
		if tok.Used != 0 {
			t.Errorf("expected used to stay 0, got %d", tok.Used)
		}
	})
}

// Issue with limit 1, validate, consume, validate again: the second
// validate reports expired and does not touch the counter.
func TestLedgerUseCase_SingleUseScenario(t *testing.T) {
	ctx := context.Background()
	store := NewMockLedgerStore()
	l := newLedger(t, store)

	tok, err := l.Issue(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if l.Validate(ctx, tok.ID) != model.TokenStatusValid {
		t.Fatal("expected fresh token to be valid")
	}
	if err := l.RecordConsumption(ctx, tok.ID); err != nil {
		t.Fatal(err)
	}
	saves := store.SaveCalls
	if l.Validate(ctx, tok.ID) != model.TokenStatusExpired {
		t.Fatal("expected token to be expired after its single use")
	}
	got, _ := l.Get(ctx, tok.ID)
	if got.Used != 1 || store.SaveCalls != saves {
		t.Errorf("second validate changed the ledger: used=%d saves=%d->%d", got.Used, saves, store.SaveCalls)
	}
}

func TestLedgerUseCase_ListOrderAndIsolation(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t, NewMockLedgerStore(), fixedIDs("11111AA11111", "22222BB22222", "33333CC33333"))
	for i := 0; i < 3; i++ {
		if _, err := l.Issue(ctx, i+1); err != nil {
			t.Fatal(err)
		}
	}

	list := l.List(ctx)
	want := []string{"33333CC33333", "22222BB22222", "11111AA11111"}
	for i, id := range want {
		if list[i].ID != id {
			t.Errorf("list[%d] = %s, want %s", i, list[i].ID, id)
		}
	}

	list[0].Used = 99
	if tok, _ := l.Get(ctx, "33333CC33333"); tok.Used != 0 {
		t.Error("mutating the list snapshot leaked into the ledger")
	}

	valid, expired := l.Counts(ctx)
	if valid != 3 || expired != 0 {
		t.Errorf("Counts = %d/%d, want 3/0", valid, expired)
	}
}

func TestLedgerUseCase_LoadsOnce(t *testing.T) {
	ctx := context.Background()

	t.Run("should restore tokens in stored order", func(t *testing.T) {
		store := NewMockLedgerStore(
			&model.Token{ID: "11111AA11111", Limit: 1},
			&model.Token{ID: "22222BB22222", Limit: 2, Used: 1},
		)
		l := newLedger(t, store)
		list := l.List(ctx)
		if len(list) != 2 || list[0].ID != "22222BB22222" || list[1].Used != 0 {
			t.Fatalf("unexpected restored ledger: %+v", list)
		}
	})

	t.Run("should surface load errors", func(t *testing.T) {
		store := NewMockLedgerStore()
		store.LoadErr = errors.New("connection refused")
		if _, err := usecase.NewLedgerUseCase(ctx, store, newTestLogger()); err == nil {
			t.Fatal("expected load error")
		}
	})
}
