package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"budgetbot/internal/core"
)

// memRepo keeps the last saved snapshot and counts writes.
type memRepo struct {
	mu      sync.Mutex
	saved   core.LedgerState
	saves   int
	failing bool
}

func (r *memRepo) Load(ctx context.Context) (core.LedgerState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saved.Clone(), nil
}

func (r *memRepo) Save(ctx context.Context, state core.LedgerState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return errors.New("disk full")
	}
	r.saved = state.Clone()
	r.saves++
	return nil
}

type captureRecorder struct {
	mu  sync.Mutex
	txs []core.Transaction
}

func (c *captureRecorder) RecordTransaction(ctx context.Context, tx core.Transaction) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.txs = append(c.txs, tx)
	return nil
}

func newTestLedger(t *testing.T) (*Ledger, *memRepo) {
	t.Helper()
	repo := &memRepo{}
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return New(repo, core.DefaultState(now), nil), repo
}

func TestLedger_Apply(t *testing.T) {
	ctx := context.Background()

	t.Run("balance equals sum of applied amounts", func(t *testing.T) {
		l, _ := newTestLedger(t)
		amounts := []string{"10.50", "-5", "0.01", "100", "-42.42"}
		for _, a := range amounts {
			if _, err := l.Apply(ctx, decimal.RequireFromString(a), "t"); err != nil {
				t.Fatalf("Apply(%s) error = %v", a, err)
			}
		}
		want := decimal.RequireFromString("63.09")
		if got := l.Balance(); !got.Equal(want) {
			t.Errorf("Balance() = %v, want %v", got, want)
		}
	})

	t.Run("each apply performs exactly one durable write", func(t *testing.T) {
		l, repo := newTestLedger(t)
		for i := 0; i < 3; i++ {
			if _, err := l.Apply(ctx, decimal.NewFromInt(1), "t"); err != nil {
				t.Fatalf("Apply error = %v", err)
			}
		}
		if repo.saves != 3 {
			t.Errorf("saves = %d, want 3", repo.saves)
		}
	})

	t.Run("failed save rolls back memory", func(t *testing.T) {
		l, repo := newTestLedger(t)
		if _, err := l.Apply(ctx, decimal.NewFromInt(5), "t"); err != nil {
			t.Fatalf("Apply error = %v", err)
		}

		repo.failing = true
		if _, err := l.Apply(ctx, decimal.NewFromInt(100), "t"); err == nil {
			t.Fatal("Apply should fail when the repository fails")
		}

		if want := decimal.NewFromInt(5); !l.Balance().Equal(want) {
			t.Errorf("Balance() = %v after failed save, want %v", l.Balance(), want)
		}
		if got := len(l.History()); got != 1 {
			t.Errorf("history length = %d after failed save, want 1", got)
		}
	})

	t.Run("concurrent applies never lose an update", func(t *testing.T) {
		l, _ := newTestLedger(t)
		const workers = 8
		const perWorker = 25

		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < perWorker; i++ {
					if _, err := l.Apply(ctx, decimal.NewFromInt(1), "t"); err != nil {
						t.Errorf("Apply error = %v", err)
						return
					}
				}
			}()
		}
		wg.Wait()

		if want := decimal.NewFromInt(workers * perWorker); !l.Balance().Equal(want) {
			t.Errorf("Balance() = %v, want %v", l.Balance(), want)
		}
	})

	t.Run("recorder sees every persisted transaction", func(t *testing.T) {
		repo := &memRepo{}
		rec := &captureRecorder{}
		l := New(repo, core.DefaultState(time.Now()), rec)

		for i := 0; i < 4; i++ {
			if _, err := l.Apply(ctx, decimal.NewFromInt(2), fmt.Sprintf("tx-%d", i)); err != nil {
				t.Fatalf("Apply error = %v", err)
			}
		}
		if len(rec.txs) != 4 {
			t.Errorf("recorded transactions = %d, want 4", len(rec.txs))
		}
	})
}

func TestLedger_ApplyAccrual(t *testing.T) {
	ctx := context.Background()
	l, repo := newTestLedger(t)

	advanced := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	balance, err := l.ApplyAccrual(ctx, decimal.NewFromInt(10), "Auto-allowance (2 wks)", advanced)
	if err != nil {
		t.Fatalf("ApplyAccrual error = %v", err)
	}

	if want := decimal.NewFromInt(10); !balance.Equal(want) {
		t.Errorf("balance = %v, want %v", balance, want)
	}
	// Date advance and transaction land in the same snapshot.
	if want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC); !repo.saved.LastAccrual.Equal(want) {
		t.Errorf("persisted LastAccrual = %v, want %v", repo.saved.LastAccrual, want)
	}
	if len(repo.saved.History) != 1 {
		t.Fatalf("persisted history length = %d, want 1", len(repo.saved.History))
	}
	if got := repo.saved.History[0].Comment; got != "Auto-allowance (2 wks)" {
		t.Errorf("persisted comment = %q", got)
	}
}

func TestLedger_SetWeeklyAmount(t *testing.T) {
	ctx := context.Background()
	l, repo := newTestLedger(t)

	if err := l.SetWeeklyAmount(ctx, decimal.RequireFromString("7.50")); err != nil {
		t.Fatalf("SetWeeklyAmount error = %v", err)
	}

	want := decimal.RequireFromString("7.50")
	if !l.WeeklyAmount().Equal(want) {
		t.Errorf("WeeklyAmount() = %v, want %v", l.WeeklyAmount(), want)
	}
	if !repo.saved.WeeklyAmount.Equal(want) {
		t.Errorf("persisted WeeklyAmount = %v, want %v", repo.saved.WeeklyAmount, want)
	}

	t.Run("failed save keeps previous rate", func(t *testing.T) {
		repo.failing = true
		if err := l.SetWeeklyAmount(ctx, decimal.NewFromInt(99)); err == nil {
			t.Fatal("SetWeeklyAmount should fail when the repository fails")
		}
		if !l.WeeklyAmount().Equal(want) {
			t.Errorf("WeeklyAmount() = %v after failed save, want %v", l.WeeklyAmount(), want)
		}
	})
}

func TestLedger_HistoryReturnsCopy(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	if _, err := l.Apply(ctx, decimal.NewFromInt(1), "original"); err != nil {
		t.Fatalf("Apply error = %v", err)
	}

	history := l.History()
	history[0].Comment = "mutated"

	if got := l.History()[0].Comment; got != "original" {
		t.Errorf("internal history mutated through returned slice: %q", got)
	}
}
