// Package ledger owns the single mutable LedgerState shared by the
// poll loop and the accrual loop. Every mutation runs under one mutex
// and ends with exactly one durable write, so concurrent callers never
// interleave a read-modify-persist sequence into a lost update.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"budgetbot/internal/core"
)

// Repository persists full ledger snapshots.
type Repository interface {
	// Load returns the last persisted state. Missing or unreadable
	// snapshots yield defaults, never an error the caller must handle.
	Load(ctx context.Context) (core.LedgerState, error)
	Save(ctx context.Context, state core.LedgerState) error
}

// Recorder receives each transaction after it has been persisted.
// Used to feed the sheets sync pipeline; delivery is best-effort.
type Recorder interface {
	RecordTransaction(ctx context.Context, tx core.Transaction) error
}

// Ledger guards the shared state and serializes all mutation.
type Ledger struct {
	mu       sync.Mutex
	state    core.LedgerState
	repo     Repository
	recorder Recorder
	now      func() time.Time
}

// New wraps a loaded state. recorder may be nil when no sync pipeline
// is configured.
func New(repo Repository, state core.LedgerState, recorder Recorder) *Ledger {
	return &Ledger{
		state:    state,
		repo:     repo,
		recorder: recorder,
		now:      time.Now,
	}
}

// Apply records a signed transaction, persists the state and returns
// the updated balance. On a failed write the in-memory state rolls
// back so memory and disk never diverge.
func (l *Ledger) Apply(ctx context.Context, amount decimal.Decimal, comment string) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx := core.NewTransaction(l.now(), amount, comment)
	prev := l.state.Clone()
	balance := l.state.Append(tx)
	if err := l.repo.Save(ctx, l.state); err != nil {
		l.state = prev
		return decimal.Zero, fmt.Errorf("save ledger: %w", err)
	}

	slog.InfoContext(ctx, "Transaction applied",
		"id", tx.ID,
		"amount", tx.Amount.StringFixed(2),
		"comment", tx.Comment,
		"balance", balance.StringFixed(2))

	l.record(ctx, tx)
	return balance, nil
}

// ApplyAccrual records the allowance transaction and advances the
// last-accrual date as one persisted step.
func (l *Ledger) ApplyAccrual(ctx context.Context, amount decimal.Decimal, comment string, lastAccrual time.Time) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx := core.NewTransaction(l.now(), amount, comment)
	prev := l.state.Clone()
	balance := l.state.Append(tx)
	l.state.LastAccrual = core.Midnight(lastAccrual)
	if err := l.repo.Save(ctx, l.state); err != nil {
		l.state = prev
		return decimal.Zero, fmt.Errorf("save ledger: %w", err)
	}

	slog.InfoContext(ctx, "Accrual applied",
		"amount", tx.Amount.StringFixed(2),
		"last_accrual", l.state.LastAccrual.Format(core.DateFormat),
		"balance", balance.StringFixed(2))

	l.record(ctx, tx)
	return balance, nil
}

// SetWeeklyAmount updates the per-week accrual rate and persists.
func (l *Ledger) SetWeeklyAmount(ctx context.Context, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	prev := l.state.WeeklyAmount
	l.state.WeeklyAmount = amount
	if err := l.repo.Save(ctx, l.state); err != nil {
		l.state.WeeklyAmount = prev
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}

// Balance returns the current balance.
func (l *Ledger) Balance() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Balance
}

// WeeklyAmount returns the per-week accrual rate.
func (l *Ledger) WeeklyAmount() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.WeeklyAmount
}

// LastAccrual returns the date accrual has been applied up to.
func (l *Ledger) LastAccrual() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.LastAccrual
}

// History returns a copy of the retained transactions, oldest first.
func (l *Ledger) History() []core.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]core.Transaction, len(l.state.History))
	copy(out, l.state.History)
	return out
}

func (l *Ledger) record(ctx context.Context, tx core.Transaction) {
	if l.recorder == nil {
		return
	}
	if err := l.recorder.RecordTransaction(ctx, tx); err != nil {
		slog.WarnContext(ctx, "Failed to record transaction for sync",
			"id", tx.ID,
			"error", err)
	}
}
