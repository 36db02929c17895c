package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"budgetbot/internal/core"
)

func newSQLiteRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepository_LoadEmptyDatabase(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)

	state, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	if !state.Balance.IsZero() {
		t.Errorf("Balance = %v, want 0", state.Balance)
	}
	if want := decimal.NewFromInt(1); !state.WeeklyAmount.Equal(want) {
		t.Errorf("WeeklyAmount = %v, want 1", state.WeeklyAmount)
	}
	if len(state.History) != 0 {
		t.Errorf("History length = %d, want 0", len(state.History))
	}
}

func TestSQLiteRepository_SaveLoadRoundtrip(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)

	now := time.Date(2024, 3, 1, 14, 30, 0, 0, time.Local)
	state := core.LedgerState{
		Balance:      decimal.RequireFromString("5.50"),
		WeeklyAmount: decimal.RequireFromString("7.50"),
		LastAccrual:  time.Date(2024, 2, 26, 0, 0, 0, 0, time.Local),
	}
	state.History = append(state.History,
		core.NewTransaction(now, decimal.RequireFromString("10.50"), "birthday"),
		core.NewTransaction(now.Add(time.Minute), decimal.NewFromInt(-5), "coffee"),
	)

	if err := repo.Save(ctx, state); err != nil {
		t.Fatalf("Save error = %v", err)
	}

	loaded, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}

	if !loaded.Balance.Equal(state.Balance) {
		t.Errorf("Balance = %v, want %v", loaded.Balance, state.Balance)
	}
	if !loaded.WeeklyAmount.Equal(state.WeeklyAmount) {
		t.Errorf("WeeklyAmount = %v, want %v", loaded.WeeklyAmount, state.WeeklyAmount)
	}
	if !loaded.LastAccrual.Equal(state.LastAccrual) {
		t.Errorf("LastAccrual = %v, want %v", loaded.LastAccrual, state.LastAccrual)
	}
	if len(loaded.History) != 2 {
		t.Fatalf("History length = %d, want 2", len(loaded.History))
	}
	// Insertion order survives the roundtrip.
	if loaded.History[0].Comment != "birthday" || loaded.History[1].Comment != "coffee" {
		t.Errorf("history order = [%q, %q], want [birthday, coffee]",
			loaded.History[0].Comment, loaded.History[1].Comment)
	}
	if loaded.History[0].ID != state.History[0].ID {
		t.Errorf("History[0].ID = %v, want %v", loaded.History[0].ID, state.History[0].ID)
	}
}

func TestSQLiteRepository_SaveReplacesSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)

	now := time.Date(2024, 3, 1, 14, 30, 0, 0, time.Local)
	state := core.DefaultState(now)
	state.Append(core.NewTransaction(now, decimal.NewFromInt(1), "first"))
	if err := repo.Save(ctx, state); err != nil {
		t.Fatalf("Save error = %v", err)
	}

	state.Append(core.NewTransaction(now.Add(time.Minute), decimal.NewFromInt(2), "second"))
	if err := repo.Save(ctx, state); err != nil {
		t.Fatalf("second Save error = %v", err)
	}

	loaded, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load error = %v", err)
	}
	if len(loaded.History) != 2 {
		t.Fatalf("History length = %d, want 2 (no duplicated rows)", len(loaded.History))
	}
	if want := decimal.NewFromInt(3); !loaded.Balance.Equal(want) {
		t.Errorf("Balance = %v, want %v", loaded.Balance, want)
	}
}
