package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"budgetbot/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository persists the ledger in an embedded SQLite database:
// one single-row ledger table plus the retained transactions. Save
// rewrites both inside one SQL transaction, so a crash mid-write never
// leaves balance and history out of step.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load reads the persisted ledger. An empty or unusable database
// yields the default state rather than an error.
func (r *SQLiteRepository) Load(ctx context.Context) (core.LedgerState, error) {
	var balanceStr, weeklyStr, lastStr string
	row := r.db.QueryRowContext(ctx,
		`SELECT balance, weekly_amount, last_accrual FROM ledger WHERE id = 1`)
	if err := row.Scan(&balanceStr, &weeklyStr, &lastStr); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.WarnContext(ctx, "Could not read ledger row, starting fresh", "error", err)
		}
		return core.DefaultState(time.Now()), nil
	}

	state, err := r.parseLedgerRow(ctx, balanceStr, weeklyStr, lastStr)
	if err != nil {
		slog.WarnContext(ctx, "Discarding unusable ledger row", "error", err)
		return core.DefaultState(time.Now()), nil
	}
	return state, nil
}

func (r *SQLiteRepository) parseLedgerRow(ctx context.Context, balanceStr, weeklyStr, lastStr string) (core.LedgerState, error) {
	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return core.LedgerState{}, fmt.Errorf("parse balance %q: %w", balanceStr, err)
	}
	weekly, err := decimal.NewFromString(weeklyStr)
	if err != nil {
		return core.LedgerState{}, fmt.Errorf("parse weekly amount %q: %w", weeklyStr, err)
	}
	lastAccrual, err := time.ParseInLocation(core.DateFormat, lastStr, time.Local)
	if err != nil {
		return core.LedgerState{}, fmt.Errorf("parse last accrual %q: %w", lastStr, err)
	}

	state := core.LedgerState{
		Balance:      balance,
		WeeklyAmount: weekly,
		LastAccrual:  lastAccrual,
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, created_at, amount, comment FROM transactions ORDER BY position`)
	if err != nil {
		return core.LedgerState{}, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var idStr, createdStr, amountStr, comment string
		if err := rows.Scan(&idStr, &createdStr, &amountStr, &comment); err != nil {
			return core.LedgerState{}, fmt.Errorf("scan transaction: %w", err)
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			id = uuid.New()
		}
		date, err := time.ParseInLocation(core.TimestampFormat, createdStr, time.Local)
		if err != nil {
			return core.LedgerState{}, fmt.Errorf("parse transaction date %q: %w", createdStr, err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return core.LedgerState{}, fmt.Errorf("parse transaction amount %q: %w", amountStr, err)
		}
		state.History = append(state.History, core.Transaction{
			ID:      id,
			Date:    date,
			Amount:  amount,
			Comment: comment,
		})
	}
	if err := rows.Err(); err != nil {
		return core.LedgerState{}, fmt.Errorf("iterate transactions: %w", err)
	}
	return state, nil
}

// Save replaces the persisted snapshot with state, atomically.
func (r *SQLiteRepository) Save(ctx context.Context, state core.LedgerState) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO ledger (id, balance, weekly_amount, last_accrual)
		 VALUES (1, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   balance = excluded.balance,
		   weekly_amount = excluded.weekly_amount,
		   last_accrual = excluded.last_accrual`,
		state.Balance.String(),
		state.WeeklyAmount.String(),
		state.LastAccrual.Format(core.DateFormat),
	)
	if err != nil {
		return fmt.Errorf("upsert ledger row: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	for i, t := range state.History {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (position, id, created_at, amount, comment)
			 VALUES (?, ?, ?, ?, ?)`,
			i,
			t.ID.String(),
			t.Date.Format(core.TimestampFormat),
			t.Amount.String(),
			t.Comment,
		)
		if err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}
