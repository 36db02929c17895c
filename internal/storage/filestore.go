package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"budgetbot/internal/core"
)

// FileRepository persists the ledger as one JSON document. The on-disk
// layout matches the classic budget_state.json file: amounts are plain
// JSON numbers, dates are "YYYY-MM-DD" and history timestamps
// "YYYY-MM-DD HH:MM".
type FileRepository struct {
	path string
}

func NewFileRepository(path string) (*FileRepository, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create state directory: %w", err)
		}
	}
	return &FileRepository{path: path}, nil
}

type (
	stateDoc struct {
		Balance      json.Number `json:"balance"`
		WeeklyAmount json.Number `json:"weekly_amount"`
		LastAccrual  string      `json:"last_weekly_update"`
		History      []txDoc     `json:"history"`
	}

	txDoc struct {
		ID      string      `json:"id,omitempty"`
		Date    string      `json:"date"`
		Amount  json.Number `json:"amount"`
		Comment string      `json:"comment"`
	}
)

// Load reads the snapshot. A missing, unreadable or malformed file
// yields the default state rather than an error.
func (r *FileRepository) Load(ctx context.Context) (core.LedgerState, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.WarnContext(ctx, "Could not read ledger snapshot, starting fresh",
				"path", r.path,
				"error", err)
		}
		return core.DefaultState(time.Now()), nil
	}

	var doc stateDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		slog.WarnContext(ctx, "Discarding corrupt ledger snapshot",
			"path", r.path,
			"error", err)
		return core.DefaultState(time.Now()), nil
	}

	state, err := doc.toState()
	if err != nil {
		slog.WarnContext(ctx, "Discarding unusable ledger snapshot",
			"path", r.path,
			"error", err)
		return core.DefaultState(time.Now()), nil
	}
	return state, nil
}

// Save serializes the full state, replacing the previous snapshot. It
// writes to a temp file in the same directory and renames it over the
// target so a concurrent Load never observes a truncated document.
func (r *FileRepository) Save(ctx context.Context, state core.LedgerState) error {
	data, err := json.MarshalIndent(docFromState(state), "", "    ")
	if err != nil {
		return fmt.Errorf("marshal ledger state: %w", err)
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, ".ledger-*.json")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod snapshot: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

func docFromState(state core.LedgerState) stateDoc {
	doc := stateDoc{
		Balance:      json.Number(state.Balance.String()),
		WeeklyAmount: json.Number(state.WeeklyAmount.String()),
		LastAccrual:  state.LastAccrual.Format(core.DateFormat),
		History:      make([]txDoc, 0, len(state.History)),
	}
	for _, tx := range state.History {
		doc.History = append(doc.History, txDoc{
			ID:      tx.ID.String(),
			Date:    tx.Date.Format(core.TimestampFormat),
			Amount:  json.Number(tx.Amount.String()),
			Comment: tx.Comment,
		})
	}
	return doc
}

func (d stateDoc) toState() (core.LedgerState, error) {
	balance, err := decimal.NewFromString(d.Balance.String())
	if err != nil {
		return core.LedgerState{}, fmt.Errorf("parse balance %q: %w", d.Balance, err)
	}
	weekly, err := decimal.NewFromString(d.WeeklyAmount.String())
	if err != nil {
		return core.LedgerState{}, fmt.Errorf("parse weekly amount %q: %w", d.WeeklyAmount, err)
	}
	lastAccrual, err := time.ParseInLocation(core.DateFormat, d.LastAccrual, time.Local)
	if err != nil {
		return core.LedgerState{}, fmt.Errorf("parse last accrual date %q: %w", d.LastAccrual, err)
	}

	state := core.LedgerState{
		Balance:      balance,
		WeeklyAmount: weekly,
		LastAccrual:  lastAccrual,
	}
	for _, h := range d.History {
		date, err := time.ParseInLocation(core.TimestampFormat, h.Date, time.Local)
		if err != nil {
			return core.LedgerState{}, fmt.Errorf("parse transaction date %q: %w", h.Date, err)
		}
		amount, err := decimal.NewFromString(h.Amount.String())
		if err != nil {
			return core.LedgerState{}, fmt.Errorf("parse transaction amount %q: %w", h.Amount, err)
		}
		id, err := uuid.Parse(h.ID)
		if err != nil {
			// Snapshots written before IDs existed are still valid.
			id = uuid.New()
		}
		state.History = append(state.History, core.Transaction{
			ID:      id,
			Date:    date,
			Amount:  amount,
			Comment: h.Comment,
		})
	}
	return state, nil
}
