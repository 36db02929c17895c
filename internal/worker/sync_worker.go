package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"budgetbot/internal/amqp"
	"budgetbot/internal/core"
	"budgetbot/internal/sheets"
)

// SyncWorker mirrors applied ledger transactions into an external
// sheet. Messages carry the full transaction, so the worker runs
// without access to the bot's state store.
type SyncWorker struct {
	writer sheets.TransactionWriter
}

func NewSyncWorker(writer sheets.TransactionWriter) *SyncWorker {
	return &SyncWorker{writer: writer}
}

// HandleSyncMessage processes one transaction sync message. A
// returned error requeues the message.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionMessage) error {
	tx, err := transactionFromMessage(msg)
	if err != nil {
		// Unusable payload; requeuing it would loop forever.
		slog.ErrorContext(ctx, "Dropping malformed sync message",
			"id", msg.ID,
			"error", err)
		return nil
	}

	ref, err := w.writer.Append(ctx, tx)
	if err != nil {
		return fmt.Errorf("append transaction to sheet: %w", err)
	}

	slog.InfoContext(ctx, "Synced transaction",
		"id", tx.ID,
		"amount", tx.Amount.StringFixed(2),
		"ref", ref)

	return nil
}

func transactionFromMessage(msg *amqp.TransactionMessage) (core.Transaction, error) {
	id, err := uuid.Parse(msg.ID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction id %q: %w", msg.ID, err)
	}
	amount, err := decimal.NewFromString(msg.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse amount %q: %w", msg.Amount, err)
	}
	date := msg.Date
	if date.IsZero() {
		date = time.Now()
	}
	return core.Transaction{
		ID:      id,
		Date:    date,
		Amount:  amount,
		Comment: msg.Comment,
	}, nil
}
