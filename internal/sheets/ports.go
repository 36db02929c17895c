// Package sheets defines the ports the sync worker writes through.
package sheets

import (
	"context"

	"budgetbot/internal/core"
)

// TransactionWriter appends one ledger transaction to an external
// sheet and returns a reference to the written row.
type TransactionWriter interface {
	Append(ctx context.Context, tx core.Transaction) (string, error)
}
