package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// HistoryLimit caps how many transactions the ledger retains. The
	// balance is the durable accumulator; history is a truncated log.
	HistoryLimit = 10

	// DefaultComment labels transactions recorded without a reason.
	DefaultComment = "Manual Entry"

	DateFormat      = "2006-01-02"
	TimestampFormat = "2006-01-02 15:04"
)

type (
	// Transaction is one signed balance change. Immutable once created.
	Transaction struct {
		ID      uuid.UUID
		Date    time.Time
		Amount  decimal.Decimal
		Comment string
	}

	// LedgerState is the sole persisted entity: current balance, weekly
	// allowance rate, the date accrual has been applied up to, and the
	// most recent transactions.
	LedgerState struct {
		Balance      decimal.Decimal
		WeeklyAmount decimal.Decimal
		LastAccrual  time.Time
		History      []Transaction
	}
)

var ErrInvalidAmount = errors.New("invalid amount")

// NewTransaction creates a transaction dated at the given time. An
// empty comment falls back to DefaultComment.
func NewTransaction(at time.Time, amount decimal.Decimal, comment string) Transaction {
	if strings.TrimSpace(comment) == "" {
		comment = DefaultComment
	}
	return Transaction{
		ID:      uuid.New(),
		Date:    at,
		Amount:  amount,
		Comment: comment,
	}
}

// DefaultState is the ledger used when no prior snapshot exists: zero
// balance, weekly allowance of 1 unit, accrual anchored to today.
func DefaultState(now time.Time) LedgerState {
	return LedgerState{
		Balance:      decimal.Zero,
		WeeklyAmount: decimal.NewFromInt(1),
		LastAccrual:  Midnight(now),
	}
}

// Append records tx: the balance absorbs the amount and the history
// grows, evicting the oldest entry past HistoryLimit. Returns the new
// balance.
func (s *LedgerState) Append(tx Transaction) decimal.Decimal {
	s.Balance = s.Balance.Add(tx.Amount)
	s.History = append(s.History, tx)
	if len(s.History) > HistoryLimit {
		s.History = s.History[len(s.History)-HistoryLimit:]
	}
	return s.Balance
}

// Clone returns a copy whose history slice is independent of the
// original, for handing snapshots across goroutines.
func (s LedgerState) Clone() LedgerState {
	out := s
	out.History = make([]Transaction, len(s.History))
	copy(out.History, s.History)
	return out
}

// Midnight truncates t to its calendar date.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysBetween returns the number of whole calendar days from a to b,
// ignoring time of day. Negative when b precedes a.
func DaysBetween(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au).Hours() / 24)
}
