package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"budgetbot/internal/core"
	"budgetbot/internal/ledger"
)

// AccrualProcessor applies the automatic weekly allowance with
// whole-week catch-up across arbitrary downtime.
type AccrualProcessor struct {
	ledger *ledger.Ledger
}

func NewAccrualProcessor(l *ledger.Ledger) *AccrualProcessor {
	return &AccrualProcessor{ledger: l}
}

// ProcessDue compares now against the last accrual date. When at least
// 7 whole days have elapsed it applies a single lump transaction of
// floor(days/7) * weeklyAmount and advances the last-accrual date by
// exactly that many weeks, so any fractional-week remainder keeps
// counting toward the next check. Repeated checks within the same week
// accrue nothing further.
func (p *AccrualProcessor) ProcessDue(ctx context.Context, now time.Time) (decimal.Decimal, bool, error) {
	last := p.ledger.LastAccrual()
	days := core.DaysBetween(last, now)
	if days < 7 {
		return decimal.Zero, false, nil
	}

	weeks := days / 7
	amount := p.ledger.WeeklyAmount().Mul(decimal.NewFromInt(int64(weeks)))
	comment := fmt.Sprintf("Auto-allowance (%d wks)", weeks)
	advanced := core.Midnight(last).AddDate(0, 0, weeks*7)

	if _, err := p.ledger.ApplyAccrual(ctx, amount, comment, advanced); err != nil {
		return decimal.Zero, false, fmt.Errorf("apply accrual: %w", err)
	}

	slog.InfoContext(ctx, "Weekly allowance accrued",
		"weeks", weeks,
		"amount", amount.StringFixed(2),
		"last_accrual", advanced.Format(core.DateFormat))

	return amount, true, nil
}
