// Package bot wires the ledger, the command interpreter and the
// accrual processor to a message channel and runs the two loops that
// drive them: a short-interval inbound poll and a long-interval
// accrual check. The loops share one ledger and nothing else; a slow
// transport call in one never stalls the other.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"budgetbot/internal/core"
	"budgetbot/internal/ledger"
	"budgetbot/internal/services"
)

// Channel is the messaging transport: poll for inbound texts, send
// outbound texts. At-least-once inbound delivery; Send is best-effort.
type Channel interface {
	ReceiveNew(ctx context.Context) ([]string, error)
	Send(ctx context.Context, text string) error
}

type Bot struct {
	channel  Channel
	ledger   *ledger.Ledger
	commands *services.CommandService
	accrual  *services.AccrualProcessor

	pollInterval    time.Duration
	accrualInterval time.Duration
	now             func() time.Time
}

func New(channel Channel, l *ledger.Ledger, pollInterval, accrualInterval time.Duration) *Bot {
	return &Bot{
		channel:         channel,
		ledger:          l,
		commands:        services.NewCommandService(l),
		accrual:         services.NewAccrualProcessor(l),
		pollInterval:    pollInterval,
		accrualInterval: accrualInterval,
		now:             time.Now,
	}
}

// Run announces the bot and drives both loops until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.sendGreeting(ctx)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return b.pollLoop(ctx) })
	g.Go(func() error { return b.accrualLoop(ctx) })
	return g.Wait()
}

func (b *Bot) sendGreeting(ctx context.Context) {
	greeting := fmt.Sprintf("🚀 Budget Bot is online!\n💰 Balance: %s\n📅 Weekly: %s",
		core.FormatGBP(b.ledger.Balance()),
		core.FormatGBP(b.ledger.WeeklyAmount()))
	if err := b.channel.Send(ctx, greeting); err != nil {
		slog.WarnContext(ctx, "Failed to send startup notification", "error", err)
	}
}

func (b *Bot) pollLoop(ctx context.Context) error {
	ticker := time.NewTicker(b.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			b.pollOnce(ctx)
		}
	}
}

// pollOnce fetches one batch of inbound messages and dispatches each
// command. Transport failures are logged and the cycle ends; the next
// tick tries again.
func (b *Bot) pollOnce(ctx context.Context) {
	messages, err := b.channel.ReceiveNew(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Polling failed", "error", err)
		return
	}

	for _, text := range messages {
		// Only command-prefixed texts reach the interpreter.
		if !strings.HasPrefix(text, "/") {
			continue
		}
		reply := b.commands.Handle(ctx, text)
		if reply == "" {
			continue
		}
		if err := b.channel.Send(ctx, reply); err != nil {
			slog.ErrorContext(ctx, "Failed to send reply", "error", err)
		}
	}
}

func (b *Bot) accrualLoop(ctx context.Context) error {
	// Check immediately: downtime may span weeks and the catch-up
	// should not wait a full interval.
	b.accrueOnce(ctx)

	ticker := time.NewTicker(b.accrualInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			b.accrueOnce(ctx)
		}
	}
}

func (b *Bot) accrueOnce(ctx context.Context) {
	amount, applied, err := b.accrual.ProcessDue(ctx, b.now())
	if err != nil {
		slog.ErrorContext(ctx, "Accrual check failed", "error", err)
		return
	}
	if !applied {
		return
	}

	note := fmt.Sprintf("💸 Weekly allowance added: %s\n💰 Balance: %s",
		core.FormatGBP(amount),
		core.FormatGBP(b.ledger.Balance()))
	if err := b.channel.Send(ctx, note); err != nil {
		slog.WarnContext(ctx, "Failed to send accrual notification", "error", err)
	}
}
