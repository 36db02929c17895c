package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"budgetbot/internal/core"
	"budgetbot/internal/ledger"
)

const usageText = "📖 *Budget Bot Usage*\n" +
	"• /balance - Show current balance\n" +
	"• /add [amount] [reason] - Add funds (e.g., `/add 10.50 birthday`)\n" +
	"• /sub [amount] [reason] - Withdraw (e.g., `/sub 5 coffee`)\n" +
	"• /history - Show last 10 transactions\n" +
	"• /set [amount] - Change weekly allowance\n" +
	"• /usage - Show this menu"

const invalidAmountReply = "⚠️ Invalid amount. Use: /add 5.00 chocolate"

// CommandService maps one inbound chat line to an optional reply plus
// an optional ledger mutation.
type CommandService struct {
	ledger *ledger.Ledger
}

func NewCommandService(l *ledger.Ledger) *CommandService {
	return &CommandService{ledger: l}
}

// Handle interprets text and returns the reply, or "" when the line
// warrants no response. Command keywords are case-insensitive; a
// command missing its required arguments is treated like unrecognized
// input and stays silent. No failure escapes to the caller: anything
// unexpected becomes a generic error reply.
func (s *CommandService) Handle(ctx context.Context, text string) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "Command handling panicked",
				"text", text,
				"error", r)
			reply = fmt.Sprintf("⚠️ Error: %v", r)
		}
	}()

	parts := strings.Fields(text)
	if len(parts) == 0 {
		return ""
	}

	switch cmd := strings.ToLower(parts[0]); cmd {
	case "/usage", "/help":
		return usageText

	case "/balance":
		return fmt.Sprintf("💰 Balance: %s", core.FormatGBP(s.ledger.Balance()))

	case "/history":
		history := s.ledger.History()
		if len(history) == 0 {
			return "📜 No transactions yet."
		}
		lines := make([]string, 0, len(history))
		for _, tx := range history {
			lines = append(lines, fmt.Sprintf("• %s: %s (%s)",
				tx.Date.Format(core.TimestampFormat),
				core.FormatGBP(tx.Amount),
				tx.Comment))
		}
		return "📜 Recent History:\n" + strings.Join(lines, "\n")

	case "/add", "/sub", "/withdraw":
		if len(parts) < 2 {
			return ""
		}
		amount, err := core.ParseAmount(parts[1])
		if err != nil {
			return invalidAmountReply
		}
		// Everything after the amount becomes the comment.
		comment := strings.Join(parts[2:], " ")

		action := "Added"
		if cmd != "/add" {
			amount = amount.Neg()
			action = "Subtracted"
		}

		balance, err := s.ledger.Apply(ctx, amount, comment)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to apply transaction",
				"command", cmd,
				"error", err)
			return fmt.Sprintf("⚠️ Error: %v", err)
		}
		return fmt.Sprintf("✅ %s %s. New Balance: %s",
			action, core.FormatGBP(amount.Abs()), core.FormatGBP(balance))

	case "/set":
		if len(parts) < 2 {
			return ""
		}
		amount, err := core.ParseAmount(parts[1])
		if err != nil {
			return invalidAmountReply
		}
		if err := s.ledger.SetWeeklyAmount(ctx, amount); err != nil {
			slog.ErrorContext(ctx, "Failed to set weekly amount", "error", err)
			return fmt.Sprintf("⚠️ Error: %v", err)
		}
		return fmt.Sprintf("⚙️ Weekly amount set to %s", core.FormatGBP(amount))
	}

	return ""
}
