package amqp

import (
	"encoding/json"
	"time"

	"budgetbot/internal/core"
)

// TransactionMessage carries one applied ledger transaction to the
// sync worker. It holds the full payload so the worker needs no access
// to the bot's state store.
type TransactionMessage struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	Amount    string    `json:"amount"`
	Comment   string    `json:"comment"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTransactionMessage builds the sync payload for tx. The amount
// travels as its exact decimal string.
func NewTransactionMessage(tx core.Transaction) *TransactionMessage {
	return &TransactionMessage{
		ID:        tx.ID.String(),
		Date:      tx.Date,
		Amount:    tx.Amount.String(),
		Comment:   tx.Comment,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *TransactionMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionMessageFromJSON creates a message from JSON bytes.
func TransactionMessageFromJSON(data []byte) (*TransactionMessage, error) {
	var msg TransactionMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
