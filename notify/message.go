// Package notify hands debt reminders to whatever delivers them. Delivery
// itself (email, push) happens outside this service.
package notify

import (
	"context"
	"encoding/json"
	"time"
)

// ReminderMessage tells one debtor what they still owe. Amounts are decimal
// strings with two places.
type ReminderMessage struct {
	DebtorID    string         `json:"debtor_id"`
	DebtorName  string         `json:"debtor_name"`
	DebtorEmail string         `json:"debtor_email"`
	Total       string         `json:"total"`
	Debts       []ReminderDebt `json:"debts"`
	GeneratedAt time.Time      `json:"generated_at"`
}

type ReminderDebt struct {
	CreditorID   string    `json:"creditor_id"`
	CreditorName string    `json:"creditor_name"`
	Amount       string    `json:"amount"`
	Since        time.Time `json:"since"`
}

func (m ReminderMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ReminderMessageFromJSON(body []byte) (*ReminderMessage, error) {
	var m ReminderMessage
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

type Notifier interface {
	NotifyDebtor(ctx context.Context, msg ReminderMessage) error
	Close() error
}
