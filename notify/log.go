package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier records reminders in the log. It stands in when no broker is
// configured.
type LogNotifier struct{}

func (LogNotifier) NotifyDebtor(_ context.Context, msg ReminderMessage) error {
	zap.L().Info("Debt reminder",
		zap.String("debtor_id", msg.DebtorID),
		zap.String("total", msg.Total),
		zap.Int("creditors", len(msg.Debts)))
	return nil
}

func (LogNotifier) Close() error {
	return nil
}
