package services

import (
	"context"
	"time"

	apperrors "splitledger-backend/errors"
	"splitledger-backend/ledger"
	"splitledger-backend/metrics"
	"splitledger-backend/models"
	"splitledger-backend/notify"
	"splitledger-backend/repository"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type ReminderService interface {
	// SendReminders publishes one reminder per user with outstanding direct
	// debts and returns how many were published.
	SendReminders(ctx context.Context) (int, error)
}

type reminderService struct {
	userRepo       repository.UserRepository
	expenseRepo    repository.ExpenseRepository
	settlementRepo repository.SettlementRepository
	notifier       notify.Notifier
	now            func() time.Time
}

func NewReminderService(userRepo repository.UserRepository, expenseRepo repository.ExpenseRepository, settlementRepo repository.SettlementRepository, notifier notify.Notifier) ReminderService {
	return &reminderService{
		userRepo:       userRepo,
		expenseRepo:    expenseRepo,
		settlementRepo: settlementRepo,
		notifier:       notifier,
		now:            time.Now,
	}
}

func (s *reminderService) SendReminders(ctx context.Context) (int, error) {
	start := time.Now()
	digests, err := s.outstanding(ctx)
	metrics.ObserveLedger(metrics.KindReminders, start, err)
	if err != nil {
		return 0, err
	}
	if len(digests) == 0 {
		zap.L().Info("No outstanding debts to remind about")
		return 0, nil
	}

	ids := make([]string, 0, len(digests))
	for _, d := range digests {
		ids = append(ids, d.DebtorID)
		for _, debt := range d.Debts {
			ids = append(ids, debt.CreditorID)
		}
	}
	users, err := s.userRepo.GetByIDs(ctx, uniqueIDs(ids...))
	if err != nil {
		zap.L().Error("Failed to resolve reminder recipients", zap.Error(err))
		return 0, apperrors.DatabaseError("getting users", err)
	}

	sent := 0
	for _, d := range digests {
		msg := s.message(d, users)
		if err := s.notifier.NotifyDebtor(ctx, msg); err != nil {
			metrics.RemindersPublished.WithLabelValues("error").Inc()
			zap.L().Error("Failed to publish debt reminder", zap.String("debtor_id", d.DebtorID), zap.Error(err))
			continue
		}
		metrics.RemindersPublished.WithLabelValues("ok").Inc()
		sent++
	}

	zap.L().Info("Debt reminders published", zap.Int("sent", sent), zap.Int("debtors", len(digests)))
	return sent, nil
}

func (s *reminderService) outstanding(ctx context.Context) ([]ledger.DebtorDigest, error) {
	var (
		userIDs     []string
		expenses    []models.Expense
		settlements []models.Settlement
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if userIDs, err = s.userRepo.ListWithDirectActivity(gctx); err != nil {
			return apperrors.DatabaseError("listing active users", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if expenses, err = s.expenseRepo.GetDirectWithUnpaidSplits(gctx); err != nil {
			return apperrors.DatabaseError("getting unpaid expenses", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if settlements, err = s.settlementRepo.GetAllDirect(gctx); err != nil {
			return apperrors.DatabaseError("getting direct settlements", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		zap.L().Error("Failed to load reminder data", zap.Error(err))
		return nil, err
	}

	return ledger.OutstandingDebts(userIDs, models.ExpensesToLedger(expenses), models.SettlementsToLedger(settlements)), nil
}

func (s *reminderService) message(d ledger.DebtorDigest, users map[string]models.User) notify.ReminderMessage {
	debtor := users[d.DebtorID]
	msg := notify.ReminderMessage{
		DebtorID:    d.DebtorID,
		DebtorName:  debtor.Name,
		DebtorEmail: debtor.Email,
		Total:       d.Total.StringFixed(2),
		Debts:       make([]notify.ReminderDebt, len(d.Debts)),
		GeneratedAt: s.now().UTC(),
	}
	for i, debt := range d.Debts {
		msg.Debts[i] = notify.ReminderDebt{
			CreditorID:   debt.CreditorID,
			CreditorName: users[debt.CreditorID].Name,
			Amount:       debt.Amount.StringFixed(2),
			Since:        debt.Since,
		}
	}
	return msg
}
