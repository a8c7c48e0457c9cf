// Package jobs runs the periodic work that sits beside the HTTP API.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ReminderSender is satisfied by services.ReminderService.
type ReminderSender interface {
	SendReminders(ctx context.Context) (int, error)
}

type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration
}

// NewScheduler registers the debt-reminder scan on spec, a standard
// five-field cron expression. Each run gets its own timeout.
func NewScheduler(spec string, reminders ReminderSender, timeout time.Duration) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		timeout: timeout,
	}
	if _, err := s.cron.AddFunc(spec, func() { s.runReminders(reminders) }); err != nil {
		return nil, fmt.Errorf("scheduling debt reminders %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) runReminders(reminders ReminderSender) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	sent, err := reminders.SendReminders(ctx)
	if err != nil {
		zap.L().Error("Debt reminder job failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return
	}
	zap.L().Info("Debt reminder job finished", zap.Int("sent", sent), zap.Duration("elapsed", time.Since(start)))
}

func (s *Scheduler) Start() {
	s.cron.Start()
	zap.L().Info("Cron jobs started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop prevents new runs and waits for a running job until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		zap.L().Warn("Cron jobs still running at shutdown")
	}
}
