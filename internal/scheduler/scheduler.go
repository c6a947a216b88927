package scheduler

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"ETFBoard/internal/board"
	"ETFBoard/internal/model"
)

// Refresher is the part of the board the scheduler drives.
type Refresher interface {
	Refresh(ctx context.Context) error
	Summary() model.Summary
}

// Scheduler runs the periodic refresh job.
type Scheduler struct {
	Cron   *cron.Cron
	Board  Refresher
	Ctx    context.Context
	Logger *zap.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, b Refresher, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		Cron:   cron.New(cron.WithSeconds()),
		Board:  b,
		Ctx:    ctx,
		Logger: logger,
	}
}

// Register adds the refresh job. An empty expression registers nothing.
func (s *Scheduler) Register(refreshCron string) error {
	if refreshCron == "" {
		return nil
	}
	if _, err := s.Cron.AddFunc(refreshCron, s.RunNow); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Logger.Info("scheduler started", zap.Int("jobs", len(s.Cron.Entries())))
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Logger.Info("scheduler stopped")
}

// RunNow performs one refresh cycle. A cycle already in progress is skipped.
func (s *Scheduler) RunNow() {
	err := s.Board.Refresh(s.Ctx)
	switch {
	case errors.Is(err, board.ErrBusy):
		s.Logger.Info("refresh skipped, fetch in progress")
	case err != nil:
		s.Logger.Error("scheduled refresh failed", zap.Error(err))
	default:
		sum := s.Board.Summary()
		fields := []zap.Field{
			zap.Int("domestic", sum.DomesticCount),
			zap.Int("foreign", sum.ForeignCount),
		}
		if sum.TopByTradingValue != nil {
			fields = append(fields, zap.String("topByValue", sum.TopByTradingValue.Name))
		}
		if sum.TopMoverExcludingLeveraged != nil {
			fields = append(fields, zap.String("topMover", sum.TopMoverExcludingLeveraged.Name))
		}
		s.Logger.Info("scheduled refresh done", fields...)
	}
}
