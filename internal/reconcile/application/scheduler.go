package application

import (
	"context"
	"log"
	"time"
)

// Scheduler runs reconcile passes on a fixed interval.
type Scheduler struct {
	runner  *Runner
	tenants []string
	every   time.Duration
	logger  *log.Logger
}

// NewScheduler constructs a Scheduler.
func NewScheduler(runner *Runner, tenants []string, every time.Duration, logger *log.Logger) *Scheduler {
	return &Scheduler{
		runner:  runner,
		tenants: tenants,
		every:   every,
		logger:  logger,
	}
}

// Start begins the scheduler loop and blocks until the context ends.
func (s *Scheduler) Start(ctx context.Context) {
	if s == nil || s.runner == nil || len(s.tenants) == 0 || s.every <= 0 {
		return
	}
	ticker := time.NewTicker(s.every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	for _, tenantID := range s.tenants {
		if tenantID == "" {
			continue
		}
		if _, err := s.runner.Run(ctx, tenantID); err != nil && s.logger != nil {
			s.logger.Printf("reconcile schedule error: tenant=%s err=%v", tenantID, err)
		}
	}
}
