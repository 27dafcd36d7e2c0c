// Package scheduler runs the periodic price refresh on a cron schedule.
package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"

	"portfolyo/internal/logger"
)

// Job is the unit of scheduled work. It must tolerate being invoked while a
// previous run is still in flight (the refresh service rejects overlap).
type Job func(ctx context.Context) error

// Scheduler wraps a cron entry around a job.
type Scheduler struct {
	cron    *cron.Cron
	entryID cron.EntryID
}

// New registers job on the given cron spec and starts the schedule.
func New(cronSpec string, job Job) (*Scheduler, error) {
	c := cron.New()

	id, err := c.AddFunc(cronSpec, func() {
		if err := job(context.Background()); err != nil {
			logger.Get().Warnw("scheduled job failed", "error", err)
		}
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	logger.Get().Infow("scheduler started", "cron", cronSpec)
	return &Scheduler{cron: c, entryID: id}, nil
}

// Stop cancels the schedule and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.cron.Remove(s.entryID)
	ctx := s.cron.Stop()
	<-ctx.Done()
}
