// Package jobs runs periodic housekeeping.  Nothing in request handling
// depends on it: expired sessions are already rejected at validation
// time, the purge only keeps the sessions table small.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// SessionPurger deletes sessions expired for longer than retention.
type SessionPurger interface {
	PurgeExpired(ctx context.Context, retention time.Duration) (int64, error)
}

type Scheduler struct {
	cron      *cron.Cron
	sessions  SessionPurger
	schedule  string
	retention time.Duration
	log       zerolog.Logger
}

// NewScheduler returns a scheduler running the purge on schedule, a
// six-field cron expression (with seconds).  An empty schedule disables
// the job.
func NewScheduler(sessions SessionPurger, schedule string, retention time.Duration, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithSeconds()),
		sessions:  sessions,
		schedule:  schedule,
		retention: retention,
		log:       log.With().Str("component", "scheduler").Logger(),
	}
}

func (s *Scheduler) Start() error {
	if s.schedule == "" || s.sessions == nil {
		return nil
	}
	if _, err := s.cron.AddFunc(s.schedule, s.purgeSessions); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the scheduler and waits up to five seconds for a running
// purge to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) purgeSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	n, err := s.sessions.PurgeExpired(ctx, s.retention)
	if err != nil {
		s.log.Error().Err(err).Msg("purge expired sessions failed")
		return
	}
	if n > 0 {
		s.log.Info().Int64("deleted", n).Msg("expired sessions purged")
	}
}
