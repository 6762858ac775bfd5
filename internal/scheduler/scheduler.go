package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	SessionSweepSpec      = "*/10 * * * *"
	Timezone              = "UTC"
	TimezoneOffsetSeconds = 0
)

// Sweeper drops idle per-chat state: sessions or rate limiters.
type Sweeper interface {
	Sweep(now time.Time) int
	Len() int
}

type Scheduler struct {
	ctx      context.Context
	cron     *cron.Cron
	sessions Sweeper
	limiters Sweeper
	log      *slog.Logger
}

func New(ctx context.Context, sessions Sweeper, limiters Sweeper, log *slog.Logger) *Scheduler {
	c := cron.New(cron.WithLocation(time.FixedZone(Timezone, TimezoneOffsetSeconds)))

	return &Scheduler{
		ctx:      ctx,
		cron:     c,
		sessions: sessions,
		limiters: limiters,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(SessionSweepSpec, s.sweepIdle); err != nil {
		return err
	}

	s.cron.Start()

	return nil
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sweepIdle() {
	if s.ctx.Err() != nil {
		s.log.InfoContext(s.ctx, "Scheduler context is done",
			"error", s.ctx.Err())
		return
	}

	now := time.Now()
	s.sweep(now, s.sessions, "Idle sessions are swept")
	s.sweep(now, s.limiters, "Idle rate limiters are swept")
}

func (s *Scheduler) sweep(now time.Time, sweeper Sweeper, msg string) {
	removed := sweeper.Sweep(now)
	if removed == 0 {
		return
	}

	s.log.InfoContext(s.ctx, msg,
		"removed", removed,
		"remaining", sweeper.Len())
}
