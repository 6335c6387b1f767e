package sweep

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DefaultSchedule runs the sweep daily at 02:00.
const DefaultSchedule = "0 2 * * *"

// Runner performs one sweep.
type Runner interface {
	Run(ctx context.Context) (*Summary, error)
}

// Scheduler triggers a Runner on a cron schedule. A tick that fires while the
// previous sweep is still running is skipped.
type Scheduler struct {
	cron    *cron.Cron
	runner  Runner
	log     *logrus.Logger
	entryID cron.EntryID
	ctx     context.Context //nolint:containedctx // parent of scheduled sweeps, set by Start.
}

// NewScheduler parses spec in the named time zone ("" means UTC).
func NewScheduler(spec, timezone string, runner Runner, log *logrus.Logger) (*Scheduler, error) {
	if spec == "" {
		spec = DefaultSchedule
	}

	loc := time.UTC
	if timezone != "" {
		var err error
		if loc, err = time.LoadLocation(timezone); err != nil {
			return nil, fmt.Errorf("loading sweep timezone %q: %w", timezone, err)
		}
	}

	logger := cron.PrintfLogger(log)

	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		runner: runner,
		log:    log,
		ctx:    context.Background(),
	}

	id, err := s.cron.AddFunc(spec, s.tick)
	if err != nil {
		return nil, fmt.Errorf("parsing sweep schedule %q: %w", spec, err)
	}
	s.entryID = id

	return s, nil
}

// Start begins firing ticks in the background. Cancelling ctx stops the
// schedule and cancels a sweep in flight.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx = ctx
	s.cron.Start()

	go func() {
		<-ctx.Done()
		s.cron.Stop()
	}()

	s.log.WithField("next_run", s.Next()).Info("sweep.scheduled")
}

// Stop halts the schedule and returns a context done once a running sweep finishes.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Next returns the time of the next scheduled sweep.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entryID).Next
}

func (s *Scheduler) tick() {
	if _, err := s.runner.Run(s.ctx); err != nil {
		if errors.Is(err, ErrSweepInProgress) {
			s.log.Info("sweep.tick_skipped")
			return
		}
		s.log.WithError(err).Error("sweep.tick_failed")
	}
}
