package sweep

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gfcbot/rulekeeper/internal/metrics"
	"github.com/gfcbot/rulekeeper/internal/models"
)

// ErrSweepInProgress is returned when a sweep is requested while one is running.
var ErrSweepInProgress = errors.New("sweep already in progress")

// PolicySource lists the enabled retention policies of every tenant.
type PolicySource interface {
	ListEnabledPolicies(ctx context.Context) ([]models.RetentionPolicy, error)
}

// Sweeper runs retention sweeps against the store. At most one sweep runs at a time.
type Sweeper struct {
	policies PolicySource
	datasets []Dataset
	opts     Options
	log      *logrus.Logger
	now      func() time.Time
	running  atomic.Bool
}

// NewSweeper creates a Sweeper over the given datasets.
func NewSweeper(policies PolicySource, datasets []Dataset, opts Options, log *logrus.Logger) *Sweeper {
	opts.Log = log

	return &Sweeper{
		policies: policies,
		datasets: datasets,
		opts:     opts.withDefaults(),
		log:      log,
		now:      time.Now,
	}
}

// Running reports whether a sweep is in progress.
func (s *Sweeper) Running() bool {
	return s.running.Load()
}

// Run performs one sweep. Per-tenant failures are reported in the summary; an
// error is returned only when the sweep could not start.
func (s *Sweeper) Run(ctx context.Context) (*Summary, error) {
	if !s.running.CompareAndSwap(false, true) {
		metrics.SweepRuns.WithLabelValues("skipped").Inc()
		return nil, ErrSweepInProgress
	}
	defer s.running.Store(false)

	start := s.now()

	policies, err := s.policies.ListEnabledPolicies(ctx)
	if err != nil {
		metrics.SweepRuns.WithLabelValues("failed").Inc()
		s.log.WithError(err).Error("sweep.load_policies_failed")

		return nil, fmt.Errorf("loading retention policies: %w", err)
	}

	summary := RunOnce(ctx, start, policies, s.datasets, s.opts)

	s.record(&summary)

	return &summary, nil
}

func (s *Sweeper) record(summary *Summary) {
	for _, t := range summary.Tenants {
		for dataset, n := range t.Deleted {
			metrics.RowsPurged.WithLabelValues(dataset).Add(float64(n))
		}
	}
	for _, f := range summary.Failures {
		metrics.SweepFailures.WithLabelValues(f.Dataset).Inc()
	}

	elapsed := summary.FinishedAt.Sub(summary.StartedAt)
	metrics.SweepDuration.Observe(elapsed.Seconds())

	result := "ok"
	if !summary.OK() {
		result = "partial"
	} else {
		metrics.SweepLastSuccess.SetToCurrentTime()
	}
	metrics.SweepRuns.WithLabelValues(result).Inc()

	fields := logrus.Fields{
		"tenants":     len(summary.Tenants),
		"deleted":     summary.TotalDeleted(),
		"failures":    len(summary.Failures),
		"skipped":     len(summary.Skipped),
		"duration_ms": elapsed.Milliseconds(),
	}

	if summary.OK() {
		s.log.WithFields(fields).Info("sweep.complete")
	} else {
		s.log.WithFields(fields).Warn("sweep.complete_with_failures")
	}
}
