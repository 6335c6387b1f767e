// Package sweep enforces retention policies by purging aged rows from every
// prunable dataset, one tenant at a time.
//
// RunOnce holds the orchestration (grouping, cutoffs, failure isolation) and is
// driven directly by tests; Sweeper and Scheduler only add loading, overlap
// protection and timing around it.
package sweep

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/gfcbot/rulekeeper/internal/domain"
	"github.com/gfcbot/rulekeeper/internal/models"
)

// Defaults for Options.
const (
	DefaultWorkers       = 4
	DefaultTenantTimeout = 2 * time.Minute
)

// Dataset is a tenant-partitioned table the sweep can age out.
type Dataset = domain.PrunableDataset

// Options tunes a sweep.
type Options struct {
	// Workers bounds how many tenants are swept concurrently.
	Workers int
	// TenantTimeout bounds the purge of all datasets of one tenant.
	TenantTimeout time.Duration
	Log           *logrus.Logger
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	if o.TenantTimeout <= 0 {
		o.TenantTimeout = DefaultTenantTimeout
	}
	if o.Log == nil {
		o.Log = logrus.StandardLogger()
	}

	return o
}

// TenantResult reports what was deleted for one tenant.
type TenantResult struct {
	TenantID string         `json:"tenant_id" yaml:"tenant_id"`
	MaxDays  int            `json:"max_days" yaml:"max_days"`
	Cutoff   time.Time      `json:"cutoff" yaml:"cutoff"`
	Deleted  map[string]int `json:"deleted" yaml:"deleted"`
}

// Failure records one dataset purge that did not complete.
type Failure struct {
	TenantID string `json:"tenant_id" yaml:"tenant_id"`
	Dataset  string `json:"dataset" yaml:"dataset"`
	Error    string `json:"error" yaml:"error"`
}

// Summary is the outcome of one sweep. Tenants lists every tenant that was
// started, including those with failures; Skipped lists tenants never started
// because the sweep was cancelled.
type Summary struct {
	StartedAt  time.Time      `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time      `json:"finished_at" yaml:"finished_at"`
	Tenants    []TenantResult `json:"tenants" yaml:"tenants"`
	Failures   []Failure      `json:"failures" yaml:"failures"`
	Skipped    []string       `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// TotalDeleted sums deleted rows over every tenant and dataset.
func (s *Summary) TotalDeleted() int {
	total := 0
	for _, t := range s.Tenants {
		for _, n := range t.Deleted {
			total += n
		}
	}

	return total
}

// OK reports whether every tenant was swept without failure.
func (s *Summary) OK() bool {
	return len(s.Failures) == 0 && len(s.Skipped) == 0
}

// tenantPlan is the cutoff chosen for one tenant.
type tenantPlan struct {
	tenantID string
	maxDays  int
	cutoff   time.Time
}

// plan groups enabled policies by tenant. Datasets are tenant-wide, so the
// longest max_days among a tenant's enabled policies decides its cutoff.
func plan(now time.Time, policies []models.RetentionPolicy) []tenantPlan {
	longest := make(map[string]models.RetentionPolicy)

	for _, p := range policies {
		if !p.Enabled {
			continue
		}
		if cur, ok := longest[p.TenantID]; !ok || p.MaxDays > cur.MaxDays {
			longest[p.TenantID] = p
		}
	}

	plans := make([]tenantPlan, 0, len(longest))
	for tenantID, p := range longest {
		plans = append(plans, tenantPlan{tenantID: tenantID, maxDays: p.MaxDays, cutoff: p.Cutoff(now)})
	}

	slices.SortFunc(plans, func(a, b tenantPlan) int { return cmp.Compare(a.tenantID, b.tenantID) })

	return plans
}

// RunOnce purges rows older than each tenant's cutoff from every dataset.
//
// Dataset failures (errors, panics, per-tenant timeouts) are recorded in the
// summary and never abort the sweep. Cancellation is checked before each tenant
// starts; completed deletions are not rolled back.
func RunOnce(
	ctx context.Context, now time.Time, policies []models.RetentionPolicy, datasets []Dataset, opts Options,
) Summary {
	opts = opts.withDefaults()

	summary := Summary{
		StartedAt: time.Now(),
		Tenants:   []TenantResult{},
		Failures:  []Failure{},
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)

	g.SetLimit(opts.Workers)

	for _, p := range plan(now, policies) {
		if ctx.Err() != nil {
			summary.Skipped = append(summary.Skipped, p.tenantID)
			continue
		}

		g.Go(func() error {
			if ctx.Err() != nil {
				mu.Lock()
				summary.Skipped = append(summary.Skipped, p.tenantID)
				mu.Unlock()

				return nil
			}

			result, failures := sweepTenant(ctx, p, datasets, opts)

			mu.Lock()
			summary.Tenants = append(summary.Tenants, result)
			summary.Failures = append(summary.Failures, failures...)
			mu.Unlock()

			return nil
		})
	}

	_ = g.Wait() // workers never return errors.

	slices.SortFunc(summary.Tenants, func(a, b TenantResult) int { return cmp.Compare(a.TenantID, b.TenantID) })
	slices.SortFunc(summary.Failures, func(a, b Failure) int {
		return cmp.Or(cmp.Compare(a.TenantID, b.TenantID), cmp.Compare(a.Dataset, b.Dataset))
	})
	slices.Sort(summary.Skipped)

	summary.FinishedAt = time.Now()

	return summary
}

// sweepTenant purges every dataset for one tenant under the tenant timeout.
func sweepTenant(ctx context.Context, p tenantPlan, datasets []Dataset, opts Options) (TenantResult, []Failure) {
	ctx, cancel := context.WithTimeout(ctx, opts.TenantTimeout)
	defer cancel()

	result := TenantResult{
		TenantID: p.tenantID,
		MaxDays:  p.maxDays,
		Cutoff:   p.cutoff,
		Deleted:  make(map[string]int, len(datasets)),
	}

	var failures []Failure

	for _, ds := range datasets {
		n, err := purge(ctx, ds, p.tenantID, p.cutoff)
		if n > 0 {
			result.Deleted[ds.Name()] = n
		}

		fields := logrus.Fields{
			"tenant_id": p.tenantID,
			"dataset":   ds.Name(),
			"cutoff":    p.cutoff,
			"deleted":   n,
		}

		if err != nil {
			failures = append(failures, Failure{TenantID: p.tenantID, Dataset: ds.Name(), Error: err.Error()})
			opts.Log.WithError(err).WithFields(fields).Error("sweep.dataset_failed")

			continue
		}

		opts.Log.WithFields(fields).Debug("sweep.dataset")
	}

	return result, failures
}

// purge runs one dataset purge, converting a panic into an error.
func purge(ctx context.Context, ds Dataset, tenantID string, cutoff time.Time) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic purging %s: %v", models.ErrDependency, ds.Name(), r)
		}
	}()

	return ds.PurgeOlderThan(ctx, tenantID, cutoff)
}
