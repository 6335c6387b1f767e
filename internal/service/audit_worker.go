package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gfcbot/rulekeeper/internal/metrics"
	"github.com/gfcbot/rulekeeper/internal/models"
)

// AuditJob represents a single audit entry to be recorded.
type AuditJob struct {
	TenantID   string
	Action     string
	TargetType string
	TargetID   string
	ActorID    string
	Detail     map[string]any
}

// AuditEnqueuer accepts audit jobs for asynchronous recording.
type AuditEnqueuer interface {
	Enqueue(job *AuditJob)
}

// AuditWorker buffers audit entries and writes them via a single worker goroutine.
// A failed or dropped entry never affects the mutation that produced it.
type AuditWorker struct {
	auditor Auditor
	log     *logrus.Logger
	jobs    chan *AuditJob
}

// NewAuditWorker creates an AuditWorker with the given queue capacity.
func NewAuditWorker(auditor Auditor, log *logrus.Logger, queueSize int) *AuditWorker {
	if queueSize <= 0 {
		queueSize = 1000
	}
	return &AuditWorker{
		auditor: auditor,
		log:     log,
		jobs:    make(chan *AuditJob, queueSize),
	}
}

// Enqueue adds an audit job. Non-blocking; drops the job if the queue is full.
func (w *AuditWorker) Enqueue(job *AuditJob) {
	select {
	case w.jobs <- job:
		metrics.AuditQueueDepth.Set(float64(len(w.jobs)))
	default:
		metrics.AuditDropped.WithLabelValues("queue_full").Inc()
		w.log.WithFields(logrus.Fields{
			"action":    job.Action,
			"tenant_id": job.TenantID,
		}).Warn("audit.queue_full")
	}
}

// DrainTimeout bounds how long Run keeps writing queued entries after its
// context is cancelled. Entries still queued after that are counted as dropped.
const DrainTimeout = 10 * time.Second

// Run writes queued entries until ctx is cancelled, then flushes what is left.
func (w *AuditWorker) Run(ctx context.Context) {
	for {
		select {
		case job := <-w.jobs:
			w.process(context.Background(), job)
		case <-ctx.Done():
			w.flush(time.Now().Add(DrainTimeout))
			return
		}
	}
}

// flush writes queued entries until the queue is empty or deadline passes.
// Writes in flight share the deadline.
func (w *AuditWorker) flush(deadline time.Time) {
	ctx, cancel := context.WithDeadline(context.Background(), deadline)
	defer cancel()

	for {
		var job *AuditJob
		select {
		case job = <-w.jobs:
		default:
			return
		}

		if ctx.Err() != nil {
			w.discard(1)
			return
		}

		w.process(ctx, job)
	}
}

// discard empties the queue without writing. lost counts jobs already taken off it.
func (w *AuditWorker) discard(lost int) {
	for len(w.jobs) > 0 {
		<-w.jobs
		lost++
	}

	metrics.AuditDropped.WithLabelValues("shutdown").Add(float64(lost))
	metrics.AuditQueueDepth.Set(0)
	w.log.WithField("dropped", lost).Error("audit.flush_timeout")
}

func (w *AuditWorker) process(ctx context.Context, job *AuditJob) {
	metrics.AuditQueueDepth.Set(float64(len(w.jobs)))

	err := w.auditor.RecordAudit(ctx,
		job.TenantID, job.Action, job.TargetType, job.TargetID, job.ActorID, job.Detail)
	if err == nil {
		return
	}

	metrics.AuditDropped.WithLabelValues("write_failed").Inc()
	w.log.WithError(err).WithFields(logrus.Fields{
		"action":    job.Action,
		"tenant_id": job.TenantID,
		"target_id": job.TargetID,
	}).Warn("audit.write_failed")
}

// auditAsync enqueues one audit entry attributed to actor. Mutations without an
// acting identity are not recorded; the skip is logged.
func auditAsync(
	w AuditEnqueuer, log *logrus.Logger, actor models.Actor,
	tenantID, action, targetType, targetID string, detail map[string]any,
) {
	if w == nil {
		return
	}

	if actor.ID == "" {
		metrics.AuditDropped.WithLabelValues("no_actor").Inc()
		log.WithFields(logrus.Fields{
			"action":    action,
			"tenant_id": tenantID,
			"target_id": targetID,
		}).Warn("audit.no_actor")

		return
	}

	w.Enqueue(&AuditJob{
		TenantID:   tenantID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		ActorID:    actor.ID,
		Detail:     detail,
	})
}
