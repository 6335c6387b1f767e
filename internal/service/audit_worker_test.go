package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gfcbot/rulekeeper/internal/models"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

// startWorker runs w in the background. The returned stop cancels it and
// waits for Run to return, failing the test if it hangs.
func startWorker(t *testing.T, w *AuditWorker) (stop func()) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	return func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("Run did not return after cancel")
		}
	}
}

func TestAuditWorker_RecordsEnqueuedJob(t *testing.T) {
	auditor := &mockAuditor{}
	aw := NewAuditWorker(auditor, quietLogger(), 10)
	stop := startWorker(t, aw)

	aw.Enqueue(&AuditJob{
		TenantID:   "t1",
		Action:     models.ActionRuleCreated,
		TargetType: models.TargetRule,
		TargetID:   "r1",
		ActorID:    "u1",
	})
	stop()

	calls := auditor.getCalls()
	if len(calls) != 1 {
		t.Fatalf("got %d audit writes, want 1", len(calls))
	}
	if c := calls[0]; c.Action != models.ActionRuleCreated || c.TargetID != "r1" || c.ActorID != "u1" {
		t.Errorf("unexpected write %+v", c)
	}
}

func TestAuditWorker_EnqueueNeverBlocks(t *testing.T) {
	aw := NewAuditWorker(&mockAuditor{}, quietLogger(), 2)

	done := make(chan struct{})
	go func() {
		for _, a := range []string{"a", "b", "c", "d"} {
			aw.Enqueue(&AuditJob{Action: a})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}

	if len(aw.jobs) != 2 {
		t.Errorf("queue holds %d jobs, want 2", len(aw.jobs))
	}
}

func TestAuditWorker_FlushesQueueOnStop(t *testing.T) {
	auditor := &mockAuditor{}
	aw := NewAuditWorker(auditor, quietLogger(), 100)

	for i := range 5 {
		aw.Enqueue(&AuditJob{Action: "flush", TargetID: fmt.Sprint(i)})
	}
	startWorker(t, aw)()

	if calls := auditor.getCalls(); len(calls) != 5 {
		t.Errorf("got %d audit writes after stop, want 5", len(calls))
	}
}

func TestAuditWorker_FlushGivesUpAfterDeadline(t *testing.T) {
	auditor := &mockAuditor{}
	aw := NewAuditWorker(auditor, quietLogger(), 10)
	aw.Enqueue(&AuditJob{Action: "late"})
	aw.Enqueue(&AuditJob{Action: "later"})

	aw.flush(time.Now().Add(-time.Second))

	if calls := auditor.getCalls(); len(calls) != 0 {
		t.Errorf("got %d writes past the deadline, want 0", len(calls))
	}
	if len(aw.jobs) != 0 {
		t.Errorf("%d jobs left queued", len(aw.jobs))
	}
}

func TestAuditWorker_WriteFailureIsSwallowed(t *testing.T) {
	auditor := &mockAuditor{err: errors.New("db down")}
	aw := NewAuditWorker(auditor, quietLogger(), 10)
	aw.Enqueue(&AuditJob{Action: "x"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	aw.Run(ctx)

	if calls := auditor.getCalls(); len(calls) != 1 {
		t.Errorf("got %d write attempts, want 1", len(calls))
	}
}

func TestAuditAsync_SkipsWithoutActor(t *testing.T) {
	enq := &mockEnqueuer{}

	auditAsync(enq, quietLogger(), models.Actor{}, "t1", models.ActionRuleDeleted, models.TargetRule, "r1", nil)
	if jobs := enq.getJobs(); len(jobs) != 0 {
		t.Errorf("got %d jobs without an actor, want 0", len(jobs))
	}

	auditAsync(enq, quietLogger(), models.Actor{ID: "u1"}, "t1", models.ActionRuleDeleted, models.TargetRule, "r1", nil)
	if jobs := enq.getJobs(); len(jobs) != 1 || jobs[0].ActorID != "u1" {
		t.Errorf("want one job attributed to u1, got %+v", jobs)
	}
}

// stallingAuditor blocks every write until its context ends.
type stallingAuditor struct {
	writes int
}

func (s *stallingAuditor) RecordAudit(ctx context.Context, _, _, _, _, _ string, _ map[string]any) error {
	s.writes++
	<-ctx.Done()
	return ctx.Err()
}

func TestAuditWorker_FlushBoundsSlowWrites(t *testing.T) {
	auditor := &stallingAuditor{}
	aw := NewAuditWorker(auditor, quietLogger(), 10)
	for range 3 {
		aw.Enqueue(&AuditJob{Action: "slow"})
	}

	done := make(chan struct{})
	go func() {
		aw.flush(time.Now().Add(50 * time.Millisecond))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("flush outlived its deadline")
	}

	if auditor.writes != 1 {
		t.Errorf("got %d writes, want 1 before the deadline", auditor.writes)
	}
	if len(aw.jobs) != 0 {
		t.Errorf("%d jobs left queued", len(aw.jobs))
	}
}
