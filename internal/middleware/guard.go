package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	guardMaxFailures = 10
	guardWindow      = 15 * time.Minute
	guardLockout     = 5 * time.Minute
	guardSweepPeriod = time.Minute
	guardMaxEntries  = 10000
)

type failureWindow struct {
	count       int
	windowStart time.Time
	lockedUntil time.Time
}

// FailureGuard locks out client addresses after repeated authentication
// failures. Keys are addresses rather than API keys: a guessing client
// never repeats a key.
type FailureGuard struct {
	mu      sync.Mutex
	entries map[string]*failureWindow
	log     *logrus.Logger
	now     func() time.Time
}

// NewFailureGuard creates a guard whose eviction loop stops when ctx is cancelled.
func NewFailureGuard(ctx context.Context, log *logrus.Logger) *FailureGuard {
	g := &FailureGuard{
		entries: make(map[string]*failureWindow),
		log:     log,
		now:     time.Now,
	}
	go g.evictLoop(ctx)
	return g
}

// IsBlocked reports whether addr is locked out.
func (g *FailureGuard) IsBlocked(addr string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	e, ok := g.entries[addr]
	return ok && g.now().Before(e.lockedUntil)
}

// RecordFailure counts a failed attempt from addr and locks it out at the threshold.
func (g *FailureGuard) RecordFailure(addr string) {
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	e, ok := g.entries[addr]
	if !ok || now.Sub(e.windowStart) > guardWindow {
		if !ok && len(g.entries) >= guardMaxEntries {
			g.evictLocked(now)
		}
		g.entries[addr] = &failureWindow{count: 1, windowStart: now}
		return
	}

	e.count++
	if e.count >= guardMaxFailures && e.lockedUntil.IsZero() {
		e.lockedUntil = now.Add(guardLockout)
		g.log.WithField("client_ip", addr).Warn("client locked out after repeated auth failures")
	}
}

// Reset clears failures for addr after a successful authentication.
func (g *FailureGuard) Reset(addr string) {
	g.mu.Lock()
	delete(g.entries, addr)
	g.mu.Unlock()
}

func (g *FailureGuard) evictLoop(ctx context.Context) {
	ticker := time.NewTicker(guardSweepPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.mu.Lock()
			g.evictLocked(g.now())
			g.mu.Unlock()
		}
	}
}

// evictLocked drops expired windows. Caller must hold g.mu.
func (g *FailureGuard) evictLocked(now time.Time) {
	for addr, e := range g.entries {
		if now.After(e.lockedUntil) && now.Sub(e.windowStart) > guardWindow {
			delete(g.entries, addr)
		}
	}
}
