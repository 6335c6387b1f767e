package middleware

import "time"

// SetClock replaces the time source of a limiter or guard in tests.
func (rl *RateLimiter) SetClock(now func() time.Time) { rl.now = now }

func (g *FailureGuard) SetClock(now func() time.Time) { g.now = now }

const GuardMaxFailures = guardMaxFailures

const GuardLockout = guardLockout
