// Package cooldown tracks per-user command cooldowns in memory.
package cooldown

import (
	"sync"
	"time"

	"bot-dispatch/internal/metrics"
)

// Tracker is a keyed rate limiter: for every (command, user) pair at most one
// use is granted per cooldown window. All methods are safe for concurrent use;
// a check and the reservation that follows it happen under one lock.
type Tracker struct {
	mu      sync.Mutex
	entries map[string]map[string]time.Time
	count   int
	now     func() time.Time
	gauge   Gauge
}

// Gauge receives the number of live entries after every change.
type Gauge interface {
	Set(float64)
}

func NewTracker() *Tracker {
	return &Tracker{
		entries: make(map[string]map[string]time.Time),
		now:     time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.now = now
	return t
}

// ReportTo publishes the entry count to g. Only one tracker per process
// should report to a given gauge.
func (t *Tracker) ReportTo(g Gauge) *Tracker {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gauge = g
	t.report()
	return t
}

// CheckAndReserve returns how long userID still has to wait before running
// command again. A zero result means the use was granted and a new window of
// length cooldown now starts. A non-positive cooldown always grants and
// stores nothing.
func (t *Tracker) CheckAndReserve(command string, cooldown time.Duration, userID string) time.Duration {
	if cooldown <= 0 {
		return 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	users := t.sweep(command, now)

	if expiry, ok := users[userID]; ok {
		metrics.CooldownChecks.WithLabelValues("denied").Inc()
		return expiry.Sub(now)
	}

	if users == nil {
		users = make(map[string]time.Time)
		t.entries[command] = users
	}
	users[userID] = now.Add(cooldown)
	t.count++
	metrics.CooldownChecks.WithLabelValues("granted").Inc()
	t.report()

	return 0
}

// Remaining reports the wait left for userID without reserving anything.
func (t *Tracker) Remaining(command, userID string) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	expiry, ok := t.entries[command][userID]
	if !ok {
		return 0
	}
	if left := expiry.Sub(t.now()); left > 0 {
		return left
	}
	return 0
}

// Reset lifts the cooldown of userID on command.
func (t *Tracker) Reset(command, userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	users, ok := t.entries[command]
	if !ok {
		return
	}
	if _, ok := users[userID]; ok {
		delete(users, userID)
		t.count--
	}
	if len(users) == 0 {
		delete(t.entries, command)
	}
	t.report()
}

// Len returns the number of tracked entries, expired ones included until the
// next sweep of their command.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

// sweep drops expired entries of command. Must be called with t.mu held.
func (t *Tracker) sweep(command string, now time.Time) map[string]time.Time {
	users, ok := t.entries[command]
	if !ok {
		return nil
	}

	for userID, expiry := range users {
		if !now.Before(expiry) {
			delete(users, userID)
			t.count--
		}
	}

	if len(users) == 0 {
		delete(t.entries, command)
		users = nil
	}
	t.report()
	return users
}

// report must be called with t.mu held.
func (t *Tracker) report() {
	if t.gauge != nil {
		t.gauge.Set(float64(t.count))
	}
}
