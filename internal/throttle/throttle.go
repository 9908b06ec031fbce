// Package throttle rate-limits SMTP probes per MX host with a token
// bucket, and tracks consecutive failures with exponential backoff so
// that hosts which refuse us are left alone for a growing quiet period.
package throttle

import (
	"math"
	"strings"
	"sync"
	"time"
)

// Config tunes the per-host token bucket and backoff policy.
type Config struct {
	MaxTokens         float64       // bucket capacity (default 10)
	RefillRate        float64       // tokens per second (default 1)
	FailureThreshold  int           // failures before backoff starts (default 3)
	InitialBackoff    time.Duration // first backoff period (default 5s)
	MaxBackoff        time.Duration // backoff cap (default 5m)
	BackoffMultiplier float64       // growth factor per extra failure (default 2)
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:         10,
		RefillRate:        1,
		FailureThreshold:  3,
		InitialBackoff:    5 * time.Second,
		MaxBackoff:        300 * time.Second,
		BackoffMultiplier: 2,
	}
}

// Throttle is a thread-safe per-host limiter. Host state is created
// lazily on first reference and lives for the process lifetime.
type Throttle struct {
	mu    sync.Mutex
	hosts map[string]*state
	cfg   Config
	now   func() time.Time // injectable for testing
}

type state struct {
	tokens       float64
	lastRefill   time.Time
	failureCount int
	backoffUntil time.Time
}

// New creates a throttle with the given config. Zero-value fields fall
// back to the defaults.
func New(cfg Config) *Throttle {
	def := DefaultConfig()
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.RefillRate <= 0 {
		cfg.RefillRate = def.RefillRate
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = def.InitialBackoff
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = def.MaxBackoff
	}
	if cfg.BackoffMultiplier <= 0 {
		cfg.BackoffMultiplier = def.BackoffMultiplier
	}
	return &Throttle{
		hosts: make(map[string]*state),
		cfg:   cfg,
		now:   time.Now,
	}
}

// NewWithClock creates a throttle with an injectable clock (for testing).
func NewWithClock(cfg Config, now func() time.Time) *Throttle {
	t := New(cfg)
	t.now = now
	return t
}

// CanProceed reports whether a probe against host is currently allowed:
// the host is not in backoff and at least one token is available.
func (t *Throttle) CanProceed(host string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.stateLocked(host)
	if t.now().Before(s.backoffUntil) {
		return false
	}
	t.refillLocked(s)
	return s.tokens >= 1
}

// Consume takes one token for host, returning false when the bucket is
// empty. Backoff is not checked here; callers gate with CanProceed.
func (t *Throttle) Consume(host string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.stateLocked(host)
	t.refillLocked(s)
	if s.tokens < 1 {
		return false
	}
	s.tokens--
	return true
}

// RecordSuccess ends any failure streak for host and lifts its backoff.
func (t *Throttle) RecordSuccess(host string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.stateLocked(host)
	s.failureCount = 0
	s.backoffUntil = time.Time{}
}

// RecordFailure counts a failed probe. Once the streak reaches the
// threshold, each further failure multiplies the enforced quiet period
// by BackoffMultiplier, up to the cap.
func (t *Throttle) RecordFailure(host string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.stateLocked(host)
	s.failureCount++
	if s.failureCount < t.cfg.FailureThreshold {
		return
	}

	exp := float64(s.failureCount - t.cfg.FailureThreshold)
	backoff := time.Duration(float64(t.cfg.InitialBackoff) * math.Pow(t.cfg.BackoffMultiplier, exp))
	if backoff > t.cfg.MaxBackoff {
		backoff = t.cfg.MaxBackoff
	}
	s.backoffUntil = t.now().Add(backoff)
}

// WaitTime returns how long the caller must wait before a probe against
// host can proceed: the backoff remainder while in backoff, zero when a
// token is ready, else the time until the next token refills.
func (t *Throttle) WaitTime(host string) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.stateLocked(host)
	now := t.now()
	if now.Before(s.backoffUntil) {
		return s.backoffUntil.Sub(now)
	}
	t.refillLocked(s)
	if s.tokens >= 1 {
		return 0
	}
	ms := math.Ceil((1 - s.tokens) / t.cfg.RefillRate * 1000)
	return time.Duration(ms) * time.Millisecond
}

// Reset drops all state for host.
func (t *Throttle) Reset(host string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.hosts, key(host))
}

// Clear drops all host state.
func (t *Throttle) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hosts = make(map[string]*state)
}

func (t *Throttle) stateLocked(host string) *state {
	k := key(host)
	s, ok := t.hosts[k]
	if !ok {
		s = &state{tokens: t.cfg.MaxTokens, lastRefill: t.now()}
		t.hosts[k] = s
	}
	return s
}

// refillLocked credits tokens for the time elapsed since the last refill,
// capped at the bucket size.
func (t *Throttle) refillLocked(s *state) {
	now := t.now()
	elapsed := now.Sub(s.lastRefill).Seconds()
	if elapsed > 0 {
		s.tokens = math.Min(t.cfg.MaxTokens, s.tokens+elapsed*t.cfg.RefillRate)
	}
	s.lastRefill = now
}

func key(host string) string {
	return strings.ToLower(host)
}
