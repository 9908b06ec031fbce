package throttle_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/optimode/deliverkit/internal/throttle"
)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newThrottle(clk *fakeClock) *throttle.Throttle {
	return throttle.NewWithClock(throttle.Config{
		MaxTokens:         3,
		RefillRate:        1,
		FailureThreshold:  3,
		InitialBackoff:    5 * time.Second,
		MaxBackoff:        40 * time.Second,
		BackoffMultiplier: 2,
	}, clk.now)
}

func TestThrottle_ConsumesAndRefills(t *testing.T) {
	clk := newFakeClock()
	th := newThrottle(clk)

	assert.True(t, th.Consume("mx.example.com"))
	assert.True(t, th.Consume("mx.example.com"))
	assert.True(t, th.Consume("mx.example.com"))
	assert.False(t, th.Consume("mx.example.com")) // bucket empty

	clk.advance(time.Second)
	assert.True(t, th.Consume("mx.example.com")) // one token refilled
	assert.False(t, th.Consume("mx.example.com"))
}

func TestThrottle_TokensCappedAtMax(t *testing.T) {
	clk := newFakeClock()
	th := newThrottle(clk)

	th.CanProceed("mx.example.com") // create the host's bucket before the clock moves
	clk.advance(time.Hour)          // far more than 3 tokens worth of refill
	for i := 0; i < 3; i++ {
		assert.True(t, th.Consume("mx.example.com"))
	}
	assert.False(t, th.Consume("mx.example.com"))
}

func TestThrottle_HostKeyCaseInsensitive(t *testing.T) {
	clk := newFakeClock()
	th := newThrottle(clk)

	assert.True(t, th.Consume("MX.Example.COM"))
	assert.True(t, th.Consume("mx.example.com"))
	assert.True(t, th.Consume("mx.example.com"))
	assert.False(t, th.Consume("MX.EXAMPLE.COM")) // same bucket
}

func TestThrottle_BackoffAfterThreshold(t *testing.T) {
	clk := newFakeClock()
	th := newThrottle(clk)

	th.RecordFailure("mx.example.com")
	th.RecordFailure("mx.example.com")
	assert.True(t, th.CanProceed("mx.example.com")) // below threshold

	th.RecordFailure("mx.example.com") // third failure starts backoff (5s)
	assert.False(t, th.CanProceed("mx.example.com"))
	assert.Equal(t, 5*time.Second, th.WaitTime("mx.example.com"))

	clk.advance(5 * time.Second)
	assert.True(t, th.CanProceed("mx.example.com"))
}

func TestThrottle_BackoffGrowsMonotonically(t *testing.T) {
	clk := newFakeClock()
	th := newThrottle(clk)

	var last time.Duration
	for i := 0; i < 6; i++ {
		th.RecordFailure("mx.example.com")
		w := th.WaitTime("mx.example.com")
		assert.GreaterOrEqual(t, w, last)
		last = w
	}
	// 5s * 2^3 = 40s hits the cap
	assert.Equal(t, 40*time.Second, last)

	th.RecordFailure("mx.example.com")
	assert.Equal(t, 40*time.Second, th.WaitTime("mx.example.com")) // capped
}

func TestThrottle_SuccessEndsStreak(t *testing.T) {
	clk := newFakeClock()
	th := newThrottle(clk)

	for i := 0; i < 4; i++ {
		th.RecordFailure("mx.example.com")
	}
	assert.False(t, th.CanProceed("mx.example.com"))

	th.RecordSuccess("mx.example.com")
	assert.True(t, th.CanProceed("mx.example.com"))

	// The streak restarted: two more failures stay below the threshold.
	th.RecordFailure("mx.example.com")
	th.RecordFailure("mx.example.com")
	assert.True(t, th.CanProceed("mx.example.com"))
}

func TestThrottle_WaitTimeForTokenRefill(t *testing.T) {
	clk := newFakeClock()
	th := newThrottle(clk)

	assert.Equal(t, time.Duration(0), th.WaitTime("mx.example.com"))

	for i := 0; i < 3; i++ {
		th.Consume("mx.example.com")
	}
	// Empty bucket, 1 token/s refill: next token in 1s.
	assert.Equal(t, time.Second, th.WaitTime("mx.example.com"))

	clk.advance(400 * time.Millisecond)
	assert.Equal(t, 600*time.Millisecond, th.WaitTime("mx.example.com"))
}

func TestThrottle_ResetAndClear(t *testing.T) {
	clk := newFakeClock()
	th := newThrottle(clk)

	for i := 0; i < 4; i++ {
		th.RecordFailure("a.example.com")
		th.RecordFailure("b.example.com")
	}
	th.Reset("a.example.com")
	assert.True(t, th.CanProceed("a.example.com"))
	assert.False(t, th.CanProceed("b.example.com"))

	th.Clear()
	assert.True(t, th.CanProceed("b.example.com"))
}
