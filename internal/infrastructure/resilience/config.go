package resilience

import "time"

// Config tunes the retry loop and the per-operation circuit breaker.
// The zero value is usable: unset fields fall back to the defaults
// below, and the breaker is on unless explicitly disabled.
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	DelayGrowth float64

	DisableBreaker   bool
	BreakerMinCalls  uint32
	BreakerFailRatio float64
	BreakerCooldown  time.Duration
	BreakerProbes    uint32
}

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 100 * time.Millisecond
	defaultMaxDelay    = 400 * time.Millisecond
	defaultDelayGrowth = 2.0

	defaultBreakerMinCalls  = 10
	defaultBreakerFailRatio = 0.5
	defaultBreakerCooldown  = 30 * time.Second
	defaultBreakerProbes    = 2
)

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = defaultBaseDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = defaultMaxDelay
	}
	if c.MaxDelay < c.BaseDelay {
		c.MaxDelay = c.BaseDelay
	}
	if c.DelayGrowth < 1.0 {
		c.DelayGrowth = defaultDelayGrowth
	}
	if c.BreakerMinCalls == 0 {
		c.BreakerMinCalls = defaultBreakerMinCalls
	}
	if c.BreakerFailRatio <= 0 || c.BreakerFailRatio > 1 {
		c.BreakerFailRatio = defaultBreakerFailRatio
	}
	if c.BreakerCooldown <= 0 {
		c.BreakerCooldown = defaultBreakerCooldown
	}
	if c.BreakerProbes == 0 {
		c.BreakerProbes = defaultBreakerProbes
	}
	return c
}

// delayFor returns the backoff before the next attempt. attempt is
// zero-based: the first retry waits BaseDelay.
func (c Config) delayFor(attempt int) time.Duration {
	delay := c.BaseDelay
	for i := 0; i < attempt; i++ {
		delay = time.Duration(float64(delay) * c.DelayGrowth)
		if delay >= c.MaxDelay {
			return c.MaxDelay
		}
	}
	return delay
}
