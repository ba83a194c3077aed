package generator

import (
	"math"
	"time"
)

// RetryPolicy is the explicit retry/backoff contract for generation
// calls: capped attempts with exponential delay.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		Multiplier:  2.0,
	}
}

// Delay returns the wait before the given retry (1-based: the delay
// after the first failure is Delay(1) = BaseDelay).
func (p RetryPolicy) Delay(retry int) time.Duration {
	if retry < 1 {
		return 0
	}
	mult := p.Multiplier
	if mult <= 0 {
		mult = 2.0
	}
	return time.Duration(float64(p.BaseDelay) * math.Pow(mult, float64(retry-1)))
}
