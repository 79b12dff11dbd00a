package storage

import (
	"context"

	"golang.org/x/time/rate"
)

// throttle limits the write throughput of segment uploads.
// A nil throttle is unlimited.
type throttle struct {
	limiter *rate.Limiter
	burst   int
}

func newThrottle(bytesPerSec int) *throttle {
	if bytesPerSec <= 0 {
		return nil
	}
	return &throttle{
		limiter: rate.NewLimiter(rate.Limit(bytesPerSec), bytesPerSec),
		burst:   bytesPerSec,
	}
}

// chunk returns the largest write that can be acquired in one call.
func (t *throttle) chunk(n int) int {
	if t == nil || n <= t.burst {
		return n
	}
	return t.burst
}

// acquire waits until n bytes may be written. n must not exceed the burst.
func (t *throttle) acquire(ctx context.Context, n int) error {
	if t == nil {
		return nil
	}
	return t.limiter.WaitN(ctx, n)
}
