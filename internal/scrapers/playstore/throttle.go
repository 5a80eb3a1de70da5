package playstore

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// HumanThrottler waits a base delay plus a uniformly drawn jitter before
// every page, which makes the request pattern look less mechanical.
type HumanThrottler struct {
	BaseDelay time.Duration
	JitterMin time.Duration
	JitterMax time.Duration
}

func DefaultHumanThrottler() HumanThrottler {
	return HumanThrottler{
		BaseDelay: 5 * time.Second,
		JitterMin: 0,
		JitterMax: 3 * time.Second,
	}
}

func NewHumanThrottler(base, jitterMin, jitterMax time.Duration) (HumanThrottler, error) {
	if base < 0 {
		return HumanThrottler{}, fmt.Errorf("throttler: base delay must not be negative, got %s", base)
	}
	if jitterMin < 0 {
		return HumanThrottler{}, fmt.Errorf("throttler: minimum jitter must not be negative, got %s", jitterMin)
	}
	if jitterMax < jitterMin {
		return HumanThrottler{}, fmt.Errorf(
			"throttler: maximum jitter %s is less than minimum jitter %s",
			jitterMax, jitterMin,
		)
	}
	return HumanThrottler{BaseDelay: base, JitterMin: jitterMin, JitterMax: jitterMax}, nil
}

func (h HumanThrottler) delay() time.Duration {
	jitter := h.JitterMin
	if spread := h.JitterMax - h.JitterMin; spread > 0 {
		jitter += rand.N(spread + 1)
	}
	return h.BaseDelay + jitter
}

func (h HumanThrottler) Wait(ctx context.Context) error {
	timer := time.NewTimer(h.delay())
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NoThrottling never waits, it only honors cancellation.
type NoThrottling struct{}

func (NoThrottling) Wait(ctx context.Context) error {
	return ctx.Err()
}
