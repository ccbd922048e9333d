package alerts

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces out consecutive webhook sends in a batch. The receiving
// incident tool rate-limits aggressively, so batch dispatch is serialized
// through a Pacer rather than parallelized.
type Pacer interface {
	Wait(ctx context.Context) error
}

type limiterPacer struct {
	limiter *rate.Limiter
}

// NewPacer returns a Pacer that allows one send per interval, with a burst
// of one so the first send in a batch is not delayed.
func NewPacer(interval time.Duration) Pacer {
	if interval <= 0 {
		return NopPacer{}
	}
	return &limiterPacer{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

func (p *limiterPacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

// NopPacer applies no delay. Used when pacing is disabled and in tests.
type NopPacer struct{}

func (NopPacer) Wait(ctx context.Context) error { return ctx.Err() }
