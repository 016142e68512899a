// Package clock provides the self-paced tick loop the ingester uses to
// drive a fixed-period poll without drifting under load: it records the
// monotonic time at the top of each iteration and sleeps only the
// remainder of the period, so a slow iteration never causes a burst of
// catch-up ticks.
package clock

import (
	"context"
	"time"
)

// Pacer emits ticks at a target period, self-correcting for the time
// spent in the caller's body between ticks.
type Pacer struct {
	period time.Duration
}

// NewPacer builds a Pacer with the given target tick period. A
// non-positive period ticks as fast as the caller's body allows.
func NewPacer(period time.Duration) *Pacer {
	return &Pacer{period: period}
}

// Run invokes body once per tick until ctx is canceled or body returns a
// non-nil error. Each iteration: body runs, then Run sleeps
// max(0, period-elapsed) before the next call. If body overruns the
// period, the next tick fires immediately -- Run never queues up ticks
// to "catch up" on a burst. The sleep is interruptible: ctx cancellation
// during the sleep returns promptly rather than waiting out the period.
func (p *Pacer) Run(ctx context.Context, body func(ctx context.Context) error) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		start := time.Now()
		if err := body(ctx); err != nil {
			return err
		}

		elapsed := time.Since(start)
		remaining := p.period - elapsed
		if remaining <= 0 {
			continue
		}

		timer := time.NewTimer(remaining)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}
