package approvals

import (
	"context"
	"time"

	"github.com/deeyajkotecha-del/helix-biotech-sub002/interfaces"
	"golang.org/x/time/rate"
)

// DefaultInterval is the minimum spacing between registry calls
const DefaultInterval = 300 * time.Millisecond

var _ interfaces.RateLimiter = (*IntervalLimiter)(nil)

// IntervalLimiter lets one call through per interval. A caller arriving
// early waits for the remainder of the interval.
type IntervalLimiter struct {
	limiter *rate.Limiter
}

// NewIntervalLimiter creates a limiter with a burst of one
func NewIntervalLimiter(interval time.Duration) *IntervalLimiter {
	if interval <= 0 {
		return &IntervalLimiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &IntervalLimiter{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next call is allowed or ctx is done
func (l *IntervalLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
