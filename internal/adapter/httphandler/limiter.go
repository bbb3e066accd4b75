package httphandler

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// A VisitorLimiter keeps one token bucket per visitor. Buckets idle for
// longer than the sweep interval are dropped.
type VisitorLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	visitors  map[string]*visitorBucket
	lastSweep time.Time
	idle      time.Duration
}

type visitorBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewVisitorLimiter allows perSecond events per visitor with the given
// burst. A non-positive perSecond disables limiting.
func NewVisitorLimiter(perSecond float64, burst int) *VisitorLimiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	return &VisitorLimiter{
		limit:    limit,
		burst:    max(burst, 1),
		visitors: make(map[string]*visitorBucket),
		idle:     10 * time.Minute,
	}
}

func (l *VisitorLimiter) Allow(visitorID string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > l.idle {
		l.sweep(now)
	}

	b, ok := l.visitors[visitorID]
	if !ok {
		b = &visitorBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[visitorID] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

func (l *VisitorLimiter) sweep(now time.Time) {
	for id, b := range l.visitors {
		if now.Sub(b.lastSeen) > l.idle {
			delete(l.visitors, id)
		}
	}
	l.lastSweep = now
}
