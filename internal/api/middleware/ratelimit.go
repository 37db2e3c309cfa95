package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/mcoot/teamscore/internal/api/apierr"
	"github.com/mcoot/teamscore/internal/dependencies/clock"
)

const (
	// cleanupThreshold is the minimum map size before a cleanup pass runs
	cleanupThreshold = 500
	// maxIdleAge is how long an idle subject keeps its bucket
	maxIdleAge = 10 * time.Minute
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// SubjectRateLimiter keeps one token bucket per authenticated subject
type SubjectRateLimiter struct {
	buckets map[string]*bucket
	mu      sync.Mutex
	clock   clock.Clock
	r       rate.Limit
	b       int
}

// NewSubjectRateLimiter creates a limiter allowing perSecond sustained writes
// with the given burst
func NewSubjectRateLimiter(clock clock.Clock, perSecond float64, burst int) *SubjectRateLimiter {
	return &SubjectRateLimiter{
		buckets: make(map[string]*bucket),
		clock:   clock,
		r:       rate.Limit(perSecond),
		b:       burst,
	}
}

// Allow takes one token from the subject's bucket
func (l *SubjectRateLimiter) Allow(subject string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	if len(l.buckets) > cleanupThreshold {
		for k, e := range l.buckets {
			if clock.Since(l.clock, e.lastSeen) > maxIdleAge {
				delete(l.buckets, k)
			}
		}
	}

	e, ok := l.buckets[subject]
	if !ok {
		e = &bucket{limiter: rate.NewLimiter(l.r, l.b)}
		l.buckets[subject] = e
	}
	e.lastSeen = now

	return e.limiter.AllowN(now, 1)
}

// RateLimit rejects callers that exceed their write budget. Anonymous callers
// share one bucket.
func RateLimit(limiter *SubjectRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := ""
			if claims := GetClaims(r.Context()); claims != nil {
				subject = claims.Subject
			}

			if !limiter.Allow(subject) {
				apierr.WriteError(w, apierr.NewRateLimitedError())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
