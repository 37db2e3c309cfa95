package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/teamscore/internal/dependencies/mocks"
	"github.com/mcoot/teamscore/internal/testutil"
)

func TestSubjectRateLimiterKeepsBucketsApart(t *testing.T) {
	clk := mocks.NewMockClock(testutil.FixedTime)
	limiter := NewSubjectRateLimiter(clk, 1, 2)

	assert.True(t, limiter.Allow("judge-1"))
	assert.True(t, limiter.Allow("judge-1"))
	assert.False(t, limiter.Allow("judge-1"))

	// Another caller still has a full burst
	assert.True(t, limiter.Allow("judge-2"))

	clk.Advance(time.Second)
	assert.True(t, limiter.Allow("judge-1"))
	assert.False(t, limiter.Allow("judge-1"))
}

func TestSubjectRateLimiterDropsIdleBuckets(t *testing.T) {
	clk := mocks.NewMockClock(testutil.FixedTime)
	limiter := NewSubjectRateLimiter(clk, 1, 1)

	for i := 0; i <= cleanupThreshold; i++ {
		limiter.Allow(fmt.Sprintf("caller-%d", i))
	}
	assert.Len(t, limiter.buckets, cleanupThreshold+1)

	clk.Set(testutil.FixedTime.Add(maxIdleAge + time.Minute))
	assert.True(t, limiter.Allow("fresh"))
	assert.Len(t, limiter.buckets, 1)
}

func TestRateLimitRejectsWithJSON(t *testing.T) {
	limiter := NewSubjectRateLimiter(mocks.NewMockClock(testutil.FixedTime), 1, 1)
	handler := RateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusNoContent, first.Code)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Contains(t, second.Body.String(), "RATE_LIMITED")
}
