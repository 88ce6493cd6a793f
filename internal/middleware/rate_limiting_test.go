package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redis_rate/v9"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/cheongchoi112/ai-fitness-api/internal/auth"
	"github.com/cheongchoi112/ai-fitness-api/internal/middleware"
	"github.com/cheongchoi112/ai-fitness-api/internal/telemetry/metrics"
)

func TestRateLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	limiter := NewMockRequestRateLimiter(ctrl)
	metricsManager := metrics.NewTestManager()

	nextCalls := 0
	handler := middleware.RateLimit(limiter, "regenerate-plan", 2, metricsManager)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			nextCalls++
		}),
	)

	newReq := func() *http.Request {
		req := httptest.NewRequest("POST", "/api/users/regenerate-plan", nil)
		ctx := auth.WithIdentity(req.Context(), &auth.Identity{UserID: "user-1"})
		return req.WithContext(ctx)
	}

	gomock.InOrder(
		limiter.EXPECT().
			Allow(gomock.Any(), "regenerate-plan||user-1", redis_rate.PerMinute(2)).
			Return(&redis_rate.Result{Allowed: 1, Remaining: 1}, nil),
		limiter.EXPECT().
			Allow(gomock.Any(), "regenerate-plan||user-1", redis_rate.PerMinute(2)).
			Return(&redis_rate.Result{Allowed: 0, RetryAfter: 1500 * time.Millisecond}, nil),
	)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, newReq())
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, nextCalls)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, newReq())
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "2", rr.Header().Get("Retry-After"))
	assert.Contains(t, rr.Body.String(), "retry after 2 seconds")
	assert.Equal(t, 1, nextCalls)
	assert.Equal(t, float64(1), testutil.ToFloat64(metricsManager.CounterRateLimitedRequests))
}

func TestRateLimit_LimiterError(t *testing.T) {
	ctrl := gomock.NewController(t)
	limiter := NewMockRequestRateLimiter(ctrl)

	limiter.EXPECT().
		Allow(gomock.Any(), "regenerate-plan", gomock.Any()).
		DoAndReturn(func(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error) {
			return nil, errors.New("redis down")
		})

	handler := middleware.RateLimit(limiter, "regenerate-plan", 2, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next must not be called")
		}),
	)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/api/users/regenerate-plan", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
