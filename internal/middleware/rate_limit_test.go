// internal/middleware/rate_limit_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/insurance-solutions/vims-backend/internal/config"
)

func limitedRouter(limiter *IPRateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(limiter.Handler())
	r.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestIPRateLimiterEnforcesBurst(t *testing.T) {
	r := limitedRouter(NewIPRateLimiter(time.Minute, 2))

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.0.0.1:5000"
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestIPRateLimiterIsolatesClients(t *testing.T) {
	r := limitedRouter(NewIPRateLimiter(time.Minute, 1))

	first := httptest.NewRecorder()
	reqA, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	reqA.RemoteAddr = "10.0.0.1:5000"
	r.ServeHTTP(first, reqA)
	assert.Equal(t, http.StatusOK, first.Code)

	blocked := httptest.NewRecorder()
	reqA2, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	reqA2.RemoteAddr = "10.0.0.1:5001"
	r.ServeHTTP(blocked, reqA2)
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)

	// A different address gets its own bucket
	other := httptest.NewRecorder()
	reqB, _ := http.NewRequest(http.MethodGet, "/ping", nil)
	reqB.RemoteAddr = "10.0.0.2:5000"
	r.ServeHTTP(other, reqB)
	assert.Equal(t, http.StatusOK, other.Code)
}

func TestNewRateLimitersUsesConfiguredBursts(t *testing.T) {
	limiters := NewRateLimiters(config.RateLimitConfig{
		GeneralBurst:    10,
		AuthPerMinute:   5,
		UploadPerMinute: 10,
	})

	assert.Equal(t, 10, limiters.General.burst)
	assert.Equal(t, 5, limiters.Auth.burst)
	assert.Equal(t, 10, limiters.Upload.burst)
}
