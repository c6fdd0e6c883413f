package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func rateLimitedRouter(rl *RateLimiter) *gin.Engine {
	router := gin.New()
	router.Use(rl.Middleware())
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func doRateLimited(router *gin.Engine, sessionCookie string) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", http.NoBody)
	if sessionCookie != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sessionCookie})
	}
	router.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiter_SessionsHaveIndependentBuckets(t *testing.T) {
	router := rateLimitedRouter(NewRateLimiter(1, 2))

	assert.Equal(t, http.StatusOK, doRateLimited(router, "sess-a"))
	assert.Equal(t, http.StatusOK, doRateLimited(router, "sess-a"))
	assert.Equal(t, http.StatusTooManyRequests, doRateLimited(router, "sess-a"))

	// Another session from the same client IP still has a full bucket.
	assert.Equal(t, http.StatusOK, doRateLimited(router, "sess-b"))
}

func TestRateLimiter_FallsBackToClientIP(t *testing.T) {
	router := rateLimitedRouter(NewRateLimiter(1, 1))

	assert.Equal(t, http.StatusOK, doRateLimited(router, ""))
	assert.Equal(t, http.StatusTooManyRequests, doRateLimited(router, ""))
}
