package webserver

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiterWindow(t *testing.T) {
	rl := NewRateLimiter(3, 50*time.Millisecond)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.allow("k"))
	}
	assert.False(t, rl.allow("k"))

	// independent keys do not share a window
	assert.True(t, rl.allow("other"))

	time.Sleep(60 * time.Millisecond)
	assert.True(t, rl.allow("k"))
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/ping", RateLimitMiddleware(NewRateLimiter(2, time.Minute)), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", "", "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", "", "").Code)

	w := do(r, http.MethodGet, "/ping", "", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate limit exceeded")
}
