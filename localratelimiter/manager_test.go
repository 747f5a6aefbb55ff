package localratelimiter

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MamunCrafts/ai-simplified-by-mamun/internal/config"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(t *testing.T, limit int, window time.Duration) (*RateLimiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(config.RateLimitConfig{Limit: limit, Window: window})
	rl.now = clock.Now
	t.Cleanup(rl.Close)
	return rl, clock
}

func TestAllowFixedWindow(t *testing.T) {
	rl, clock := newTestLimiter(t, DefaultLimit, DefaultWindow)

	for i := 0; i < DefaultLimit; i++ {
		require.NoError(t, rl.Allow("203.0.113.7"), "call %d", i+1)
	}
	assert.ErrorIs(t, rl.Allow("203.0.113.7"), ErrRateLimitExceeded)
	assert.NoError(t, rl.Allow("198.51.100.1"), "identities are counted separately")

	clock.Advance(DefaultWindow)
	assert.ErrorIs(t, rl.Allow("203.0.113.7"), ErrRateLimitExceeded, "window is still open at exactly resetAt")

	clock.Advance(time.Millisecond)
	assert.NoError(t, rl.Allow("203.0.113.7"))
}

func TestNewRateLimiterDefaults(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{})
	defer rl.Close()

	assert.Equal(t, DefaultLimit, rl.limit)
	assert.Equal(t, DefaultWindow, rl.window)
}

func TestAllowIsSafeForConcurrentUse(t *testing.T) {
	rl, _ := newTestLimiter(t, 50, time.Minute)

	var allowed int32
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.Allow("shared") == nil {
				atomic.AddInt32(&allowed, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(50), atomic.LoadInt32(&allowed))
}

func TestPurgeExpired(t *testing.T) {
	rl, clock := newTestLimiter(t, 1, time.Minute)
	require.NoError(t, rl.Allow("a"))

	clock.Advance(2 * time.Minute)
	rl.purgeExpired()

	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	assert.Empty(t, rl.windows)
}

func TestCloseIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(config.RateLimitConfig{})
	rl.Close()
	assert.NotPanics(t, rl.Close)
}

func TestRateLimiterMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl, _ := newTestLimiter(t, 2, time.Minute)

	router := gin.New()
	router.Use(rl.RateLimiterMiddleware())
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
		if w.Code == http.StatusTooManyRequests {
			assert.JSONEq(t, `{"error":"Rate limit exceeded. Please try again in a minute."}`, w.Body.String())
		}
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestClientIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{name: "first forwarded entry", headers: map[string]string{"X-Forwarded-For": " 203.0.113.7 , 10.0.0.1"}, remoteAddr: "10.0.0.2:4000", want: "203.0.113.7"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": "198.51.100.4"}, remoteAddr: "10.0.0.2:4000", want: "198.51.100.4"},
		{name: "remote address", remoteAddr: "192.0.2.10:5555", want: "192.0.2.10"},
		{name: "unknown", remoteAddr: "", want: "unknown"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			req := httptest.NewRequest(http.MethodPost, "/api/refine", nil)
			req.RemoteAddr = tc.remoteAddr
			for key, value := range tc.headers {
				req.Header.Set(key, value)
			}
			c.Request = req

			assert.Equal(t, tc.want, ClientIdentity(c))
		})
	}
}
