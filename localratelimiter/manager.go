package localratelimiter

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MamunCrafts/ai-simplified-by-mamun/internal/config"
	"github.com/MamunCrafts/ai-simplified-by-mamun/internal/utils"
)

const (
	DefaultLimit  = 20
	DefaultWindow = time.Minute

	forwardedForHeader = "X-Forwarded-For"
	realIPHeader       = "X-Real-IP"
	unknownIdentity    = "unknown"
)

// ErrRateLimitExceeded is returned once an identity used up its window.
var ErrRateLimitExceeded = errors.New("rate limit exceeded")

// RateLimiter counts calls per identity in fixed windows. State lives only in
// this process; replicas do not share counters.
type RateLimiter struct {
	windows   map[string]*windowEntry
	mutex     sync.Mutex
	limit     int
	window    time.Duration
	now       func() time.Time
	done      chan struct{}
	closeOnce sync.Once
}

type windowEntry struct {
	count   int
	resetAt time.Time
}

// NewRateLimiter creates a new RateLimiter and starts its cleanup loop.
func NewRateLimiter(rateLimitConfig config.RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		windows: make(map[string]*windowEntry),
		limit:   rateLimitConfig.Limit,
		window:  rateLimitConfig.Window,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	if rl.limit <= 0 {
		rl.limit = DefaultLimit
	}
	if rl.window <= 0 {
		rl.window = DefaultWindow
	}
	go rl.cleanupExpiredWindows()
	return rl
}

// Allow records one call for identity, or returns ErrRateLimitExceeded when the
// current window is full. Check and increment happen under one lock.
func (rl *RateLimiter) Allow(identity string) error {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	entry, exists := rl.windows[identity]
	if !exists || now.After(entry.resetAt) {
		rl.windows[identity] = &windowEntry{count: 1, resetAt: now.Add(rl.window)}
		return nil
	}

	if entry.count >= rl.limit {
		return ErrRateLimitExceeded
	}
	entry.count++
	return nil
}

// Close stops the cleanup loop.
func (rl *RateLimiter) Close() {
	rl.closeOnce.Do(func() { close(rl.done) })
}

// RateLimiterMiddleware returns a gin.HandlerFunc that enforces rate limiting
func (rl *RateLimiter) RateLimiterMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := rl.Allow(ClientIdentity(c)); err != nil {
			utils.ProcessRateLimited(c)
			return
		}
		c.Next()
	}
}

// ClientIdentity derives the caller identity from proxy headers, then the peer address.
func ClientIdentity(c *gin.Context) string {
	if forwarded := c.GetHeader(forwardedForHeader); forwarded != "" {
		if first := strings.TrimSpace(strings.Split(forwarded, ",")[0]); first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(c.GetHeader(realIPHeader)); realIP != "" {
		return realIP
	}
	if remoteIP := c.RemoteIP(); remoteIP != "" {
		return remoteIP
	}
	return unknownIdentity
}

func (rl *RateLimiter) cleanupExpiredWindows() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.purgeExpired()
		}
	}
}

func (rl *RateLimiter) purgeExpired() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	now := rl.now()
	for key, entry := range rl.windows {
		if now.After(entry.resetAt) {
			delete(rl.windows, key)
		}
	}
}
