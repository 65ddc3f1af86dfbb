package middleware

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	awspkg "github.com/yashrajoria/course-store/pkg/aws"
	apperrors "github.com/yashrajoria/course-store/services/common/errors"
)

// SecurityHeaders adds security-related headers to all responses
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		c.Header("Content-Security-Policy", "default-src 'self'; frame-ancestors 'none'")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Cross-Origin-Opener-Policy", "same-origin")
		c.Header("Cross-Origin-Resource-Policy", "same-origin")
		c.Header("X-DNS-Prefetch-Control", "off")
		c.Header("X-Permitted-Cross-Domain-Policies", "none")
		c.Next()
	}
}

type limiterEntry struct {
	limiter     *rate.Limiter
	windowStart time.Time
}

// RateLimiter admits at most max attempts per client key in a fixed window
// opened by the key's first attempt. Once the window is spent every attempt is
// refused until it elapses; refused attempts do not count.
type RateLimiter struct {
	clients map[string]*limiterEntry
	mu      sync.Mutex
	window  time.Duration
	max     int
	now     func() time.Time
}

func NewWindowLimiter(window time.Duration, max int) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*limiterEntry),
		window:  window,
		max:     max,
		now:     time.Now,
	}
}

// Allow records an attempt for key. When refused it also returns the time left
// until the key's window reopens.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	entry, exists := rl.clients[key]
	if !exists || !now.Before(entry.windowStart.Add(rl.window)) {
		// a zero-rate limiter never refills: its burst is what is left of the window
		entry = &limiterEntry{limiter: rate.NewLimiter(0, rl.max), windowStart: now}
		rl.clients[key] = entry
	}

	if entry.limiter.AllowN(now, 1) {
		return true, 0
	}
	return false, entry.windowStart.Add(rl.window).Sub(now)
}

// Sweep periodically evicts keys whose window has elapsed until ctx is cancelled.
func (rl *RateLimiter) Sweep(ctx context.Context) {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for key, e := range rl.clients {
		if !now.Before(e.windowStart.Add(rl.window)) {
			delete(rl.clients, key)
		}
	}
}

func (rl *RateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// RateLimitMiddleware rejects clients that spent their window with 429 and a
// Retry-After header. Clients are keyed by gin's ClientIP, so the engine's
// trusted proxies decide whether X-Forwarded-For is honoured. metrics may be nil.
func RateLimitMiddleware(rl *RateLimiter, metrics awspkg.MetricsRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, retryAfter := rl.Allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			if metrics != nil {
				_ = metrics.RecordCount(c.Request.Context(), awspkg.MetricRateLimitTriggered, map[string]string{"Path": c.FullPath()})
			}
			c.AbortWithStatusJSON(apperrors.ErrRateLimited.Code, apperrors.ErrRateLimited)
			return
		}
		c.Next()
	}
}

// CORS accepts cross-origin requests only from the allow-list; credentials are
// only ever granted to those origins. Other origins get ErrOriginNotAllowed.
// Requests without an Origin, or from the server's own host, pass untouched.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o = normalizeOrigin(o); o != "" {
			allowed[o] = struct{}{}
		}
	}
	isAllowed := func(origin string) bool {
		_, ok := allowed[normalizeOrigin(origin)]
		return ok
	}

	handler := cors.New(cors.Config{
		AllowOriginFunc:  isAllowed,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && !isAllowed(origin) && !sameHost(origin, c.Request.Host) {
			c.AbortWithStatusJSON(apperrors.ErrOriginNotAllowed.Code, apperrors.ErrOriginNotAllowed)
			return
		}
		handler(c)
	}
}

func sameHost(origin, host string) bool {
	return origin == "http://"+host || origin == "https://"+host
}

func normalizeOrigin(origin string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(origin)), "/")
}

// BodyLimit caps the request body at n bytes. Declared oversize bodies are rejected
// up front; chunked ones fail on read with *http.MaxBytesError (see IsBodyTooLarge).
func BodyLimit(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > n {
			c.AbortWithStatusJSON(apperrors.ErrPayloadTooLarge.Code, apperrors.ErrPayloadTooLarge)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}

// IsBodyTooLarge reports whether err came from reading past a BodyLimit.
func IsBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
