package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/achrafidrissi/urc/internal/metrics"
)

// RateLimit defines limits for an endpoint pattern.
type RateLimit struct {
	Requests int
	Window   time.Duration
	KeyFunc  func(r *http.Request) string
}

// RateLimiter implements fixed-window rate limiting backed by Redis. With no
// Redis client it becomes a pass-through, which is fine for development.
type RateLimiter struct {
	client *redis.Client
	logger zerolog.Logger
	limits map[string]RateLimit
}

// NewPublicRateLimiter limits the unauthenticated surface by client IP.
func NewPublicRateLimiter(client *redis.Client, logger zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		client: client,
		logger: logger,
		limits: map[string]RateLimit{
			"POST /register": {10, time.Hour, ipKey},
			"POST /login":    {20, time.Minute, ipKey},
		},
	}
}

// NewPrincipalRateLimiter limits authenticated endpoints per principal. It
// must be mounted after RequireAuth; until the principal is resolved the key
// falls back to the client IP, which would collapse everyone behind one NAT
// into a single bucket.
func NewPrincipalRateLimiter(client *redis.Client, logger zerolog.Logger) *RateLimiter {
	return &RateLimiter{
		client: client,
		logger: logger,
		limits: map[string]RateLimit{
			"GET /users":           {60, time.Minute, principalKey},
			"POST /message":        {60, time.Minute, principalKey},
			"GET /messages":        {120, time.Minute, principalKey},
			"POST /rooms":          {10, time.Hour, principalKey},
			"GET /rooms":           {60, time.Minute, principalKey},
			"POST /rooms/messages": {60, time.Minute, principalKey},
			"GET /rooms/messages":  {120, time.Minute, principalKey},
		},
	}
}

// Middleware enforces the configured limits.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.client == nil {
			next.ServeHTTP(w, r)
			return
		}

		limit, pattern, ok := rl.match(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		key := fmt.Sprintf("ratelimit:%s:%s", pattern, limit.KeyFunc(r))

		pipe := rl.client.Pipeline()
		count := pipe.Incr(r.Context(), key)
		pipe.Expire(r.Context(), key, limit.Window)
		if _, err := pipe.Exec(r.Context()); err != nil {
			// Limiter failure must not take the API down with it.
			rl.logger.Warn().Err(err).Msg("rate limiter unavailable")
			next.ServeHTTP(w, r)
			return
		}

		if count.Val() > int64(limit.Requests) {
			metrics.RateLimitHits.WithLabelValues(pattern).Inc()
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(limit.Window.Seconds())))
			jsonError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) match(r *http.Request) (RateLimit, string, bool) {
	pattern := r.Method + " " + normalizeLimitPath(r.URL.Path)
	limit, ok := rl.limits[pattern]
	return limit, pattern, ok
}

func normalizeLimitPath(path string) string {
	if strings.HasPrefix(path, "/rooms/") && strings.HasSuffix(path, "/messages") {
		return "/rooms/messages"
	}
	return path
}

func ipKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func principalKey(r *http.Request) string {
	if p := GetPrincipalFromContext(r.Context()); p != nil {
		return p.ID
	}
	return ipKey(r)
}
