package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/gaitlab/gait-service/internal/ratelimit"
	"github.com/gaitlab/gait-service/internal/utils/response"
	"github.com/go-redis/redis/v8"
)

const (
	ActionAuth   = "auth"
	ActionUpload = "upload"

	// Keyed by client address; these run before any workspace exists.
	ActionOpenSession  = "open_session"
	ActionCreateDoctor = "create_doctor"
)

type RateLimitConfig struct {
	limiters map[string]*ratelimit.TokenBucket
	byClient map[string]bool
}

// NewRateLimitConfig configures the per-workspace limits. Without a Redis
// client no action is limited.
func NewRateLimitConfig(redisClient redis.Cmdable) *RateLimitConfig {
	config := &RateLimitConfig{
		limiters: make(map[string]*ratelimit.TokenBucket),
		byClient: map[string]bool{ActionOpenSession: true, ActionCreateDoctor: true},
	}
	if redisClient == nil {
		return config
	}

	// POST /auth: 20/min per workspace
	config.limiters[ActionAuth] = ratelimit.NewTokenBucket(redisClient, 20, 20)

	// POST /videos: 10/min per workspace
	config.limiters[ActionUpload] = ratelimit.NewTokenBucket(redisClient, 10, 10)

	// POST /session: 10/min per client address
	config.limiters[ActionOpenSession] = ratelimit.NewTokenBucket(redisClient, 10, 10)

	// POST /functions/create-doctor: 5/min per client address
	config.limiters[ActionCreateDoctor] = ratelimit.NewTokenBucket(redisClient, 5, 5)

	return config
}

func (rlc *RateLimitConfig) RateLimitMiddleware(action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Get the appropriate rate limiter
			limiter, exists := rlc.limiters[action]
			if !exists {
				// If no rate limiter configured for this action, allow the request
				next.ServeHTTP(w, r)
				return
			}

			subject, ok := rlc.subject(r, action)
			if !ok {
				response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(
					errors.New("workspace not authenticated")))
				return
			}

			allowed, remaining, err := limiter.Allow(r.Context(), subject, action)
			if err != nil {
				slog.Error("rate limit check failed", slog.String("action", action), slog.String("error", err.Error()))
				response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(
					fmt.Errorf("rate limit check failed: %w", err)))
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(limiter.Capacity(), 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.Itoa(int(limiter.Window().Seconds())))

			if !allowed {
				response.WriteJSON(w, http.StatusTooManyRequests, response.GeneralError(
					errors.New("rate limit exceeded")))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// subject picks the bucket key: the client address for pre-session actions,
// the workspace id (set by the auth middleware) otherwise.
func (rlc *RateLimitConfig) subject(r *http.Request, action string) (string, bool) {
	if rlc.byClient[action] {
		return "addr:" + ClientAddress(r), true
	}
	return GetWorkspaceIDFromContext(r.Context())
}

// ClientAddress returns the host part of the request's remote address.
func ClientAddress(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimitedHandler wraps a handler with rate limiting for a specific action
func (rlc *RateLimitConfig) RateLimitedHandler(action string, handler http.HandlerFunc) http.Handler {
	return rlc.RateLimitMiddleware(action)(handler)
}
