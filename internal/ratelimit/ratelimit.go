// Package ratelimit provides echo RateLimiter stores: a Redis fixed-window
// counter shared by every instance, or echo's in-memory store.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/Skotchmaster/shopfront/internal/logging"
)

const (
	keyPrefix = "ratelimit:"

	MsgTooMany = "Too many requests from this IP, please try again later."
)

// Counter is the part of a redis client the store needs.
type Counter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

type RedisStore struct {
	Client  Counter
	Limit   int
	Window  time.Duration
	Timeout time.Duration

	now func() time.Time
}

func NewRedisStore(client Counter, limit int, window time.Duration) *RedisStore {
	return &RedisStore{Client: client, Limit: limit, Window: window, Timeout: time.Second, now: time.Now}
}

// Allow counts identifier in the current window. The key expires with the
// window so idle clients cost nothing.
func (s *RedisStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()

	window := s.now().UnixNano() / int64(s.Window)
	key := fmt.Sprintf("%s%s:%d", keyPrefix, identifier, window)

	n, err := s.Client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("incr %s: %w", key, err)
	}
	if n == 1 {
		if err := s.Client.Expire(ctx, key, s.Window).Err(); err != nil {
			return false, fmt.Errorf("expire %s: %w", key, err)
		}
	}
	return n <= int64(s.Limit), nil
}

// NewMemoryStore spreads limit evenly over window with a full-window burst.
func NewMemoryStore(limit int, window time.Duration) *middleware.RateLimiterMemoryStore {
	return middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(limit) / window.Seconds()),
		Burst:     limit,
		ExpiresIn: window,
	})
}

// FailOpen lets requests through when the wrapped store errors, so a Redis
// outage does not take the site down.
func FailOpen(store middleware.RateLimiterStore, l *slog.Logger) middleware.RateLimiterStore {
	return failOpen{store: store, l: l}
}

type failOpen struct {
	store middleware.RateLimiterStore
	l     *slog.Logger
}

func (f failOpen) Allow(identifier string) (bool, error) {
	ok, err := f.store.Allow(identifier)
	if err != nil {
		f.l.Warn("ratelimit_store_error", "identifier", identifier, "error", err)
		return true, nil
	}
	return ok, nil
}

// Middleware limits every request except those skipped.
func Middleware(store middleware.RateLimiterStore, skipper middleware.Skipper) echo.MiddlewareFunc {
	if skipper == nil {
		skipper = middleware.DefaultSkipper
	}
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: skipper,
		Store:   store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "cannot identify client")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			l := logging.FromContext(c.Request().Context())
			if err != nil {
				l.Error("ratelimit_store_error", "identifier", identifier, "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "rate limiter unavailable")
			}
			l.Warn("ratelimit_denied", "status", 429, "identifier", identifier)
			return echo.NewHTTPError(http.StatusTooManyRequests, MsgTooMany)
		},
	})
}
