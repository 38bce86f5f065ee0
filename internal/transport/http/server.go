package httpserver

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	loggingmw "github.com/Skotchmaster/shopfront/internal/middleware/logging"
	"github.com/Skotchmaster/shopfront/internal/ratelimit"
)

const contentSecurityPolicy = "default-src 'self'; " +
	"style-src 'self' 'unsafe-inline' https://fonts.googleapis.com; " +
	"font-src 'self' https://fonts.gstatic.com; " +
	"img-src 'self' data: https:; " +
	"script-src 'self'; " +
	"connect-src 'self'"

type Options struct {
	Production  bool
	CORSOrigins []string
	BodyLimit   string
	// RateLimiter is nil to disable rate limiting.
	RateLimiter middleware.RateLimiterStore
	Renderer    echo.Renderer
}

func NewEcho(opts Options, logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = !opts.Production
	e.HTTPErrorHandler = ErrorHandler(opts.Production)
	e.Renderer = opts.Renderer

	e.Pre(middleware.RemoveTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		Skipper: func(c echo.Context) bool { return c.Request().URL.Path == "/" },
	}))
	e.Use(
		middleware.Recover(),
		middleware.RequestID(),
		loggingmw.RequestLogger(logger),
		middleware.SecureWithConfig(middleware.SecureConfig{
			XSSProtection:         "0",
			ContentTypeNosniff:    "nosniff",
			XFrameOptions:         "SAMEORIGIN",
			HSTSMaxAge:            15552000,
			ContentSecurityPolicy: contentSecurityPolicy,
			ReferrerPolicy:        "no-referrer",
		}),
		middleware.CORSWithConfig(corsConfig(opts)),
	)
	if opts.RateLimiter != nil {
		e.Use(ratelimit.Middleware(opts.RateLimiter, func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/health/")
		}))
	}

	limit := opts.BodyLimit
	if limit == "" {
		limit = "6M"
	}
	e.Use(middleware.Gzip(), middleware.BodyLimit(limit))

	return e
}

func corsConfig(opts Options) middleware.CORSConfig {
	cfg := middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}
	if opts.Production {
		cfg.AllowOrigins = opts.CORSOrigins
		return cfg
	}
	cfg.AllowOrigins = []string{"*"}
	cfg.UnsafeWildcardOriginWithAllowCredentials = true
	return cfg
}
