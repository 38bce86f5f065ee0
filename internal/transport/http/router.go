package httpserver

import (
	"context"
	"io/fs"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/shopfront/internal/logging"
	"github.com/Skotchmaster/shopfront/internal/middleware/auth"
)

type Deps struct {
	ProductHandler *ProductHTTP
	AuthHandler    *AuthHTTP
	UserHandler    *UserHTTP
	PageHandler    *PageHTTP
	JWTSecret      []byte

	// SearchEnabled registers GET /api/products/search.
	SearchEnabled bool
	// UploadDir is served under UploadPrefix when images are stored locally.
	UploadDir    string
	UploadPrefix string
	PublicDir    string

	// Assets is the built-in web root; files in PublicDir take precedence.
	Assets fs.FS
	Ready  func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				logging.FromContext(c.Request().Context()).Error("ready_check_failed", "error", err)
				return c.NoContent(http.StatusServiceUnavailable)
			}
		}
		return c.NoContent(http.StatusOK)
	})

	adminMW := auth.Admin(d.JWTSecret)

	api := e.Group("/api")
	api.POST("/auth/login", d.AuthHandler.Login)

	products := api.Group("/products")
	products.GET("/public", d.ProductHandler.List)
	products.GET("/public/:id", d.ProductHandler.Get)
	if d.SearchEnabled {
		products.GET("/search", d.ProductHandler.Search)
	}

	products.GET("", d.ProductHandler.List, adminMW...)
	products.POST("", d.ProductHandler.Create, adminMW...)
	products.PUT("/:id", d.ProductHandler.Update, adminMW...)
	products.DELETE("/:id", d.ProductHandler.Delete, adminMW...)

	api.POST("/users", d.UserHandler.Register)
	api.GET("/users", d.UserHandler.List, adminMW...)

	api.Any("", apiNotFound)
	api.RouteNotFound("/*", apiNotFound)

	if d.UploadDir != "" {
		e.Static(strings.TrimSuffix(d.UploadPrefix, "/"), d.UploadDir)
	}

	e.GET("/admin-login", d.PageHandler.AdminLogin)
	e.GET("/admin", d.PageHandler.AdminShell)
	e.GET("/admin/products", d.PageHandler.AdminProducts, adminMW...)
	e.GET("/", d.PageHandler.Storefront)
	e.GET("/*", d.PageHandler.Storefront)

	if d.PublicDir != "" {
		e.Use(middleware.StaticWithConfig(middleware.StaticConfig{
			Root:    d.PublicDir,
			Skipper: skipStatic,
		}))
	}
	if d.Assets != nil {
		e.Use(middleware.StaticWithConfig(middleware.StaticConfig{
			Filesystem: http.FS(d.Assets),
			Skipper:    skipStatic,
		}))
	}
}

func apiNotFound(echo.Context) error {
	return echo.NewHTTPError(http.StatusNotFound, msgRouteNotFound)
}

// skipStatic leaves API, admin and page routes to the router.
func skipStatic(c echo.Context) bool {
	p := c.Request().URL.Path
	switch p {
	case "/", "/api", "/admin", "/admin-login":
		return true
	}
	for _, prefix := range []string{"/api/", "/health/", "/admin/"} {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}
