package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shopfront/internal/logging"
	"github.com/Skotchmaster/shopfront/internal/service"
	"github.com/Skotchmaster/shopfront/internal/web"
)

type PageHTTP struct {
	Products  *service.ProductService
	SiteTitle string
}

func (h *PageHTTP) Storefront(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "page.storefront")

	items, err := h.Products.List(ctx)
	if err != nil {
		l.Error("storefront_error", "status", 500, "reason", "cannot load products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error").SetInternal(err)
	}
	return c.Render(http.StatusOK, web.PageStorefront, web.StorefrontView{Title: h.SiteTitle, Products: items})
}

func (h *PageHTTP) AdminLogin(c echo.Context) error {
	return c.Render(http.StatusOK, web.PageAdminLogin, web.PageView{Title: "Admin Login"})
}

func (h *PageHTTP) AdminShell(c echo.Context) error {
	return c.Render(http.StatusOK, web.PageAdmin, web.PageView{Title: "Admin Dashboard"})
}

func (h *PageHTTP) AdminProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "page.admin_products")

	items, err := h.Products.List(ctx)
	if err != nil {
		l.Error("admin_products_error", "status", 500, "reason", "cannot load products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error").SetInternal(err)
	}
	return c.Render(http.StatusOK, web.PageAdminProducts, web.AdminProductsView{Products: items})
}
