// Package web renders the server-side pages. Every product image goes through
// the shared imageurl.Resolver.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/shopfront/internal/imageurl"
	"github.com/Skotchmaster/shopfront/internal/models"
)

const (
	PageStorefront    = "storefront.html"
	PageAdminLogin    = "admin_login.html"
	PageAdmin         = "admin.html"
	PageAdminProducts = "admin_products.html"

	defaultDescription = "Discover the perfect balance of nature and wellness with our carefully crafted products."
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// Assets holds the scripts and stylesheets the pages link to, rooted so that
// "admin.js" is served as /admin.js.
func Assets() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

type StorefrontView struct {
	Title    string
	Products []models.Product
}

type AdminProductsView struct {
	Products []models.Product
}

type PageView struct {
	Title string
}

type Renderer struct {
	templates *template.Template
}

func NewRenderer(res imageurl.Resolver) (*Renderer, error) {
	funcs := template.FuncMap{
		"imageSrc": func(raw *string) template.URL {
			if raw == nil {
				return ""
			}
			src, ok := res.Resolve(*raw)
			if !ok {
				return ""
			}
			// Resolve only passes through http(s), protocol-relative, data: and
			// uploads paths; anything else gets the uploads prefix.
			return template.URL(src)
		},
		"price": func(d decimal.Decimal) string {
			return "₹" + d.StringFixed(2)
		},
		"describe": func(desc *string, fallback string) string {
			if desc == nil || *desc == "" {
				return fallback
			}
			return *desc
		},
		"defaultDescription": func() string { return defaultDescription },
	}

	t, err := template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{templates: t}, nil
}

func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}
