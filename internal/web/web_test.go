package web

import (
	"bytes"
	"io/fs"
	"regexp"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shopfront/internal/imageurl"
	"github.com/Skotchmaster/shopfront/internal/models"
)

func strp(s string) *string { return &s }

func sampleProducts() []models.Product {
	return []models.Product{
		{ID: 1, Name: "Tea", Price: decimal.RequireFromString("4.5"), ImageURL: strp("tea.png")},
		{ID: 2, Name: "Mug", Price: decimal.RequireFromString("12"), ImageURL: strp("https://cdn.example/mug.png"), Description: strp("Big mug")},
		{ID: 3, Name: "<b>Soap</b>", Price: decimal.Zero},
		{ID: 4, Name: "Dot", Price: decimal.Zero, ImageURL: strp("data:image/png;base64,AAAA")},
		{ID: 5, Name: "Jar", Price: decimal.Zero, ImageURL: strp("/uploads/jar.png")},
	}
}

func render(t *testing.T, name string, data any) string {
	t.Helper()
	r, err := NewRenderer(imageurl.New(imageurl.DefaultPrefix))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, name, data, nil))
	return buf.String()
}

func TestStorefront(t *testing.T) {
	out := render(t, PageStorefront, StorefrontView{Title: "Shop", Products: sampleProducts()})

	assert.Contains(t, out, `src="/uploads/tea.png"`)
	assert.Contains(t, out, `src="https://cdn.example/mug.png"`)
	assert.Contains(t, out, `src="data:image/png;base64,AAAA"`)
	assert.Contains(t, out, `src="/uploads/jar.png"`)
	assert.NotContains(t, out, "/uploads//uploads/")
	assert.Contains(t, out, "No Image")
	assert.Contains(t, out, "₹4.50")
	assert.Contains(t, out, "Big mug")
	assert.Contains(t, out, defaultDescription)
	assert.Contains(t, out, "&lt;b&gt;Soap&lt;/b&gt;")
	assert.NotContains(t, out, "<b>Soap</b>")
}

func TestStorefront_Empty(t *testing.T) {
	out := render(t, PageStorefront, StorefrontView{Title: "Shop"})
	assert.Contains(t, out, "No products yet.")
}

func TestAdminProducts(t *testing.T) {
	out := render(t, PageAdminProducts, AdminProductsView{Products: sampleProducts()})

	assert.Contains(t, out, `data-count="5"`)
	assert.Contains(t, out, `src="/uploads/tea.png"`)
	assert.Contains(t, out, `src="https://cdn.example/mug.png"`)
	assert.Contains(t, out, `data-product-id="3"`)
	assert.Contains(t, out, "₹12.00")
	assert.Contains(t, out, "<td>-</td>")
}

func TestCustomPrefix(t *testing.T) {
	r, err := NewRenderer(imageurl.New("media"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, PageAdminProducts, AdminProductsView{Products: sampleProducts()[:1]}, nil))
	assert.Contains(t, buf.String(), `src="/media/tea.png"`)
}

func TestShellPages(t *testing.T) {
	assert.Contains(t, render(t, PageAdminLogin, PageView{Title: "Admin Login"}), `id="adminLoginForm"`)
	assert.Contains(t, render(t, PageAdmin, PageView{Title: "Dashboard"}), `data-src="/admin/products"`)
}

var assetRefRe = regexp.MustCompile(`(?:src|href)="/([a-z-]+\.(?:js|css))"`)

func TestAssets_CoverTemplateLinks(t *testing.T) {
	pages, err := fs.Glob(templatesFS, "templates/*.html")
	require.NoError(t, err)

	seen := 0
	for _, page := range pages {
		body, err := fs.ReadFile(templatesFS, page)
		require.NoError(t, err)
		for _, m := range assetRefRe.FindAllStringSubmatch(string(body), -1) {
			_, err := fs.Stat(Assets(), m[1])
			assert.NoError(t, err, "%s links %s", page, m[1])
			seen++
		}
	}
	assert.GreaterOrEqual(t, seen, 5)
}
