package search

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shopfront/internal/models"
)

type fakeTransport struct {
	mu       sync.Mutex
	requests []*http.Request
	bodies   []string
	status   int
	response string
}

func (f *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var body string
	if req.Body != nil {
		b, _ := io.ReadAll(req.Body)
		body = string(b)
	}
	f.requests = append(f.requests, req)
	f.bodies = append(f.bodies, body)

	status := f.status
	if status == 0 {
		status = http.StatusOK
	}
	h := http.Header{}
	h.Set("X-Elastic-Product", "Elasticsearch")
	h.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: status,
		Header:     h,
		Body:       io.NopCloser(strings.NewReader(f.response)),
		Request:    req,
	}, nil
}

func newTestClient(t *testing.T, tr *fakeTransport) *Client {
	t.Helper()
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{"http://es.test:9200"},
		Transport: tr,
	})
	require.NoError(t, err)
	return New(es, "products")
}

func TestClient_IndexProduct(t *testing.T) {
	tr := &fakeTransport{response: `{"result":"created"}`}
	c := newTestClient(t, tr)

	p := &models.Product{ID: 5, Name: "Tea", Price: decimal.RequireFromString("4.5")}
	require.NoError(t, c.IndexProduct(context.Background(), p))

	last := tr.requests[len(tr.requests)-1]
	assert.Equal(t, http.MethodPut, last.Method)
	assert.Equal(t, "/products/_doc/5", last.URL.Path)
	assert.Contains(t, tr.bodies[len(tr.bodies)-1], `"name":"Tea"`)
}

func TestClient_DeleteProduct_NotFoundIsFine(t *testing.T) {
	tr := &fakeTransport{status: http.StatusNotFound, response: `{"result":"not_found"}`}
	c := newTestClient(t, tr)

	require.NoError(t, c.DeleteProduct(context.Background(), 9))
	last := tr.requests[len(tr.requests)-1]
	assert.Equal(t, http.MethodDelete, last.Method)
	assert.Equal(t, "/products/_doc/9", last.URL.Path)
}

func TestClient_DeleteProduct_ServerError(t *testing.T) {
	tr := &fakeTransport{status: http.StatusBadRequest, response: `{}`}
	c := newTestClient(t, tr)
	assert.Error(t, c.DeleteProduct(context.Background(), 9))
}

func TestClient_Search(t *testing.T) {
	tr := &fakeTransport{response: `{
		"hits": {
			"total": {"value": 1},
			"hits": [{"_source": {"id": 2, "name": "Green tea", "price": "4.50", "description": null, "image_url": "tea.png"}}]
		}
	}`}
	c := newTestClient(t, tr)

	total, items, err := c.Search(context.Background(), "tea", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Green tea", items[0].Name)
	assert.True(t, items[0].Price.Equal(decimal.RequireFromString("4.5")))

	last := tr.requests[len(tr.requests)-1]
	assert.Equal(t, "/products/_search", last.URL.Path)
	assert.Contains(t, tr.bodies[len(tr.bodies)-1], `"multi_match"`)
}
