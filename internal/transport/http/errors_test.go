package httpserver

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/Skotchmaster/shopfront/internal/service"
	"github.com/Skotchmaster/shopfront/internal/testutil"
)

func runErrorHandler(t *testing.T, production bool, method string, err error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(method, "/x", nil), rec)
	ErrorHandler(production)(err, c)
	return rec
}

func TestErrorHandler(t *testing.T) {
	cause := errors.New("pq: relation \"products\" does not exist")

	tests := []struct {
		name       string
		production bool
		err        error
		code       int
		msg        string
		field      string
	}{
		{"plain error in production", true, cause, 500, "Internal server error", ""},
		{"plain error in development", false, cause, 500, cause.Error(), ""},
		{"wrapped 500 in production", true, echo.NewHTTPError(500, "Server error").SetInternal(cause), 500, "Internal server error", ""},
		{"wrapped 500 in development", false, echo.NewHTTPError(500, "Server error").SetInternal(cause), 500, cause.Error(), ""},
		{"validation", true, fieldError(&service.FieldError{Field: "price", Msg: "Price must be a valid number"}), 400, "Price must be a valid number", "price"},
		{"not found", true, echo.NewHTTPError(404, "Product not found"), 404, "Product not found", ""},
		{"unknown route", true, echo.ErrNotFound, 404, "Route not found", ""},
		{"wrong method", true, echo.ErrMethodNotAllowed, 404, "Route not found", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := runErrorHandler(t, tt.production, http.MethodGet, tt.err)
			assert.Equal(t, tt.code, rec.Code)
			body := testutil.DecodeJSON[errorBody](t, rec)
			assert.Equal(t, tt.msg, body.Error)
			assert.Equal(t, tt.field, body.Field)
			assert.NotEmpty(t, body.Timestamp)
		})
	}
}

func TestErrorHandler_Head(t *testing.T) {
	rec := runErrorHandler(t, true, http.MethodHead, echo.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestRawPriceAndImageURL(t *testing.T) {
	p, err := rawPrice([]byte(`12.5`))
	assert.NoError(t, err)
	assert.Equal(t, "12.5", p)

	p, err = rawPrice([]byte(`"7"`))
	assert.NoError(t, err)
	assert.Equal(t, "7", p)

	p, err = rawPrice(nil)
	assert.NoError(t, err)
	assert.Empty(t, p)

	_, err = rawPrice([]byte(`{}`))
	assert.ErrorIs(t, err, service.ErrValidation)

	u, err := rawImageURL(nil)
	assert.NoError(t, err)
	assert.Nil(t, u)

	u, err = rawImageURL([]byte(`null`))
	assert.NoError(t, err)
	if assert.NotNil(t, u) {
		assert.Empty(t, *u)
	}

	u, err = rawImageURL([]byte(`" a.png "`))
	assert.NoError(t, err)
	if assert.NotNil(t, u) {
		assert.Equal(t, "a.png", *u)
	}

	_, err = rawImageURL([]byte(`5`))
	assert.ErrorIs(t, err, service.ErrValidation)
}
