package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shopfront/internal/logging"
	"github.com/Skotchmaster/shopfront/internal/service"
)

const (
	msgInternal      = "Internal server error"
	msgRouteNotFound = "Route not found"
)

// ErrorHandler writes every error as {"error", "timestamp"}, plus "field" for
// validation failures. Server errors only show detail outside production.
func ErrorHandler(production bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		l := logging.FromContext(c.Request().Context())

		code := http.StatusInternalServerError
		msg := err.Error()
		var internal error = err

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			internal = he.Internal
			if m, ok := he.Message.(string); ok {
				msg = m
			} else {
				msg = http.StatusText(code)
			}
			if he == echo.ErrNotFound || he == echo.ErrMethodNotAllowed {
				code = http.StatusNotFound
				msg = msgRouteNotFound
			}
		}

		body := map[string]any{
			"error":     msg,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}

		var fe *service.FieldError
		if internal != nil && errors.As(internal, &fe) {
			body["field"] = fe.Field
		}

		if code >= http.StatusInternalServerError {
			logServerError(l, err, internal)
			if production {
				body["error"] = msgInternal
			} else if internal != nil {
				body["error"] = internal.Error()
			}
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(code)
		} else {
			writeErr = c.JSON(code, body)
		}
		if writeErr != nil {
			l.Error("error_response_failed", "error", writeErr)
		}
	}
}

func logServerError(l *slog.Logger, err, internal error) {
	if internal != nil && internal != err {
		l.Error("request_failed", "error", err, "cause", internal)
		return
	}
	l.Error("request_failed", "error", err)
}

// fieldError turns a validation failure into a 400 carrying the field name.
func fieldError(err error) *echo.HTTPError {
	var fe *service.FieldError
	if errors.As(err, &fe) {
		return echo.NewHTTPError(http.StatusBadRequest, fe.Msg).SetInternal(fe)
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}
