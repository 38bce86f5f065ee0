package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shopfront/internal/logging"
	"github.com/Skotchmaster/shopfront/internal/service"
)

type UserHTTP struct {
	Svc *service.UserService
}

func (h *UserHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.register")

	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body").SetInternal(err)
	}

	name := req.FullName
	if name == "" {
		name = req.Name
	}

	user, err := h.Svc.Register(ctx, service.RegisterInput{Name: name, Email: req.Email, Password: req.Password})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("register_error", "status", 400, "reason", err.Error())
			return fieldError(err)
		case errors.Is(err, service.ErrConflict):
			l.Warn("register_error", "status", 409, "reason", "email taken")
			return echo.NewHTTPError(http.StatusConflict, "A user with this email already exists")
		default:
			l.Error("register_error", "status", 500, "reason", "cannot create user", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Server error").SetInternal(err)
		}
	}

	l.Info("register_success", "user_id", user.ID)
	return c.JSON(http.StatusCreated, user)
}

func (h *UserHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.list")

	users, err := h.Svc.List(ctx)
	if err != nil {
		l.Error("list_users_error", "status", 500, "reason", "cannot load users", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error").SetInternal(err)
	}
	return c.JSON(http.StatusOK, users)
}
