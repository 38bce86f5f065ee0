package auth

import (
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shopfront/internal/logging"
	"github.com/Skotchmaster/shopfront/internal/models"
	"github.com/Skotchmaster/shopfront/internal/tokens"
)

const (
	ContextKey = "user"

	msgNoToken      = "Access denied. No token provided."
	msgInvalidToken = "Invalid token."
	msgAdminOnly    = "Access denied. Admin only."
)

// RequireToken accepts a valid HS256 token from "Authorization: Bearer <token>"
// and stores it under ContextKey.
func RequireToken(secret []byte) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  ContextKey,
		TokenLookup: "header:Authorization:Bearer ",
		KeyFunc:     tokens.KeyFunc(secret),
		NewClaimsFunc: func(echo.Context) jwt.Claims {
			return new(tokens.AccessClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			l := logging.FromContext(c.Request().Context()).With("middleware", "auth")

			var extractErr *echojwt.TokenExtractionError
			if errors.As(err, &extractErr) {
				l.Warn("auth_rejected", "status", 401, "reason", "no token")
				return echo.NewHTTPError(http.StatusUnauthorized, msgNoToken)
			}
			l.Warn("auth_rejected", "status", 401, "reason", "invalid token", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, msgInvalidToken)
		},
	})
}

func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := ClaimsFrom(c)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, msgNoToken)
		}
		if claims.Role != models.RoleAdmin {
			logging.FromContext(c.Request().Context()).Warn("auth_rejected",
				"middleware", "auth", "status", 403, "reason", "not admin", "user_id", claims.UserID)
			return echo.NewHTTPError(http.StatusForbidden, msgAdminOnly)
		}
		return next(c)
	}
}

// Admin chains RequireToken and RequireAdmin for route groups.
func Admin(secret []byte) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{RequireToken(secret), RequireAdmin}
}

func ClaimsFrom(c echo.Context) (*tokens.AccessClaims, bool) {
	tok, ok := c.Get(ContextKey).(*jwt.Token)
	if !ok || tok == nil {
		return nil, false
	}
	claims, ok := tok.Claims.(*tokens.AccessClaims)
	return claims, ok
}
