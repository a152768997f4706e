package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/abhikhya/shopcart/internal/tokens"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

type Auth struct {
	JWTSecret []byte
}

func NewAuth(secret []byte) *Auth {
	return &Auth{JWTSecret: secret}
}

func (a *Auth) claims(c echo.Context) (*tokens.AccessClaims, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
	}
	raw := strings.TrimPrefix(header, "Bearer ")
	claims, err := tokens.AccessClaimsFromToken(raw, a.JWTSecret)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	return claims, nil
}

// RequireAuth puts the authenticated user id into the echo context; the
// handlers pass it on explicitly, nothing downstream reads the context.
func (a *Auth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := a.claims(c)
		if err != nil {
			return err
		}
		userID, err := claims.UserID()
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}
		c.Set(ContextUserID, userID)
		c.Set(ContextRole, claims.Role)
		return next(c)
	}
}

func (a *Auth) RequireStaff(next echo.HandlerFunc) echo.HandlerFunc {
	return a.RequireAuth(func(c echo.Context) error {
		if c.Get(ContextRole) != tokens.RoleStaff {
			return echo.NewHTTPError(http.StatusForbidden, "staff only")
		}
		return next(c)
	})
}

// UserID reads the id stored by RequireAuth.
func UserID(c echo.Context) (uint, bool) {
	id, ok := c.Get(ContextUserID).(uint)
	return id, ok
}
