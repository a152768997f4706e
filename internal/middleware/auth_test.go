package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhikhya/shopcart/internal/tokens"
)

var testSecret = []byte("test-jwt-secret")

func newAuthEcho(t *testing.T) *echo.Echo {
	t.Helper()
	a := NewAuth(testSecret)

	e := echo.New()
	e.GET("/private", func(c echo.Context) error {
		id, ok := UserID(c)
		require.True(t, ok)
		return c.JSON(http.StatusOK, echo.Map{"user_id": id})
	}, a.RequireAuth)
	e.GET("/staff", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, a.RequireStaff)
	return e
}

func doGet(e *echo.Echo, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuth(t *testing.T) {
	e := newAuthEcho(t)

	token, err := tokens.SignAccess(42, tokens.RoleUser, testSecret, time.Now().Add(tokens.AccessTTL))
	require.NoError(t, err)

	rec := doGet(e, "/private", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "42")
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	e := newAuthEcho(t)

	rec := doGet(e, "/private", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_BadToken(t *testing.T) {
	e := newAuthEcho(t)

	token, err := tokens.SignAccess(42, tokens.RoleUser, []byte("other-secret"), time.Now().Add(time.Minute))
	require.NoError(t, err)

	rec := doGet(e, "/private", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireStaff(t *testing.T) {
	e := newAuthEcho(t)

	userToken, err := tokens.SignAccess(1, tokens.RoleUser, testSecret, time.Now().Add(time.Minute))
	require.NoError(t, err)
	staffToken, err := tokens.SignAccess(2, tokens.RoleStaff, testSecret, time.Now().Add(time.Minute))
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, doGet(e, "/staff", userToken).Code)
	assert.Equal(t, http.StatusOK, doGet(e, "/staff", staffToken).Code)
}
