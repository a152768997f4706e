package httpserver

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/abhikhya/shopcart/internal/hash"
	"github.com/abhikhya/shopcart/internal/middleware"
	"github.com/abhikhya/shopcart/internal/models"
	"github.com/abhikhya/shopcart/internal/repo"
	"github.com/abhikhya/shopcart/internal/service"
)

type fakeSender struct {
	body string
	err  error
}

func (f *fakeSender) Send(subject, body, from string, to []string) error {
	f.body = body
	return f.err
}

type testEnv struct {
	T       *testing.T
	E       *echo.Echo
	R       *repo.GormRepo
	Auth    *AuthHTTP
	OTP     *OTPHTTP
	Cart    *CartHTTP
	Product *ProductHTTP
	Sender  *fakeSender
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.RefreshToken{},
	))

	r := repo.New(db)
	sender := &fakeSender{}

	authSvc := &service.AuthService{
		Repo:          r,
		JWTSecret:     []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	}
	otpSvc := &service.OTPService{
		Repo:   r,
		Mail:   sender,
		Sender: "noreply@shopcart.dev",
		Rand:   rand.New(rand.NewSource(1)),
	}

	return &testEnv{
		T:       t,
		E:       echo.New(),
		R:       r,
		Auth:    &AuthHTTP{Svc: authSvc},
		OTP:     &OTPHTTP{Svc: otpSvc},
		Cart:    &CartHTTP{Svc: &service.CartService{Repo: r}},
		Product: &ProductHTTP{Svc: &service.CatalogService{Repo: r}},
		Sender:  sender,
	}
}

func (env *testEnv) doJSONRequest(method, path string, body interface{}) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

// asUser mimics what RequireAuth leaves behind for the cart handlers.
func (env *testEnv) asUser(c echo.Context, userID uint) {
	c.Set(middleware.ContextUserID, userID)
}

func (env *testEnv) seedUser(email, mobile string) *models.User {
	env.T.Helper()
	pw, err := hash.HashPassword("password")
	require.NoError(env.T, err)
	user := models.User{
		Email:        email,
		Mobile:       mobile,
		PasswordHash: pw,
		IsActive:     true,
	}
	require.NoError(env.T, env.R.DB.Create(&user).Error)
	return &user
}

func (env *testEnv) seedProduct(name string, price float64) *models.Product {
	env.T.Helper()
	p := models.Product{Name: name, Price: price}
	require.NoError(env.T, env.R.DB.Create(&p).Error)
	return &p
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}
