package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/abhikhya/shopcart/internal/middleware"
)

type Deps struct {
	Auth    *AuthHTTP
	OTP     *OTPHTTP
	Cart    *CartHTTP
	Product *ProductHTTP
	Search  *SearchHTTP

	JWTSecret []byte
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	authMw := middleware.NewAuth(d.JWTSecret)

	users := e.Group("/users")
	users.POST("/register", d.Auth.Register)
	users.POST("/login", d.Auth.Login)
	users.POST("/refresh", d.Auth.Refresh)
	users.POST("/logout", d.Auth.Logout)
	users.POST("/send-email", d.OTP.SendEmail)
	users.POST("/verify-otp", d.OTP.VerifyOTP)
	users.GET("", d.Auth.ListUsers)

	cart := e.Group("/cart", authMw.RequireAuth)
	cart.GET("", d.Cart.GetCart)
	cart.POST("/add", d.Cart.AddToCart)
	cart.POST("/remove", d.Cart.RemoveFromCart)
	cart.POST("/clear", d.Cart.ClearCart)
	cart.PATCH("/update", d.Cart.UpdateQuantity)

	e.GET("/products", d.Product.GetProducts)
	e.GET("/products/:id", d.Product.GetProduct)

	staff := e.Group("/products", authMw.RequireStaff)
	staff.POST("", d.Product.CreateProduct)
	staff.PATCH("/:id", d.Product.PatchProduct)
	staff.DELETE("/:id", d.Product.DeleteProduct)

	if d.Search != nil {
		e.GET("/search", d.Search.Search)
	}
}
