package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/abhikhya/shopcart/internal/service"
)

// fail maps the service error set onto the HTTP surface: 400 for
// validation and OTP mismatches, 404 for missing rows, 401 for bad
// credentials, 500 for mail transport and anything unexpected.
func fail(c echo.Context, err error) error {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return c.JSON(http.StatusBadRequest, verr.Fields)
	}

	var merr *service.MailError
	if errors.As(err, &merr) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": merr.Error()})
	}

	switch {
	case errors.Is(err, service.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
	case errors.Is(err, service.ErrProductNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
	case errors.Is(err, service.ErrItemNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Item not found"})
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid email or password"})
	case errors.Is(err, service.ErrInvalidOTP):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid OTP"})
	case errors.Is(err, service.ErrExpiredOTP):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "OTP expired"})
	}

	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
}
