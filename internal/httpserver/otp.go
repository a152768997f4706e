package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/abhikhya/shopcart/internal/logging"
	"github.com/abhikhya/shopcart/internal/service"
)

type OTPHTTP struct {
	Svc *service.OTPService
}

func (h *OTPHTTP) SendEmail(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "otp.send")

	var req struct {
		Receiver string `json:"receiver"`
		Subject  string `json:"subject"`
		Message  string `json:"message"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("send_email_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	verr := service.NewValidationError()
	if req.Receiver == "" {
		verr.Add("receiver", "this field is required")
	}
	if req.Subject == "" {
		verr.Add("subject", "this field is required")
	}
	if req.Message == "" {
		verr.Add("message", "this field is required")
	}
	if !verr.Empty() {
		return fail(c, verr)
	}

	if err := h.Svc.Issue(ctx, req.Receiver, req.Subject, req.Message); err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": "Email with OTP sent successfully"})
}

func (h *OTPHTTP) VerifyOTP(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	verr := service.NewValidationError()
	if req.Email == "" {
		verr.Add("email", "this field is required")
	}
	if req.OTP == "" {
		verr.Add("otp", "this field is required")
	}
	if !verr.Empty() {
		return fail(c, verr)
	}

	if err := h.Svc.Verify(ctx, req.Email, req.OTP); err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": "OTP verified successfully"})
}
