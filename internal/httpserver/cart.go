package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/abhikhya/shopcart/internal/logging"
	"github.com/abhikhya/shopcart/internal/middleware"
	"github.com/abhikhya/shopcart/internal/service"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) userID(c echo.Context) (uint, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return id, nil
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := h.userID(c)
	if err != nil {
		return err
	}

	snapshot, err := h.Svc.Get(ctx, userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, snapshot)
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	userID, err := h.userID(c)
	if err != nil {
		return err
	}

	var req struct {
		ProductID uint `json:"product_id"`
		Quantity  *int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("add_to_cart_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ProductID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "product_id required"})
	}

	// quantity defaults to 1 only when absent, an explicit value is
	// passed through untouched.
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	if _, err := h.Svc.Add(ctx, userID, req.ProductID, quantity); err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Item added to cart"})
}

func (h *CartHTTP) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := h.userID(c)
	if err != nil {
		return err
	}

	var req struct {
		ProductID uint `json:"product_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ProductID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "product_id required"})
	}

	if err := h.Svc.Remove(ctx, userID, req.ProductID); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Item removed"})
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := h.userID(c)
	if err != nil {
		return err
	}

	if err := h.Svc.Clear(ctx, userID); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Cart cleared"})
}

func (h *CartHTTP) UpdateQuantity(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := h.userID(c)
	if err != nil {
		return err
	}

	var req struct {
		ProductID uint `json:"product_id"`
		Quantity  *int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ProductID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "product_id required"})
	}

	// Same contract as AddToCart: an omitted quantity means 1, only an
	// explicit value can drop the item.
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	res, err := h.Svc.UpdateQuantity(ctx, userID, req.ProductID, quantity)
	if err != nil {
		return fail(c, err)
	}

	if res.Removed {
		return c.JSON(http.StatusOK, echo.Map{"message": "Item removed from cart"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":  "Quantity updated",
		"quantity": res.Quantity,
	})
}
