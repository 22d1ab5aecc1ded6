package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	cur, _ := currentUser(c)
	productID, ok := pathID(c, "product_id")
	if !ok {
		return echo.ErrNotFound
	}

	prod, err := h.Svc.AddToCart(ctx, cur.UserID, productID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("add_to_cart_failed", "status", 400, "reason", "product not found", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, echo.Map{
				"message": "Failed to add product to cart",
				"error":   fmt.Sprintf("Product with ID %d not found", productID),
			})
		}
		l.Error("add_to_cart_failed", "status", 500, "error", err)
		return internalError()
	}

	l.Info("add_to_cart_success", "product_id", productID)
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Product added to cart successfully",
		"product": transport.NewProductView(prod),
	})
}

func (h *CartHTTP) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	cur, _ := currentUser(c)
	itemID, ok := pathID(c, "cart_item_id")
	if !ok {
		return echo.ErrNotFound
	}

	prod, err := h.Svc.RemoveFromCart(ctx, cur.UserID, itemID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("remove_from_cart_failed", "status", 404, "reason", "missing or foreign cart item", "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "Cart item not found or you are not authorized to delete it")
		}
		l.Error("remove_from_cart_failed", "status", 500, "error", err)
		return internalError()
	}

	l.Info("remove_from_cart_success", "cart_item_id", itemID)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Product removed from cart successfully",
		"product": transport.NewProductView(prod),
	})
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.list")

	cur, _ := currentUser(c)
	lines, err := h.Svc.GetCart(ctx, cur.UserID)
	if err != nil {
		l.Error("get_cart_failed", "status", 500, "error", err)
		return internalError()
	}
	// an empty cart is a 404 for existing clients
	if len(lines) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "No products in the cart")
	}

	out := make([]transport.CartEntry, 0, len(lines))
	for _, ln := range lines {
		out = append(out, transport.NewCartEntry(ln.ItemID, ln.Product))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.checkout")

	cur, _ := currentUser(c)
	removed, err := h.Svc.Checkout(ctx, cur.UserID)
	if err != nil {
		l.Error("checkout_failed", "status", 500, "error", err)
		return internalError()
	}

	l.Info("checkout_success", "removed", removed)
	return c.JSON(http.StatusOK, echo.Map{"message": "Checkout successful, cart has been cleared."})
}
