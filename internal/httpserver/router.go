package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/db"
	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
	loggingmw "github.com/Skotchmaster/storefront/internal/middleware/logging"
)

type Deps struct {
	DB             *gorm.DB
	AuthHandler    *AuthHTTP
	ProductHandler *ProductHTTP
	CartHandler    *CartHTTP
	SessionAuth    *authmw.SessionAuth
}

// New builds the echo instance with the shared middleware stack and all
// routes registered.
func New(d *Deps, logger *slog.Logger, corsOrigins []string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     corsOrigins,
		AllowCredentials: len(corsOrigins) > 0 && corsOrigins[0] != "*",
	}))
	e.Use(echomw.Secure())

	Register(e, d)
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	e.GET("/health/ready", d.ready)

	requireLogin := d.SessionAuth.RequireLogin

	e.POST("/login", d.AuthHandler.Login)
	e.POST("/logout", d.AuthHandler.LogOut, requireLogin)

	products := e.Group("/api/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.POST("", d.ProductHandler.GetProduct)
	products.GET("/search", d.ProductHandler.SearchProducts)
	products.POST("/add", d.ProductHandler.CreateProduct, requireLogin)
	products.DELETE("/delete/:id", d.ProductHandler.DeleteProduct, requireLogin)
	products.PUT("/update/:id", d.ProductHandler.UpdateProduct, requireLogin)

	cart := e.Group("/api/cart", requireLogin)
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("/add/:product_id", d.CartHandler.AddToCart)
	cart.DELETE("/remove/:cart_item_id", d.CartHandler.RemoveFromCart)
	cart.POST("/checkout", d.CartHandler.Checkout)
}

func (d *Deps) ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := db.Ping(ctx, d.DB); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
