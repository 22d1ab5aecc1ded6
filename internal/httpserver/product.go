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

const msgDuplicateName = "For existing products, be sure to enter a new name."

type ProductHTTP struct {
	Svc *service.ProductService
}

func duplicateName(name string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, echo.Map{
		"message": msgDuplicateName,
		"error":   fmt.Sprintf("Product with name '%s' already exists", name),
	})
}

func invalidProductData(err error) *echo.HTTPError {
	body := echo.Map{"message": "Invalid product data"}
	var fe *transport.FieldError
	if errors.As(err, &fe) {
		if len(fe.Missing) > 0 {
			body["missing_fields"] = fe.Missing
		}
		if len(fe.Invalid) > 0 {
			body["invalid_fields"] = fe.Invalid
		}
	}
	return echo.NewHTTPError(http.StatusBadRequest, body)
}

func (h *ProductHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	cur, _ := currentUser(c)

	body, err := bindBody(c)
	if err != nil {
		l.Warn("create_product_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	req, err := transport.DecodeCreateProduct(body)
	if err != nil {
		l.Warn("create_product_failed", "status", 400, "reason", "invalid product data", "error", err)
		return invalidProductData(err)
	}

	prod, err := h.Svc.CreateProduct(ctx, cur.UserID, req)
	if err != nil {
		if errors.Is(err, service.ErrConflict) {
			l.Warn("create_product_failed", "status", 400, "reason", "duplicate name", "error", err)
			return duplicateName(req.Name)
		}
		l.Error("create_product_failed", "status", 500, "reason", "cannot add product to db", "error", err)
		return internalError()
	}

	l.Info("create_product_success", "product_id", prod.ID)
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Product added successfully",
		"product": transport.NewProductView(prod),
	})
}

func (h *ProductHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id, ok := pathID(c, "id")
	if !ok {
		return echo.ErrNotFound
	}

	prod, err := h.Svc.DeleteProduct(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("delete_product_failed", "status", 404, "reason", "product not found", "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		l.Error("delete_product_failed", "status", 500, "reason", "cannot delete product from db", "error", err)
		return internalError()
	}

	l.Info("delete_product_success", "product_id", id)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Product deleted successfully",
		"product": transport.NewProductView(prod),
	})
}

// GetProduct looks a product up by "id" or, failing that, by "name".
func (h *ProductHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get")

	body, err := bindBody(c)
	if err != nil {
		l.Warn("get_product_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	req, err := transport.DecodeLookup(body)
	if err != nil {
		l.Warn("get_product_failed", "status", 400, "reason", "id is not an integer")
		return echo.NewHTTPError(http.StatusBadRequest, echo.Map{
			"message": "Invalid ID format",
			"error":   err.Error(),
		})
	}

	switch {
	case req.HasID:
		notFound := echo.NewHTTPError(http.StatusNotFound, echo.Map{
			"message": "Product not found",
			"error":   fmt.Sprintf("No product found with ID %d", req.ID),
		})
		if req.ID <= 0 {
			return notFound
		}
		prod, err := h.Svc.GetProduct(ctx, uint(req.ID))
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				l.Warn("get_product_failed", "status", 404, "reason", "no product with id", "error", err)
				return notFound
			}
			l.Error("get_product_failed", "status", 500, "error", err)
			return internalError()
		}
		return c.JSON(http.StatusOK, transport.NewProductView(prod))

	case req.HasName:
		items, err := h.Svc.FindProductsByName(ctx, req.Name)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				l.Warn("get_product_failed", "status", 404, "reason", "no product with name", "error", err)
				return echo.NewHTTPError(http.StatusNotFound, echo.Map{
					"message": "No products found",
					"error":   fmt.Sprintf("No products found with name '%s'", req.Name),
				})
			}
			l.Error("get_product_failed", "status", 500, "error", err)
			return internalError()
		}
		return c.JSON(http.StatusOK, transport.NewProductViews(items))
	}

	l.Warn("get_product_failed", "status", 400, "reason", "neither id nor name")
	return echo.NewHTTPError(http.StatusBadRequest, "Please provide either 'id' or 'name' to search for products")
}

func (h *ProductHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update")

	id, ok := pathID(c, "id")
	if !ok {
		return echo.ErrNotFound
	}

	body, err := bindBody(c)
	if err != nil {
		l.Warn("update_product_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	req, err := transport.DecodePatchProduct(body)
	if err != nil {
		l.Warn("update_product_failed", "status", 400, "reason", "invalid product data", "error", err)
		return invalidProductData(err)
	}

	prod, changed, err := h.Svc.PatchProduct(ctx, id, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			l.Warn("update_product_failed", "status", 404, "reason", "product not found", "error", err)
			return echo.NewHTTPError(http.StatusNotFound, echo.Map{
				"message": "No products found",
				"error":   fmt.Sprintf("No products found with ID %d", id),
			})
		case errors.Is(err, service.ErrConflict):
			l.Warn("update_product_failed", "status", 400, "reason", "duplicate name", "error", err)
			return duplicateName(*req.Name)
		}
		l.Error("update_product_failed", "status", 500, "reason", "cannot save product", "error", err)
		return internalError()
	}

	if !changed {
		l.Info("update_product_noop", "product_id", id)
		return c.JSON(http.StatusOK, echo.Map{"message": "No changes detected"})
	}

	l.Info("update_product_success", "product_id", id)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Product updated successfully",
		"product": transport.NewUpdatedProductView(prod),
	})
}

func (h *ProductHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list")

	items, err := h.Svc.GetProducts(ctx)
	if err != nil {
		l.Error("get_products_failed", "status", 500, "error", err)
		return internalError()
	}
	return c.JSON(http.StatusOK, transport.NewProductList(items))
}

func (h *ProductHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	docs, err := h.Svc.SearchProducts(ctx, c.QueryParam("q"))
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("search_products_failed", "status", 400, "reason", "empty query")
			return echo.NewHTTPError(http.StatusBadRequest, "query parameter 'q' is required")
		}
		l.Error("search_products_failed", "status", 500, "error", err)
		return internalError()
	}
	return c.JSON(http.StatusOK, docs)
}
