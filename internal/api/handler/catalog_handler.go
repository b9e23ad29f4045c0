package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/oblivions/storefront/internal/core/cart"
	"github.com/oblivions/storefront/internal/core/domain"
)

type CatalogHandler struct{}

func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// Products lists the fixed catalog.
//
// @Summary      List products
// @Tags         catalog
// @Produce      json
// @Success      200  {array}  cart.Product
// @Router       /products [get]
func (h *CatalogHandler) Products(c echo.Context) error {
	return c.JSON(http.StatusOK, cart.Catalog())
}

// Product returns one catalog entry.
//
// @Summary      Get product
// @Tags         catalog
// @Produce      json
// @Param        id   path      int  true  "Product ID"
// @Success      200  {object}  cart.Product
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /products/{id} [get]
func (h *CatalogHandler) Product(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return domain.NewValidationError("invalid product id")
	}
	p, ok := cart.Lookup(id)
	if !ok {
		return cart.ErrProductNotFound
	}
	return c.JSON(http.StatusOK, p)
}
