package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/oblivions/storefront/internal/core/ports"
)

type AdminHandler struct {
	adminService ports.AdminService
}

func NewAdminHandler(adminService ports.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// ListUsers returns all accounts.
//
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Success      200  {array}   domain.User
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.adminService.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// ListOrders returns all orders with customer details.
//
// @Summary      List orders
// @Tags         admin
// @Produce      json
// @Success      200  {array}   domain.Order
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /admin/orders [get]
func (h *AdminHandler) ListOrders(c echo.Context) error {
	orders, err := h.adminService.ListOrders(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

// ListOrderItems returns the lines of one order.
//
// @Summary      List order items
// @Tags         admin
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {array}   domain.OrderItem
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /admin/orders/{id}/items [get]
func (h *AdminHandler) ListOrderItems(c echo.Context) error {
	items, err := h.adminService.ListOrderItems(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}
