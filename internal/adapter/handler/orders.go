package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/MoneyUnify/moneyunify-go/internal/adapter/storage"
	"github.com/MoneyUnify/moneyunify-go/internal/core/domain"
	"github.com/MoneyUnify/moneyunify-go/internal/core/payments"
)

type OrdersHandler struct {
	Orders *storage.OrderRepository
	Store  payments.PaymentStore
}

// CreateOrderRequest defines what the storefront sends us
type CreateOrderRequest struct {
	CustomerID string `json:"customer_id"`
	Total      int64  `json:"total"` // Minor units!
	Currency   string `json:"currency"`
}

func (h *OrdersHandler) CreateOrder(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Warn("Invalid order body", "error", err)
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid customer id"})
	}
	if req.Total <= 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Total must be greater than zero"})
	}
	if !domain.Currency(req.Currency).Supported() {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Unsupported currency"})
	}

	order, err := h.Orders.CreateOrder(c.Context(), customerID, req.Total, req.Currency)
	if err != nil {
		slog.Error("Failed to create order", "error", err, "customer_id", customerID)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not create order"})
	}

	slog.Info("Order created", "order_id", order.ID, "total", order.Total, "currency", order.Currency)
	return c.Status(http.StatusCreated).JSON(order)
}

// GetOrder returns the order, its payment record (if a prompt was ever
// sent) and the audit notes, in one view.
func (h *OrdersHandler) GetOrder(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid order id"})
	}

	order, err := h.Orders.GetOrder(c.Context(), orderID)
	if err != nil {
		if errors.Is(err, payments.ErrOrderNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "Order not found"})
		}
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch order"})
	}

	view := fiber.Map{"order": order}

	if rec, err := h.Store.Get(c.Context(), orderID); err == nil {
		view["payment"] = rec
	} else if !errors.Is(err, payments.ErrRecordNotFound) {
		slog.Error("Failed to load payment record", "error", err, "order_id", orderID)
	}

	if notes, err := h.Orders.Notes(c.Context(), orderID); err == nil {
		view["notes"] = notes
	}

	return c.JSON(view)
}
