package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/MoneyUnify/moneyunify-go/internal/core/domain"
	"github.com/MoneyUnify/moneyunify-go/internal/core/moneyunify"
	"github.com/MoneyUnify/moneyunify-go/internal/core/payments"
)

// Initiator is the checkout side of the payment service.
type Initiator interface {
	Initiate(ctx context.Context, orderID uuid.UUID, phone string) (*domain.PaymentRecord, error)
}

type CheckoutHandler struct {
	Service Initiator
}

type InitiateRequest struct {
	OrderID     string `json:"order_id"`
	PhoneNumber string `json:"phone_number"`
}

// Initiate starts a mobile-money payment for an order. On success the
// buyer gets a prompt on their phone; the response is always "pending"
// because approval happens out of band.
func (h *CheckoutHandler) Initiate(c *fiber.Ctx) error {
	var req InitiateRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Warn("Invalid checkout body received", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid order id"})
	}

	slog.Info("Payment initiation request", "order_id", orderID, "phone", req.PhoneNumber)

	rec, err := h.Service.Initiate(c.Context(), orderID, req.PhoneNumber)
	if err != nil {
		return writePaymentError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status":         "pending",
		"message":        "Payment request sent. Check your phone and approve it.",
		"order_id":       rec.OrderID,
		"transaction_id": rec.TransactionID,
	})
}

// writePaymentError maps the service error taxonomy onto HTTP. Only
// initiation surfaces provider errors to the buyer; verification never
// does.
func writePaymentError(c *fiber.Ctx, err error) error {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": vErr.Error()})
	}

	var rej *moneyunify.RejectedError
	if errors.As(err, &rej) {
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": rej.Message})
	}

	switch {
	case errors.Is(err, moneyunify.ErrUnavailable):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Payment provider unavailable. Try again."})
	case errors.Is(err, payments.ErrAlreadyInitiated):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "A payment is already in progress for this order"})
	case errors.Is(err, payments.ErrOrderNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Order not found"})
	default:
		slog.Error("Payment initiation failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Payment initiation failed"})
	}
}
