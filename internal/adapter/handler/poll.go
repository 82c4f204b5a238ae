package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/MoneyUnify/moneyunify-go/internal/core/domain"
	"github.com/MoneyUnify/moneyunify-go/internal/core/payments"
)

// Poller runs one verify+reconcile pass for an order.
type Poller interface {
	Poll(ctx context.Context, orderID uuid.UUID) (domain.PaymentStatus, error)
}

type PollHandler struct {
	Service Poller
}

// Status is the endpoint the buyer's post-checkout page polls (every 10s,
// the bundled checkout script gives up after 60 tries; the sweep worker
// covers everyone who stopped polling). Public: it leaks nothing but the
// three-way status.
func (h *PollHandler) Status(c *fiber.Ctx) error {
	orderID, err := uuid.Parse(c.Params("order_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid order id"})
	}

	status, err := h.Service.Poll(c.Context(), orderID)
	if err != nil {
		if errors.Is(err, payments.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No payment for this order"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not check payment status"})
	}

	return c.JSON(fiber.Map{"status": pollLabel(status)})
}

func pollLabel(status domain.PaymentStatus) string {
	switch status {
	case domain.StatusApproved:
		return "approved"
	case domain.StatusFailed:
		return "failed"
	default:
		return "waiting"
	}
}
