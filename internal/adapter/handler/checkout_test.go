package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/MoneyUnify/moneyunify-go/internal/adapter/handler"
	"github.com/MoneyUnify/moneyunify-go/internal/core/domain"
	"github.com/MoneyUnify/moneyunify-go/internal/core/moneyunify"
	"github.com/MoneyUnify/moneyunify-go/internal/core/payments"
)

type fakeInitiator struct {
	rec *domain.PaymentRecord
	err error
}

func (f *fakeInitiator) Initiate(_ context.Context, orderID uuid.UUID, phone string) (*domain.PaymentRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	rec := *f.rec
	rec.OrderID = orderID
	rec.PayerPhone = phone
	return &rec, nil
}

func checkoutApp(svc handler.Initiator) *fiber.App {
	app := fiber.New()
	h := &handler.CheckoutHandler{Service: svc}
	app.Post("/v1/payments", h.Initiate)
	return app
}

func TestInitiate_Accepted(t *testing.T) {
	orderID := uuid.New()
	app := checkoutApp(&fakeInitiator{rec: &domain.PaymentRecord{
		TransactionID: "TXN123",
		Status:        domain.StatusPending,
	}})

	body := fmt.Sprintf(`{"order_id":%q,"phone_number":"0971234567"}`, orderID)
	req := httptest.NewRequest("POST", "/v1/payments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	var got map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Equal(t, "pending", got["status"])
	require.Equal(t, "TXN123", got["transaction_id"])
}

func TestInitiate_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &domain.ValidationError{Field: "phone", Reason: "must be 9-12 digits"}, fiber.StatusBadRequest},
		{"rejected", &moneyunify.RejectedError{Message: "Insufficient funds"}, fiber.StatusPaymentRequired},
		{"unavailable", fmt.Errorf("%w: timeout", moneyunify.ErrUnavailable), fiber.StatusBadGateway},
		{"already initiated", payments.ErrAlreadyInitiated, fiber.StatusConflict},
		{"order missing", payments.ErrOrderNotFound, fiber.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := checkoutApp(&fakeInitiator{err: tt.err})
			body := fmt.Sprintf(`{"order_id":%q,"phone_number":"0971234567"}`, uuid.New())
			req := httptest.NewRequest("POST", "/v1/payments", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestInitiate_BadOrderID(t *testing.T) {
	app := checkoutApp(&fakeInitiator{})
	req := httptest.NewRequest("POST", "/v1/payments", strings.NewReader(`{"order_id":"nope","phone_number":"0971234567"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
