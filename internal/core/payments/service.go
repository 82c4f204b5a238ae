package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MoneyUnify/moneyunify-go/internal/core/domain"
)

const defaultSweepBatch = 20

var (
	// ErrRecordNotFound means no payment was ever initiated for the order.
	ErrRecordNotFound = errors.New("payment record not found")

	// ErrOrderNotFound means the host order does not exist.
	ErrOrderNotFound = errors.New("order not found")

	// ErrAlreadyInitiated guards the one-record-per-order rule. A new
	// checkout attempt needs a new order, never a second prompt on the
	// same one.
	ErrAlreadyInitiated = errors.New("payment already initiated for this order")
)

// PaymentStore is the durable home of payment records.
type PaymentStore interface {
	Get(ctx context.Context, orderID uuid.UUID) (*domain.PaymentRecord, error)
	Create(ctx context.Context, rec *domain.PaymentRecord) error

	// Transition flips the record from one status to another only if it
	// is still in the expected one, and reports whether this caller won.
	// This is the compare-and-set that makes poll and sweep safe to race.
	Transition(ctx context.Context, orderID uuid.UUID, from, to domain.PaymentStatus) (bool, error)

	// ListPending returns up to limit PENDING records, oldest first, so
	// the sweep drains a backlog fairly.
	ListPending(ctx context.Context, limit int) ([]domain.PaymentRecord, error)
}

// OrderSystem is the host e-commerce side of the fence. The gateway only
// ever calls it; it never owns order state.
type OrderSystem interface {
	OrderTotal(ctx context.Context, orderID uuid.UUID) (domain.Money, error)
	SetOnHold(ctx context.Context, orderID uuid.UUID, note string) error
	CompleteOrder(ctx context.Context, orderID uuid.UUID, transactionID string) error
	FailOrder(ctx context.Context, orderID uuid.UUID, reason string) error
	ReduceStock(ctx context.Context, orderID uuid.UUID) error
	EmptyCart(ctx context.Context, orderID uuid.UUID) error
	AddNote(ctx context.Context, orderID uuid.UUID, note string) error
}

// Provider issues the two MoneyUnify calls. VerifyPayment must be safe to
// repeat; a transport error from it means "still pending", never "failed".
type Provider interface {
	RequestPayment(ctx context.Context, phone string, amount domain.Money, reference string) (string, error)
	VerifyPayment(ctx context.Context, transactionID string) (domain.VerificationStatus, error)
}

// WebhookQueue records a merchant notification for the delivery worker.
type WebhookQueue interface {
	Enqueue(ctx context.Context, event string, payload map[string]any) error
}

// Service ties initiation and reconciliation together. Both convergence
// drivers (the poll handler and the sweep worker) call into it; neither
// holds any state of its own.
type Service struct {
	Store     PaymentStore
	Orders    OrderSystem
	Provider  Provider
	Webhooks  WebhookQueue // optional
	Currency  domain.Currency
	BatchSize int
}

// Initiate runs the checkout-side workflow: validate, ask MoneyUnify to
// push the prompt, persist the PENDING record, park the order on hold.
// Every precondition failure leaves the order untouched.
func (s *Service) Initiate(ctx context.Context, orderID uuid.UUID, phone string) (*domain.PaymentRecord, error) {
	total, err := s.Orders.OrderTotal(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if total.Currency != s.Currency {
		return nil, &domain.ValidationError{
			Field:  "currency",
			Reason: fmt.Sprintf("order is in %s but the gateway settles in %s", total.Currency, s.Currency),
		}
	}

	phone = domain.NormalizePhone(phone)
	if !domain.ValidPhone(phone) {
		return nil, &domain.ValidationError{Field: "phone", Reason: "must be 9-12 digits"}
	}

	if _, err := s.Store.Get(ctx, orderID); err == nil {
		return nil, ErrAlreadyInitiated
	} else if !errors.Is(err, ErrRecordNotFound) {
		return nil, err
	}

	reference := fmt.Sprintf("MU-%s-%d", orderID, time.Now().Unix())
	txnID, err := s.Provider.RequestPayment(ctx, phone, total, reference)
	if err != nil {
		return nil, err
	}

	rec := &domain.PaymentRecord{
		OrderID:       orderID,
		TransactionID: txnID,
		PayerPhone:    phone,
		Amount:        total.Amount,
		Currency:      total.Currency,
		Status:        domain.StatusPending,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.Store.Create(ctx, rec); err != nil {
		return nil, err
	}

	if err := s.Orders.SetOnHold(ctx, orderID, "Awaiting customer approval on phone (MoneyUnify)"); err != nil {
		slog.Error("Failed to put order on hold", "order_id", orderID, "error", err)
	}
	if err := s.Orders.ReduceStock(ctx, orderID); err != nil {
		slog.Error("Failed to reduce stock", "order_id", orderID, "error", err)
	}
	if err := s.Orders.EmptyCart(ctx, orderID); err != nil {
		slog.Error("Failed to empty cart", "order_id", orderID, "error", err)
	}

	slog.Info("Payment initiated",
		"order_id", orderID,
		"transaction_id", txnID,
		"amount", total.Amount,
		"currency", total.Currency,
	)
	return rec, nil
}

// Poll is the client-driver entry point: one verify+reconcile pass for a
// single order, returning whatever status the record holds afterwards.
// The browser keeps calling this on an interval; closing the tab loses
// nothing because the sweep picks the record up later.
func (s *Service) Poll(ctx context.Context, orderID uuid.UUID) (domain.PaymentStatus, error) {
	rec, err := s.Store.Get(ctx, orderID)
	if err != nil {
		return "", err
	}
	return s.reconcileRecord(ctx, rec), nil
}

// Sweep is the cron-driver entry point: verify+reconcile every pending
// record, oldest first, up to the batch size. Per-record trouble is
// logged and skipped; the next cycle retries. Returns how many records
// reached a terminal state.
func (s *Service) Sweep(ctx context.Context) int {
	limit := s.BatchSize
	if limit <= 0 {
		limit = defaultSweepBatch
	}

	records, err := s.Store.ListPending(ctx, limit)
	if err != nil {
		slog.Error("Sweep could not list pending payments", "error", err)
		return 0
	}
	if len(records) == 0 {
		return 0
	}

	settled := 0
	for i := range records {
		if s.reconcileRecord(ctx, &records[i]).Terminal() {
			settled++
		}
	}

	slog.Info("Sweep cycle finished", "checked", len(records), "settled", settled)
	return settled
}

// reconcileRecord is the shared convergence step. It re-checks status at
// the store immediately before writing (not just at the start), so only
// the winner of the compare-and-set fires the host side effect.
func (s *Service) reconcileRecord(ctx context.Context, rec *domain.PaymentRecord) domain.PaymentStatus {
	if rec.Status.Terminal() {
		return rec.Status
	}

	verification, err := s.Provider.VerifyPayment(ctx, rec.TransactionID)
	if err != nil {
		// Provider unreachable is not a payment failure. Stays PENDING.
		slog.Warn("Verification unavailable, will retry", "order_id", rec.OrderID, "error", err)
		return rec.Status
	}

	next, effect := domain.Reconcile(rec.Status, verification)
	if next == rec.Status {
		return rec.Status
	}

	won, err := s.Store.Transition(ctx, rec.OrderID, domain.StatusPending, next)
	if err != nil {
		slog.Error("Status transition failed", "order_id", rec.OrderID, "error", err)
		return rec.Status
	}
	if !won {
		// The other driver got there first. Nothing left to do.
		slog.Info("Record already settled by concurrent driver", "order_id", rec.OrderID)
		if current, err := s.Store.Get(ctx, rec.OrderID); err == nil {
			return current.Status
		}
		return rec.Status
	}

	s.applyEffect(ctx, rec, effect)
	return next
}

func (s *Service) applyEffect(ctx context.Context, rec *domain.PaymentRecord, effect domain.Effect) {
	switch effect {
	case domain.EffectComplete:
		if err := s.Orders.CompleteOrder(ctx, rec.OrderID, rec.TransactionID); err != nil {
			slog.Error("Failed to complete order", "order_id", rec.OrderID, "error", err)
		}
		if err := s.Orders.AddNote(ctx, rec.OrderID, "Payment approved by customer (MoneyUnify)."); err != nil {
			slog.Error("Failed to add order note", "order_id", rec.OrderID, "error", err)
		}
		slog.Info("Payment approved", "order_id", rec.OrderID, "transaction_id", rec.TransactionID)
		s.notify(ctx, "payment.approved", rec, domain.StatusApproved)

	case domain.EffectFail:
		if err := s.Orders.FailOrder(ctx, rec.OrderID, "Customer did not approve or payment failed."); err != nil {
			slog.Error("Failed to fail order", "order_id", rec.OrderID, "error", err)
		}
		slog.Info("Payment failed", "order_id", rec.OrderID, "transaction_id", rec.TransactionID)
		s.notify(ctx, "payment.failed", rec, domain.StatusFailed)
	}
}

func (s *Service) notify(ctx context.Context, event string, rec *domain.PaymentRecord, status domain.PaymentStatus) {
	if s.Webhooks == nil {
		return
	}

	payload := map[string]any{
		"event": event,
		"data": map[string]any{
			"order_id":       rec.OrderID,
			"transaction_id": rec.TransactionID,
			"phone_number":   rec.PayerPhone,
			"amount":         rec.Amount,
			"currency":       rec.Currency,
			"status":         status,
			"timestamp":      time.Now().UTC(),
		},
	}
	if err := s.Webhooks.Enqueue(ctx, event, payload); err != nil {
		slog.Error("Failed to queue webhook", "order_id", rec.OrderID, "event", event, "error", err)
	}
}
