package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PaymentStatus is the lifecycle state of a checkout attempt.
// PENDING is the only non-terminal state; a record never leaves
// APPROVED or FAILED once it gets there.
type PaymentStatus string

const (
	StatusPending  PaymentStatus = "PENDING"
	StatusApproved PaymentStatus = "APPROVED"
	StatusFailed   PaymentStatus = "FAILED"
)

// Terminal reports whether no further transitions are allowed.
func (s PaymentStatus) Terminal() bool {
	return s == StatusApproved || s == StatusFailed
}

// VerificationStatus is what MoneyUnify reports for a transaction.
type VerificationStatus string

const (
	VerificationSuccess   VerificationStatus = "SUCCESS"
	VerificationFailed    VerificationStatus = "FAILED"
	VerificationRejected  VerificationStatus = "REJECTED"
	VerificationCancelled VerificationStatus = "CANCELLED"
	VerificationPending   VerificationStatus = "PENDING"
)

// ParseVerificationStatus maps the raw provider status into the closed set.
// Anything unrecognized (or empty) counts as still pending, never as failure.
func ParseVerificationStatus(raw string) VerificationStatus {
	switch VerificationStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case VerificationSuccess:
		return VerificationSuccess
	case VerificationFailed:
		return VerificationFailed
	case VerificationRejected:
		return VerificationRejected
	case VerificationCancelled:
		return VerificationCancelled
	default:
		return VerificationPending
	}
}

// PaymentRecord is the durable association between an order and its
// mobile-money transaction. Exactly one exists per order; it is created
// at PENDING and only the reconciliation step may move it.
type PaymentRecord struct {
	OrderID       uuid.UUID     `json:"order_id"`
	TransactionID string        `json:"transaction_id"`
	PayerPhone    string        `json:"payer_phone"`
	Amount        int64         `json:"amount"` // Minor units (ngwee/cents)
	Currency      Currency      `json:"currency"`
	Status        PaymentStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
}

// ValidationError rejects buyer input before anything touches the
// provider or the order.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
