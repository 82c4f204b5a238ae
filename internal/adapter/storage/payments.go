package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MoneyUnify/moneyunify-go/internal/core/domain"
	"github.com/MoneyUnify/moneyunify-go/internal/core/payments"
)

// PaymentRepository keeps one row per order in the payments table.
type PaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Get(ctx context.Context, orderID uuid.UUID) (*domain.PaymentRecord, error) {
	query := `
		SELECT order_id, transaction_id, payer_phone, amount, currency, status, created_at
		FROM payments WHERE order_id = $1
	`
	var rec domain.PaymentRecord
	err := r.db.QueryRow(ctx, query, orderID).Scan(
		&rec.OrderID, &rec.TransactionID, &rec.PayerPhone,
		&rec.Amount, &rec.Currency, &rec.Status, &rec.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, payments.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *PaymentRepository) Create(ctx context.Context, rec *domain.PaymentRecord) error {
	query := `
		INSERT INTO payments (order_id, transaction_id, payer_phone, amount, currency, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		rec.OrderID, rec.TransactionID, rec.PayerPhone,
		rec.Amount, rec.Currency, rec.Status, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create payment record: %w", err)
	}
	return nil
}

// Transition is the per-record compare-and-set. The WHERE clause on the
// current status is what closes the poll-vs-sweep race window: the loser
// matches zero rows and fires no side effect.
func (r *PaymentRepository) Transition(ctx context.Context, orderID uuid.UUID, from, to domain.PaymentStatus) (bool, error) {
	ct, err := r.db.Exec(ctx,
		`UPDATE payments SET status = $3 WHERE order_id = $1 AND status = $2`,
		orderID, from, to,
	)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

func (r *PaymentRepository) ListPending(ctx context.Context, limit int) ([]domain.PaymentRecord, error) {
	query := `
		SELECT order_id, transaction_id, payer_phone, amount, currency, status, created_at
		FROM payments
		WHERE status = 'PENDING'
		ORDER BY created_at ASC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.PaymentRecord
	for rows.Next() {
		var rec domain.PaymentRecord
		if err := rows.Scan(
			&rec.OrderID, &rec.TransactionID, &rec.PayerPhone,
			&rec.Amount, &rec.Currency, &rec.Status, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
