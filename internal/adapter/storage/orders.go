package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MoneyUnify/moneyunify-go/internal/core/domain"
	"github.com/MoneyUnify/moneyunify-go/internal/core/payments"
)

// Host order statuses, WooCommerce-flavoured.
const (
	OrderPending    = "pending"
	OrderOnHold     = "on-hold"
	OrderProcessing = "processing"
	OrderFailed     = "failed"
)

// Order is the host system's order row. The gateway only moves its
// status and appends notes; everything else belongs to the storefront.
type Order struct {
	ID            uuid.UUID `json:"id"`
	CustomerID    uuid.UUID `json:"customer_id"`
	Total         int64     `json:"total"` // Minor units
	Currency      string    `json:"currency"`
	Status        string    `json:"status"`
	TransactionID string    `json:"transaction_id,omitempty"`
	StockReduced  bool      `json:"stock_reduced"`
	CreatedAt     time.Time `json:"created_at"`
}

// OrderRepository implements the host order callbacks on Postgres.
type OrderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) CreateOrder(ctx context.Context, customerID uuid.UUID, total int64, currency string) (*Order, error) {
	query := `
		INSERT INTO orders (customer_id, total, currency, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, customer_id, total, currency, status, stock_reduced, created_at
	`
	var o Order
	err := r.db.QueryRow(ctx, query, customerID, total, currency, OrderPending).Scan(
		&o.ID, &o.CustomerID, &o.Total, &o.Currency, &o.Status, &o.StockReduced, &o.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return &o, nil
}

func (r *OrderRepository) GetOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	query := `
		SELECT id, customer_id, total, currency, status, COALESCE(transaction_id, ''), stock_reduced, created_at
		FROM orders WHERE id = $1
	`
	var o Order
	err := r.db.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.CustomerID, &o.Total, &o.Currency, &o.Status, &o.TransactionID, &o.StockReduced, &o.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, payments.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) OrderTotal(ctx context.Context, orderID uuid.UUID) (domain.Money, error) {
	var total int64
	var currency string
	err := r.db.QueryRow(ctx, `SELECT total, currency FROM orders WHERE id = $1`, orderID).Scan(&total, &currency)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Money{}, payments.ErrOrderNotFound
	}
	if err != nil {
		return domain.Money{}, err
	}
	return domain.NewMoney(total, domain.Currency(currency)), nil
}

func (r *OrderRepository) SetOnHold(ctx context.Context, orderID uuid.UUID, note string) error {
	if err := r.setStatus(ctx, orderID, OrderOnHold); err != nil {
		return err
	}
	return r.AddNote(ctx, orderID, note)
}

func (r *OrderRepository) CompleteOrder(ctx context.Context, orderID uuid.UUID, transactionID string) error {
	ct, err := r.db.Exec(ctx,
		`UPDATE orders SET status = $2, transaction_id = $3 WHERE id = $1`,
		orderID, OrderProcessing, transactionID,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return payments.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) FailOrder(ctx context.Context, orderID uuid.UUID, reason string) error {
	if err := r.setStatus(ctx, orderID, OrderFailed); err != nil {
		return err
	}
	return r.AddNote(ctx, orderID, reason)
}

// ReduceStock flips the order's stock hold once. Idempotent: a second
// call matches no rows and does nothing.
func (r *OrderRepository) ReduceStock(ctx context.Context, orderID uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`UPDATE orders SET stock_reduced = TRUE WHERE id = $1 AND stock_reduced = FALSE`,
		orderID,
	)
	return err
}

// EmptyCart drops the buyer's active cart after the prompt went out.
func (r *OrderRepository) EmptyCart(ctx context.Context, orderID uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM carts WHERE customer_id = (SELECT customer_id FROM orders WHERE id = $1)`,
		orderID,
	)
	return err
}

// AddNote appends to the order's audit trail.
func (r *OrderRepository) AddNote(ctx context.Context, orderID uuid.UUID, note string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO order_notes (order_id, note) VALUES ($1, $2)`,
		orderID, note,
	)
	return err
}

// Notes returns the audit trail, oldest first.
func (r *OrderRepository) Notes(ctx context.Context, orderID uuid.UUID) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT note FROM order_notes WHERE order_id = $1 ORDER BY created_at ASC`,
		orderID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (r *OrderRepository) setStatus(ctx context.Context, orderID uuid.UUID, status string) error {
	ct, err := r.db.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, orderID, status)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return payments.ErrOrderNotFound
	}
	return nil
}
