package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WebhookJob is one queued merchant notification.
type WebhookJob struct {
	ID       uuid.UUID
	URL      string
	Event    string
	Payload  []byte
	Attempts int
}

// WebhookJobRepository backs the delivery worker. Jobs are claimed with
// SKIP LOCKED so multiple instances never double-send.
type WebhookJobRepository struct {
	db  *pgxpool.Pool
	url string
}

func NewWebhookJobRepository(db *pgxpool.Pool, merchantURL string) *WebhookJobRepository {
	return &WebhookJobRepository{db: db, url: merchantURL}
}

// Enqueue records a notification for the worker to deliver.
func (r *WebhookJobRepository) Enqueue(ctx context.Context, event string, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO webhook_jobs (url, event, payload) VALUES ($1, $2, $3)`,
		r.url, event, body,
	)
	return err
}

// NextJob claims the oldest due PENDING job, or returns nil when idle.
func (r *WebhookJobRepository) NextJob(ctx context.Context) (*WebhookJob, error) {
	query := `
		SELECT id, url, event, payload, attempts
		FROM webhook_jobs
		WHERE status = 'PENDING' AND next_run_at <= NOW()
		ORDER BY created_at ASC
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	`
	var job WebhookJob
	err := r.db.QueryRow(ctx, query).Scan(&job.ID, &job.URL, &job.Event, &job.Payload, &job.Attempts)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *WebhookJobRepository) MarkDelivered(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE webhook_jobs SET status = 'COMPLETED' WHERE id = $1`, id)
	return err
}

func (r *WebhookJobRepository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE webhook_jobs SET status = 'FAILED' WHERE id = $1`, id)
	return err
}

// Reschedule bumps the attempt counter and sets the next delivery time.
func (r *WebhookJobRepository) Reschedule(ctx context.Context, id uuid.UUID, nextRun time.Time) error {
	_, err := r.db.Exec(ctx,
		`UPDATE webhook_jobs SET attempts = attempts + 1, next_run_at = $2 WHERE id = $1`,
		id, nextRun,
	)
	return err
}
