package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type KeyRepository struct {
	db *pgxpool.Pool
}

func NewKeyRepository(db *pgxpool.Pool) *KeyRepository {
	return &KeyRepository{db: db}
}

// SaveAPIKey stores the hashed key; the plain key is shown once and gone.
func (r *KeyRepository) SaveAPIKey(ctx context.Context, label, keyHash, keyPrefix string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO api_keys (label, key_hash, key_prefix) VALUES ($1, $2, $3)`,
		label, keyHash, keyPrefix,
	)
	if err != nil {
		return fmt.Errorf("failed to save api key: %w", err)
	}
	return nil
}
