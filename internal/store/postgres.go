package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yourusername/jobhunter-dashboard/internal/model"
)

// PostgresStore keeps client storage in the client_storage key/value
// table, created by the migrations in migrations/
type PostgresStore struct {
	pool *pgxpool.Pool
	// namespace separates several dashboards sharing one database
	namespace string
}

func NewPostgresStore(pool *pgxpool.Pool, namespace string) *PostgresStore {
	return &PostgresStore{pool: pool, namespace: namespace}
}

func (s *PostgresStore) Load(ctx context.Context) (*model.UserProfile, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `
		SELECT value FROM client_storage
		WHERE namespace = $1 AND key = $2
	`, s.namespace, UserKey).Scan(&raw)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading stored user: %w", err)
	}

	var user model.UserProfile
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("decoding stored user: %w", err)
	}
	return &user, nil
}

func (s *PostgresStore) Save(ctx context.Context, user *model.UserProfile) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO client_storage (namespace, key, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (namespace, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`, s.namespace, UserKey, raw)
	if err != nil {
		return fmt.Errorf("saving stored user: %w", err)
	}
	return nil
}

func (s *PostgresStore) Clear(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM client_storage WHERE namespace = $1 AND key = $2
	`, s.namespace, UserKey)
	if err != nil {
		return fmt.Errorf("clearing stored user: %w", err)
	}
	return nil
}
