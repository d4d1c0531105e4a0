package allowlist

import (
	"context"
	"database/sql"
	"fmt"

	"mintgate/internal/mint/models"
	id "mintgate/pkg/domain"

	dErrors "mintgate/pkg/domain-errors"
)

// PostgresAllowlistStore persists allowlist membership in PostgreSQL.
//
// Expected schema:
//
//	CREATE TABLE pool_allowlist (
//	    id         UUID PRIMARY KEY,
//	    pool_id    INTEGER NOT NULL,
//	    identity   TEXT NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL,
//	    created_by TEXT NOT NULL,
//	    UNIQUE (pool_id, identity)
//	);
type PostgresAllowlistStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed allowlist store.
func NewPostgres(db *sql.DB) *PostgresAllowlistStore {
	return &PostgresAllowlistStore{db: db}
}

func (s *PostgresAllowlistStore) IsAllowed(ctx context.Context, pool id.PoolID, identity id.Identity) (bool, error) {
	if identity.IsZero() {
		return false, nil
	}
	query := `
		SELECT EXISTS (
			SELECT 1 FROM pool_allowlist
			WHERE pool_id = $1 AND identity = $2
		)
	`
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, int(pool), identity.String()).Scan(&exists); err != nil {
		return false, fmt.Errorf("check allowlist: %w", err)
	}
	return exists, nil
}

func (s *PostgresAllowlistStore) Add(ctx context.Context, entry *models.AllowlistEntry) error {
	if entry == nil {
		return dErrors.New(dErrors.CodeBadRequest, "allowlist entry is required")
	}
	query := `
		INSERT INTO pool_allowlist (id, pool_id, identity, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (pool_id, identity) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		entry.ID, int(entry.Pool), entry.Identity.String(), entry.CreatedAt, entry.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("add allowlist entry: %w", err)
	}
	return nil
}

func (s *PostgresAllowlistStore) Remove(ctx context.Context, pool id.PoolID, identity id.Identity) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM pool_allowlist WHERE pool_id = $1 AND identity = $2`,
		int(pool), identity.String(),
	)
	if err != nil {
		return fmt.Errorf("remove allowlist entry: %w", err)
	}
	return nil
}

func (s *PostgresAllowlistStore) List(ctx context.Context, pool id.PoolID) ([]*models.AllowlistEntry, error) {
	query := `
		SELECT id, pool_id, identity, created_at, created_by
		FROM pool_allowlist
		WHERE pool_id = $1
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query, int(pool))
	if err != nil {
		return nil, fmt.Errorf("list allowlist entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.AllowlistEntry, 0)
	for rows.Next() {
		entry := &models.AllowlistEntry{}
		var identity string
		if err := rows.Scan(&entry.ID, &entry.Pool, &identity, &entry.CreatedAt, &entry.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan allowlist entry: %w", err)
		}
		entry.Identity = id.Identity(identity)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list allowlist entries: %w", err)
	}
	return entries, nil
}
