package pool

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mintgate/internal/mint/models"
	id "mintgate/pkg/domain"
	"mintgate/pkg/platform/sentinel"

	dErrors "mintgate/pkg/domain-errors"
)

// PostgresPoolStore persists pool definitions in PostgreSQL.
//
// Expected schema:
//
//	CREATE TABLE pools (
//	    id               INTEGER PRIMARY KEY,
//	    capacity         BIGINT NOT NULL,
//	    unit_price       BIGINT NOT NULL,
//	    minted           BIGINT NOT NULL DEFAULT 0,
//	    enabled          BOOLEAN NOT NULL DEFAULT FALSE,
//	    restricted       BOOLEAN NOT NULL DEFAULT FALSE,
//	    per_wallet_limit BIGINT NOT NULL,
//	    CHECK (minted <= capacity)
//	);
type PostgresPoolStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed pool store.
func NewPostgres(db *sql.DB) *PostgresPoolStore {
	return &PostgresPoolStore{db: db}
}

func (s *PostgresPoolStore) Get(ctx context.Context, poolID id.PoolID) (*models.Pool, error) {
	query := `
		SELECT id, capacity, unit_price, minted, enabled, restricted, per_wallet_limit
		FROM pools
		WHERE id = $1
	`
	p := &models.Pool{}
	err := s.db.QueryRowContext(ctx, query, int(poolID)).Scan(
		&p.ID, &p.Capacity, &p.UnitPrice, &p.Minted, &p.Enabled, &p.Restricted, &p.PerWalletLimit,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dErrors.Wrap(sentinel.ErrNotFound, dErrors.CodeNotFound, "pool not defined")
	}
	if err != nil {
		return nil, fmt.Errorf("get pool: %w", err)
	}
	return p, nil
}

func (s *PostgresPoolStore) Put(ctx context.Context, pool *models.Pool) error {
	if pool == nil {
		return dErrors.New(dErrors.CodeBadRequest, "pool is required")
	}
	query := `
		INSERT INTO pools (id, capacity, unit_price, minted, enabled, restricted, per_wallet_limit)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			capacity = EXCLUDED.capacity,
			unit_price = EXCLUDED.unit_price,
			enabled = EXCLUDED.enabled,
			restricted = EXCLUDED.restricted,
			per_wallet_limit = EXCLUDED.per_wallet_limit
	`
	_, err := s.db.ExecContext(ctx, query,
		int(pool.ID), pool.Capacity, pool.UnitPrice, pool.Minted, pool.Enabled, pool.Restricted, pool.PerWalletLimit,
	)
	if err != nil {
		return fmt.Errorf("put pool: %w", err)
	}
	return nil
}

func (s *PostgresPoolStore) IncrementMinted(ctx context.Context, poolID id.PoolID, amount uint64) (*models.Pool, error) {
	// The WHERE clause enforces the capacity invariant atomically.
	query := `
		UPDATE pools
		SET minted = minted + $2
		WHERE id = $1 AND capacity - minted >= $2
		RETURNING id, capacity, unit_price, minted, enabled, restricted, per_wallet_limit
	`
	p := &models.Pool{}
	err := s.db.QueryRowContext(ctx, query, int(poolID), amount).Scan(
		&p.ID, &p.Capacity, &p.UnitPrice, &p.Minted, &p.Enabled, &p.Restricted, &p.PerWalletLimit,
	)
	if errors.Is(err, sql.ErrNoRows) {
		// Either the pool is undefined or headroom was insufficient;
		// disambiguate for the caller.
		if _, getErr := s.Get(ctx, poolID); getErr != nil {
			return nil, getErr
		}
		return nil, dErrors.Wrap(sentinel.ErrInvalidState, dErrors.CodeCapacityExceeded, "minted count would exceed capacity")
	}
	if err != nil {
		return nil, fmt.Errorf("increment minted: %w", err)
	}
	return p, nil
}

func (s *PostgresPoolStore) SetEnabled(ctx context.Context, poolID id.PoolID, enabled bool) error {
	result, err := s.db.ExecContext(ctx, `UPDATE pools SET enabled = $2 WHERE id = $1`, int(poolID), enabled)
	if err != nil {
		return fmt.Errorf("set pool enabled: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set pool enabled: %w", err)
	}
	if affected == 0 {
		return dErrors.Wrap(sentinel.ErrNotFound, dErrors.CodeNotFound, "pool not defined")
	}
	return nil
}

func (s *PostgresPoolStore) List(ctx context.Context) ([]*models.Pool, error) {
	query := `
		SELECT id, capacity, unit_price, minted, enabled, restricted, per_wallet_limit
		FROM pools
		ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list pools: %w", err)
	}
	defer rows.Close()

	pools := make([]*models.Pool, 0)
	for rows.Next() {
		p := &models.Pool{}
		if err := rows.Scan(&p.ID, &p.Capacity, &p.UnitPrice, &p.Minted, &p.Enabled, &p.Restricted, &p.PerWalletLimit); err != nil {
			return nil, fmt.Errorf("scan pool: %w", err)
		}
		pools = append(pools, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list pools: %w", err)
	}
	return pools, nil
}
