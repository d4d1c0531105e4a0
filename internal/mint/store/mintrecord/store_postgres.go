package mintrecord

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mintgate/internal/mint/models"
	id "mintgate/pkg/domain"
)

// PostgresMintRecordStore persists per (pool, identity) admission counters in
// PostgreSQL.
//
// Expected schema:
//
//	CREATE TABLE mint_records (
//	    pool_id  INTEGER NOT NULL,
//	    identity TEXT NOT NULL,
//	    count    BIGINT NOT NULL DEFAULT 0,
//	    PRIMARY KEY (pool_id, identity)
//	);
type PostgresMintRecordStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed mint record store.
func NewPostgres(db *sql.DB) *PostgresMintRecordStore {
	return &PostgresMintRecordStore{db: db}
}

func (s *PostgresMintRecordStore) Get(ctx context.Context, pool id.PoolID, identity id.Identity) (*models.MintRecord, error) {
	query := `
		SELECT pool_id, identity, count
		FROM mint_records
		WHERE pool_id = $1 AND identity = $2
	`
	record := &models.MintRecord{}
	var ident string
	err := s.db.QueryRowContext(ctx, query, int(pool), identity.String()).Scan(&record.Pool, &ident, &record.Count)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get mint record: %w", err)
	}
	record.Identity = id.Identity(ident)
	return record, nil
}

func (s *PostgresMintRecordStore) Increment(ctx context.Context, pool id.PoolID, identity id.Identity, amount uint64) (*models.MintRecord, error) {
	query := `
		INSERT INTO mint_records (pool_id, identity, count)
		VALUES ($1, $2, $3)
		ON CONFLICT (pool_id, identity) DO UPDATE SET
			count = mint_records.count + EXCLUDED.count
		RETURNING pool_id, identity, count
	`
	record := &models.MintRecord{}
	var ident string
	err := s.db.QueryRowContext(ctx, query, int(pool), identity.String(), amount).Scan(&record.Pool, &ident, &record.Count)
	if err != nil {
		return nil, fmt.Errorf("increment mint record: %w", err)
	}
	record.Identity = id.Identity(ident)
	return record, nil
}

func (s *PostgresMintRecordStore) Reset(ctx context.Context, pool id.PoolID, identity id.Identity) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM mint_records WHERE pool_id = $1 AND identity = $2`,
		int(pool), identity.String(),
	)
	if err != nil {
		return fmt.Errorf("reset mint record: %w", err)
	}
	return nil
}
