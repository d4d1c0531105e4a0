package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	id "mintgate/pkg/domain"
	"mintgate/pkg/platform/audit"
)

// Store persists audit events in PostgreSQL.
//
// Expected schema:
//
//	CREATE TABLE audit_events (
//	    id         UUID PRIMARY KEY,
//	    category   TEXT NOT NULL,
//	    ts         TIMESTAMPTZ NOT NULL,
//	    action     TEXT NOT NULL,
//	    identity   TEXT NOT NULL DEFAULT '',
//	    pool       INTEGER NOT NULL DEFAULT 0,
//	    replica    TEXT NOT NULL DEFAULT '',
//	    amount     BIGINT NOT NULL DEFAULT 0,
//	    reason     TEXT NOT NULL DEFAULT '',
//	    request_id TEXT NOT NULL DEFAULT ''
//	);
//	CREATE INDEX audit_events_ts_idx ON audit_events (ts);
type Store struct {
	db *sql.DB
}

// New constructs a PostgreSQL-backed audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	query := `
		INSERT INTO audit_events (id, category, ts, action, identity, pool, replica, amount, reason, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.New(),
		string(event.Category),
		event.Timestamp,
		event.Action,
		event.Identity.String(),
		int(event.Pool),
		event.Replica.String(),
		event.Amount,
		event.Reason,
		event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]audit.Event, error) {
	query := `
		SELECT category, ts, action, identity, pool, replica, amount, reason, request_id
		FROM audit_events
		ORDER BY ts
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			event    audit.Event
			category string
			identity string
			pool     int
			replica  string
		)
		if err := rows.Scan(&category, &event.Timestamp, &event.Action,
			&identity, &pool, &replica, &event.Amount, &event.Reason, &event.RequestID); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.EventCategory(category)
		event.Identity = id.Identity(identity)
		event.Pool = id.PoolID(pool)
		event.Replica = id.ReplicaID(replica)
		events = append(events, event)
	}
	return events, rows.Err()
}
