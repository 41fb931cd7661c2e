package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"chaincomply/internal/audit"
	dErrors "chaincomply/pkg/domain-errors"
)

// Outbox schema: events land here transactionally and the worker publishes
// them to Kafka, which is the long-term source of truth for the audit trail.
const outboxSchema = `
CREATE TABLE IF NOT EXISTS audit_outbox (
	id           UUID PRIMARY KEY,
	entity_id    TEXT NOT NULL DEFAULT '',
	action       TEXT NOT NULL,
	payload      JSONB NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL,
	published_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_audit_outbox_unpublished
	ON audit_outbox (created_at) WHERE published_at IS NULL;
`

// PostgresStore implements audit.Store over an outbox table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres creates a PostgreSQL audit store that writes to the outbox.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the outbox table and index if missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, outboxSchema); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStoreFailure, "migrate audit_outbox")
	}
	return nil
}

// Append writes one event to the outbox.
func (s *PostgresStore) Append(ctx context.Context, event audit.Event) error {
	if event.Action == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "audit event requires an action")
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeStoreFailure, "marshal audit event")
	}
	const query = `
		INSERT INTO audit_outbox (id, entity_id, action, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := s.db.ExecContext(ctx, query,
		event.ID, event.EntityID, event.Action, payload, event.Timestamp); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStoreFailure, "append audit event")
	}
	return nil
}

// ListByEntity returns events for one entity in chronological order.
func (s *PostgresStore) ListByEntity(ctx context.Context, entityID string) ([]audit.Event, error) {
	const query = `
		SELECT payload FROM audit_outbox
		WHERE entity_id = $1
		ORDER BY created_at
	`
	return s.queryEvents(ctx, query, entityID)
}

// Unpublished returns up to limit events not yet drained to Kafka.
func (s *PostgresStore) Unpublished(ctx context.Context, limit int) ([]audit.Event, error) {
	const query = `
		SELECT payload FROM audit_outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`
	if limit <= 0 {
		limit = 100
	}
	return s.queryEvents(ctx, query, limit)
}

// MarkPublished stamps events as drained.
func (s *PostgresStore) MarkPublished(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	const query = `
		UPDATE audit_outbox SET published_at = now()
		WHERE id = ANY($1::uuid[]) AND published_at IS NULL
	`
	idStrings := make([]string, len(ids))
	for i, id := range ids {
		idStrings[i] = id.String()
	}
	if _, err := s.db.ExecContext(ctx, query, pq.Array(idStrings)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStoreFailure, "mark audit events published")
	}
	return nil
}

func (s *PostgresStore) queryEvents(ctx context.Context, query string, args ...any) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStoreFailure, "query audit events")
	}
	defer rows.Close()

	var out []audit.Event
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeStoreFailure, "scan audit row")
		}
		var event audit.Event
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeStoreFailure, "decode audit payload")
		}
		out = append(out, event)
	}
	if err := rows.Err(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStoreFailure, "iterate audit rows")
	}
	return out, nil
}
