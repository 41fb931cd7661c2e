package store

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"chaincomply/internal/assessment/models"
	id "chaincomply/pkg/domain"
	dErrors "chaincomply/pkg/domain-errors"
)

// Schema for the snapshot log. seq is a BIGSERIAL so concurrent appends with
// equal timestamps still have a total, deterministic history order. There are
// deliberately no UPDATE or DELETE paths over this table.
const snapshotSchema = `
CREATE TABLE IF NOT EXISTS risk_snapshots (
	seq           BIGSERIAL PRIMARY KEY,
	entity_id     UUID NOT NULL,
	entity_type   TEXT NOT NULL,
	overall_score DOUBLE PRECISION NOT NULL,
	risk_level    TEXT NOT NULL,
	categories    JSONB NOT NULL,
	assessed_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_risk_snapshots_entity_time
	ON risk_snapshots (entity_id, assessed_at, seq);
`

// PostgresSnapshotStore persists the snapshot log in PostgreSQL via pgx.
type PostgresSnapshotStore struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a snapshot store backed by the given pool.
func NewPostgres(pool *pgxpool.Pool) *PostgresSnapshotStore {
	return &PostgresSnapshotStore{pool: pool}
}

// Migrate creates the snapshot table and index if missing.
func (s *PostgresSnapshotStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, snapshotSchema); err != nil {
		return dErrors.Wrap(err, dErrors.CodeStoreFailure, "migrate risk_snapshots")
	}
	return nil
}

// Append inserts one snapshot row. The database assigns seq.
func (s *PostgresSnapshotStore) Append(ctx context.Context, assessment *models.RiskAssessment) error {
	if assessment == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "assessment cannot be nil")
	}
	if assessment.EntityID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "assessment is missing its entity ID")
	}

	categories, err := json.Marshal(assessment.Categories)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeStoreFailure, "marshal categories")
	}

	const query = `
		INSERT INTO risk_snapshots (entity_id, entity_type, overall_score, risk_level, categories, assessed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.pool.Exec(ctx, query,
		assessment.EntityID.String(),
		assessment.EntityType.String(),
		assessment.OverallScore,
		assessment.RiskLevel.String(),
		categories,
		assessment.Timestamp,
	)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeStoreFailure, "append risk snapshot")
	}
	return nil
}

// History selects the entity's snapshots inside the range, ascending by
// (assessed_at, seq).
func (s *PostgresSnapshotStore) History(ctx context.Context, entityID id.EntityID, r Range) ([]*models.RiskAssessment, error) {
	query := `
		SELECT entity_id, entity_type, overall_score, risk_level, categories, assessed_at
		FROM risk_snapshots
		WHERE entity_id = $1
	`
	args := []any{entityID.String()}
	if !r.From.IsZero() {
		args = append(args, r.From)
		query += ` AND assessed_at >= $` + itoa(len(args))
	}
	if !r.To.IsZero() {
		args = append(args, r.To)
		query += ` AND assessed_at <= $` + itoa(len(args))
	}
	query += ` ORDER BY assessed_at, seq`
	if r.Limit > 0 {
		args = append(args, r.Limit)
		query += ` LIMIT $` + itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStoreFailure, "query snapshot history")
	}
	defer rows.Close()

	var out []*models.RiskAssessment
	for rows.Next() {
		a, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStoreFailure, "iterate snapshot history")
	}
	return out, nil
}

// Latest returns the newest snapshot for an entity.
func (s *PostgresSnapshotStore) Latest(ctx context.Context, entityID id.EntityID) (*models.RiskAssessment, error) {
	const query = `
		SELECT entity_id, entity_type, overall_score, risk_level, categories, assessed_at
		FROM risk_snapshots
		WHERE entity_id = $1
		ORDER BY assessed_at DESC, seq DESC
		LIMIT 1
	`
	rows, err := s.pool.Query(ctx, query, entityID.String())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStoreFailure, "query latest snapshot")
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeStoreFailure, "query latest snapshot")
		}
		return nil, ErrNoAssessments
	}
	return scanSnapshot(rows)
}

func scanSnapshot(rows pgx.Rows) (*models.RiskAssessment, error) {
	var (
		a             models.RiskAssessment
		entityID      string
		entityType    string
		riskLevel     string
		categoriesRaw []byte
	)
	if err := rows.Scan(&entityID, &entityType, &a.OverallScore, &riskLevel, &categoriesRaw, &a.Timestamp); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStoreFailure, "scan snapshot row")
	}

	parsedEntity, err := id.ParseEntityID(entityID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStoreFailure, "snapshot row has invalid entity ID")
	}
	a.EntityID = parsedEntity

	parsedType, err := id.ParseEntityType(entityType)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStoreFailure, "snapshot row has invalid entity type")
	}
	a.EntityType = parsedType

	parsedLevel, err := models.ParseRiskLevel(riskLevel)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStoreFailure, "snapshot row has invalid risk level")
	}
	a.RiskLevel = parsedLevel

	if err := json.Unmarshal(categoriesRaw, &a.Categories); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStoreFailure, "decode snapshot categories")
	}
	return &a, nil
}

func itoa(n int) string { return strconv.Itoa(n) }
