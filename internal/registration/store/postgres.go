package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"chaincomply/internal/registration/models"
	id "chaincomply/pkg/domain"
	"chaincomply/pkg/platform/sentinel"
)

const registrationSchema = `
CREATE TABLE IF NOT EXISTS registrations (
	id           UUID PRIMARY KEY,
	owner_id     UUID NOT NULL,
	entity_id    UUID NOT NULL,
	entity_type  TEXT NOT NULL,
	legal_name   TEXT NOT NULL,
	disclosures  JSONB NOT NULL DEFAULT '{}'::jsonb,
	status       TEXT NOT NULL,
	review_note  TEXT NOT NULL DEFAULT '',
	reviewed_by  UUID,
	reviewed_at  TIMESTAMPTZ,
	submitted_at TIMESTAMPTZ,
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS registrations_owner_idx
	ON registrations (owner_id, updated_at DESC);

CREATE INDEX IF NOT EXISTS registrations_status_idx
	ON registrations (status, updated_at DESC);
`

const registrationColumns = `id, owner_id, entity_id, entity_type, legal_name,
	disclosures, status, review_note, reviewed_by, reviewed_at, submitted_at,
	created_at, updated_at`

// PostgresStore persists registrations in postgres via database/sql with the
// lib/pq driver. Disclosures live in a JSONB document so form-step additions
// do not need a migration.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres wraps an open database handle.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the registrations table and its indexes.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, registrationSchema); err != nil {
		return fmt.Errorf("migrate registrations: %w", err)
	}
	return nil
}

// Create inserts a new registration row.
func (s *PostgresStore) Create(ctx context.Context, reg *models.Registration) error {
	disclosures, err := json.Marshal(reg.Disclosures)
	if err != nil {
		return fmt.Errorf("marshal disclosures: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO registrations (`+registrationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		reg.ID.String(), reg.OwnerID.String(), reg.EntityID.String(),
		string(reg.EntityType), reg.LegalName, disclosures, string(reg.Status),
		reg.ReviewNote, reviewedBy(reg), reg.ReviewedAt, reg.SubmittedAt,
		reg.CreatedAt, reg.UpdatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

// Get returns one registration by ID.
func (s *PostgresStore) Get(ctx context.Context, regID id.RegistrationID) (*models.Registration, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+registrationColumns+`
		FROM registrations
		WHERE id = $1`,
		regID.String(),
	)
	return scanRegistration(row)
}

// Update replaces a stored registration row.
func (s *PostgresStore) Update(ctx context.Context, reg *models.Registration) error {
	disclosures, err := json.Marshal(reg.Disclosures)
	if err != nil {
		return fmt.Errorf("marshal disclosures: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE registrations
		SET legal_name = $2, disclosures = $3, status = $4, review_note = $5,
			reviewed_by = $6, reviewed_at = $7, submitted_at = $8, updated_at = $9
		WHERE id = $1`,
		reg.ID.String(), reg.LegalName, disclosures, string(reg.Status),
		reg.ReviewNote, reviewedBy(reg), reg.ReviewedAt, reg.SubmittedAt,
		reg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update registration: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update registration: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// List returns registrations matching the filter, newest update first.
func (s *PostgresStore) List(ctx context.Context, filter Filter) ([]*models.Registration, error) {
	var (
		where []string
		args  []any
	)
	if !filter.OwnerID.IsNil() {
		args = append(args, filter.OwnerID.String())
		where = append(where, fmt.Sprintf("owner_id = $%d", len(args)))
	}
	if filter.EntityType != "" {
		args = append(args, string(filter.EntityType))
		where = append(where, fmt.Sprintf("entity_type = $%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, pq.Array(statuses))
		where = append(where, fmt.Sprintf("status = ANY($%d)", len(args)))
	}

	query := `SELECT ` + registrationColumns + ` FROM registrations`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY updated_at DESC, id"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var out []*models.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, reg)
	}
	return out, rows.Err()
}

func reviewedBy(reg *models.Registration) any {
	if reg.ReviewedBy == nil {
		return nil
	}
	return reg.ReviewedBy.String()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegistration(row rowScanner) (*models.Registration, error) {
	var (
		reg                         models.Registration
		rawID, rawOwner, rawEntity  string
		entityType, status          string
		disclosures                 []byte
		rawReviewer                 sql.NullString
		reviewedAt, submittedAt     sql.NullTime
	)
	err := row.Scan(&rawID, &rawOwner, &rawEntity, &entityType, &reg.LegalName,
		&disclosures, &status, &reg.ReviewNote, &rawReviewer, &reviewedAt,
		&submittedAt, &reg.CreatedAt, &reg.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan registration: %w", err)
	}

	if reg.ID, err = id.ParseRegistrationID(rawID); err != nil {
		return nil, fmt.Errorf("stored registration id: %w", err)
	}
	if reg.OwnerID, err = id.ParseUserID(rawOwner); err != nil {
		return nil, fmt.Errorf("stored owner id: %w", err)
	}
	if reg.EntityID, err = id.ParseEntityID(rawEntity); err != nil {
		return nil, fmt.Errorf("stored entity id: %w", err)
	}
	reg.EntityType = id.EntityType(entityType)
	reg.Status = models.Status(status)
	if err := json.Unmarshal(disclosures, &reg.Disclosures); err != nil {
		return nil, fmt.Errorf("stored disclosures: %w", err)
	}
	if rawReviewer.Valid {
		reviewer, err := id.ParseUserID(rawReviewer.String)
		if err != nil {
			return nil, fmt.Errorf("stored reviewer id: %w", err)
		}
		reg.ReviewedBy = &reviewer
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		reg.ReviewedAt = &t
	}
	if submittedAt.Valid {
		t := submittedAt.Time
		reg.SubmittedAt = &t
	}
	return &reg, nil
}
