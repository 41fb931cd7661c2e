// Package store persists risk assessments as an append-only snapshot log per
// entity. The engine computes assessments without assuming persistence
// succeeded; append failures are the caller's concern, never scoring input.
package store

import (
	"context"
	"time"

	"chaincomply/internal/assessment/models"
	id "chaincomply/pkg/domain"
	dErrors "chaincomply/pkg/domain-errors"
)

// ErrNoAssessments is returned by Latest when an entity has no history yet.
var ErrNoAssessments = dErrors.New(dErrors.CodeNotFound, "no assessments recorded for entity")

// Range bounds a history query. Zero From/To leave that side unbounded;
// Limit <= 0 means no cap. Bounds are inclusive.
type Range struct {
	From  time.Time
	To    time.Time
	Limit int
}

// Contains reports whether t falls inside the range bounds.
func (r Range) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}

// SnapshotStore is the narrow persistence contract the engine depends on.
//
// History returns assessments ascending by timestamp; concurrent appends with
// equal timestamps are ordered by a store-assigned monotonic sequence number,
// so the returned order is deterministic regardless of arrival order. The log
// is append-only: no implementation exposes update or delete.
type SnapshotStore interface {
	Append(ctx context.Context, assessment *models.RiskAssessment) error
	History(ctx context.Context, entityID id.EntityID, r Range) ([]*models.RiskAssessment, error)
	Latest(ctx context.Context, entityID id.EntityID) (*models.RiskAssessment, error)
}
