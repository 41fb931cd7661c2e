// Package audit captures an append-only trail of compliance-relevant actions:
// registration lifecycle transitions, review decisions, risk assessments, and
// session events. Events are transport-agnostic; stores and the Kafka outbox
// worker fan them out.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Actions recorded by the portal.
const (
	ActionRegistrationCreated   = "registration_created"
	ActionRegistrationSubmitted = "registration_submitted"
	ActionRegistrationReviewed  = "registration_reviewed"
	ActionAssessmentComputed    = "risk_assessment_computed"
	ActionUserLoggedIn          = "user_logged_in"
	ActionSessionRevoked        = "session_revoked"
)

// Event is one audit record. Emitted by domain services; never updated.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	ActorID   string    `json:"actor_id,omitempty"`
	EntityID  string    `json:"entity_id,omitempty"`
	Action    string    `json:"action"`
	Subject   string    `json:"subject,omitempty"`
	Decision  string    `json:"decision,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

// Store is the append-only persistence contract for audit events. The outbox
// methods let the Kafka worker drain events exactly once per row.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByEntity(ctx context.Context, entityID string) ([]Event, error)
	Unpublished(ctx context.Context, limit int) ([]Event, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID) error
}
