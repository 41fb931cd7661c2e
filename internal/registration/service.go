// Package registration manages the application lifecycle for market
// participants: draft creation, step-by-step disclosure edits, and submission
// for compliance review. Submission normalizes the disclosures into engine
// facts and computes the initial risk assessment, so an application missing a
// required disclosure never reaches a reviewer.
package registration

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"chaincomply/internal/assessment"
	"chaincomply/internal/assessment/facts"
	assessmentmodels "chaincomply/internal/assessment/models"
	"chaincomply/internal/audit"
	"chaincomply/internal/registration/metrics"
	"chaincomply/internal/registration/models"
	"chaincomply/internal/registration/normalizer"
	"chaincomply/internal/registration/store"
	id "chaincomply/pkg/domain"
	dErrors "chaincomply/pkg/domain-errors"
	"chaincomply/pkg/platform/sentinel"
	"chaincomply/pkg/requestcontext"
)

// Store is the registration persistence contract.
type Store interface {
	Create(ctx context.Context, reg *models.Registration) error
	Get(ctx context.Context, regID id.RegistrationID) (*models.Registration, error)
	Update(ctx context.Context, reg *models.Registration) error
	List(ctx context.Context, filter store.Filter) ([]*models.Registration, error)
}

// Assessor computes a risk assessment from normalized facts.
type Assessor interface {
	Assess(ctx context.Context, entityID id.EntityID, entityType id.EntityType, factMap facts.Map) (*assessment.Result, error)
}

// AuditPublisher records compliance-relevant actions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service implements the registrant-facing registration operations.
type Service struct {
	store    Store
	assessor Assessor
	logger   *slog.Logger
	metrics  *metrics.Metrics
	audit    AuditPublisher
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithAuditPublisher enables audit trail events.
func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.audit = publisher
	}
}

// New constructs a Service.
func New(regStore Store, assessor Assessor, opts ...Option) *Service {
	s := &Service{
		store:    regStore,
		assessor: assessor,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmissionResult pairs the submitted registration with its initial risk
// assessment. SnapshotErr mirrors assessment.Result.StoreErr: the submission
// succeeded, but the assessment snapshot was not persisted.
type SubmissionResult struct {
	Registration *models.Registration             `json:"registration"`
	Assessment   *assessmentmodels.RiskAssessment `json:"assessment"`
	SnapshotErr  error                            `json:"-"`
}

// Create opens a new draft application. The entity ID minted here identifies
// the participant for its whole lifetime, including assessment history.
func (s *Service) Create(ctx context.Context, ownerID id.UserID, entityType id.EntityType, legalName string) (*models.Registration, error) {
	legalName = strings.TrimSpace(legalName)
	if legalName == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "legal name is required")
	}
	// Reject entity types nothing can normalize before a draft exists.
	if _, err := normalizer.For(entityType); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx).UTC()
	reg := &models.Registration{
		ID:         id.NewRegistrationID(),
		OwnerID:    ownerID,
		EntityID:   id.NewEntityID(),
		EntityType: entityType,
		LegalName:  legalName,
		Status:     models.StatusDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Create(ctx, reg); err != nil {
		return nil, s.translateStoreErr(err)
	}

	if s.metrics != nil {
		s.metrics.IncCreated(string(entityType))
	}
	s.emitAudit(ctx, audit.Event{
		ActorID:  ownerID.String(),
		EntityID: reg.EntityID.String(),
		Action:   audit.ActionRegistrationCreated,
		Subject:  reg.ID.String(),
	})
	s.logger.InfoContext(ctx, "registration draft created",
		"request_id", requestcontext.RequestID(ctx),
		"registration_id", reg.ID,
		"entity_type", entityType,
	)
	return reg, nil
}

// Get returns one of the caller's registrations.
func (s *Service) Get(ctx context.Context, ownerID id.UserID, regID id.RegistrationID) (*models.Registration, error) {
	return s.getOwned(ctx, ownerID, regID)
}

// ListMine returns all of the caller's registrations, newest update first.
func (s *Service) ListMine(ctx context.Context, ownerID id.UserID) ([]*models.Registration, error) {
	regs, err := s.store.List(ctx, store.Filter{OwnerID: ownerID})
	if err != nil {
		return nil, s.translateStoreErr(err)
	}
	return regs, nil
}

// Update merges a disclosure patch into a draft. Non-draft applications are
// immutable to the registrant; a rejected one must be reopened first.
func (s *Service) Update(ctx context.Context, ownerID id.UserID, regID id.RegistrationID, legalName string, patch models.Disclosures) (*models.Registration, error) {
	reg, err := s.getOwned(ctx, ownerID, regID)
	if err != nil {
		return nil, err
	}
	if reg.Status != models.StatusDraft {
		return nil, dErrors.Newf(dErrors.CodeConflict, "registration in status %s cannot be edited", reg.Status)
	}

	if name := strings.TrimSpace(legalName); name != "" {
		reg.LegalName = name
	}
	reg.Disclosures.Merge(patch)
	reg.UpdatedAt = requestcontext.Now(ctx).UTC()
	if err := s.store.Update(ctx, reg); err != nil {
		return nil, s.translateStoreErr(err)
	}
	return reg, nil
}

// Reopen turns a rejected application back into an editable draft. The review
// note stays on the record so the registrant can see what to fix.
func (s *Service) Reopen(ctx context.Context, ownerID id.UserID, regID id.RegistrationID) (*models.Registration, error) {
	reg, err := s.getOwned(ctx, ownerID, regID)
	if err != nil {
		return nil, err
	}
	if !reg.Status.CanTransition(models.StatusDraft) {
		return nil, dErrors.Newf(dErrors.CodeConflict, "registration in status %s cannot be reopened", reg.Status)
	}

	reg.Status = models.StatusDraft
	reg.SubmittedAt = nil
	reg.UpdatedAt = requestcontext.Now(ctx).UTC()
	if err := s.store.Update(ctx, reg); err != nil {
		return nil, s.translateStoreErr(err)
	}
	return reg, nil
}

// Submit moves a draft into review. The disclosures are normalized and scored
// first; a missing required disclosure fails the submission with
// CodeInvalidInput and the application stays a draft.
func (s *Service) Submit(ctx context.Context, ownerID id.UserID, regID id.RegistrationID) (*SubmissionResult, error) {
	reg, err := s.getOwned(ctx, ownerID, regID)
	if err != nil {
		return nil, err
	}
	if !reg.Status.CanTransition(models.StatusSubmitted) {
		return nil, dErrors.Newf(dErrors.CodeConflict, "registration in status %s cannot be submitted", reg.Status)
	}

	norm, err := normalizer.For(reg.EntityType)
	if err != nil {
		return nil, err
	}
	factMap, err := norm.Normalize(reg)
	if err != nil {
		return nil, err
	}
	result, err := s.assessor.Assess(ctx, reg.EntityID, reg.EntityType, factMap)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx).UTC()
	reg.Status = models.StatusSubmitted
	reg.SubmittedAt = &now
	reg.UpdatedAt = now
	if err := s.store.Update(ctx, reg); err != nil {
		return nil, s.translateStoreErr(err)
	}

	if s.metrics != nil {
		s.metrics.IncSubmitted(string(reg.EntityType))
	}
	s.emitAudit(ctx, audit.Event{
		ActorID:  ownerID.String(),
		EntityID: reg.EntityID.String(),
		Action:   audit.ActionRegistrationSubmitted,
		Subject:  reg.ID.String(),
		Decision: string(result.Assessment.RiskLevel),
	})
	s.logger.InfoContext(ctx, "registration submitted",
		"request_id", requestcontext.RequestID(ctx),
		"registration_id", reg.ID,
		"entity_type", reg.EntityType,
		"risk_level", result.Assessment.RiskLevel,
	)

	return &SubmissionResult{
		Registration: reg,
		Assessment:   result.Assessment,
		SnapshotErr:  result.StoreErr,
	}, nil
}

// getOwned loads a registration and enforces ownership. A registration owned
// by someone else reads as not found.
func (s *Service) getOwned(ctx context.Context, ownerID id.UserID, regID id.RegistrationID) (*models.Registration, error) {
	reg, err := s.store.Get(ctx, regID)
	if err != nil {
		return nil, s.translateStoreErr(err)
	}
	if reg.OwnerID != ownerID {
		return nil, dErrors.New(dErrors.CodeNotFound, "registration not found")
	}
	return reg, nil
}

func (s *Service) translateStoreErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "registration not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "registration already exists")
	default:
		return dErrors.Wrap(err, dErrors.CodeStoreFailure, "registration store")
	}
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed",
			"action", event.Action, "entity_id", event.EntityID, "error", err)
	}
}
