// Package admin implements the compliance reviewer's side of the portal: the
// review queue with each application's latest risk assessment, and the
// approve/reject decisions that close a review.
package admin

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	assessmentmodels "chaincomply/internal/assessment/models"
	assessmentstore "chaincomply/internal/assessment/store"
	"chaincomply/internal/audit"
	"chaincomply/internal/registration/metrics"
	regmodels "chaincomply/internal/registration/models"
	regstore "chaincomply/internal/registration/store"
	id "chaincomply/pkg/domain"
	dErrors "chaincomply/pkg/domain-errors"
	"chaincomply/pkg/platform/sentinel"
	"chaincomply/pkg/requestcontext"
)

// latestFanout caps concurrent assessment lookups when building the queue.
const latestFanout = 8

// Decision is a reviewer's verdict on an application.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// ParseDecision validates an external decision string.
func ParseDecision(s string) (Decision, error) {
	switch Decision(s) {
	case DecisionApprove, DecisionReject:
		return Decision(s), nil
	default:
		return "", dErrors.Newf(dErrors.CodeBadRequest, "unknown review decision %q", s)
	}
}

// RegistrationStore is the registration persistence surface the reviewer
// operations need.
type RegistrationStore interface {
	Get(ctx context.Context, regID id.RegistrationID) (*regmodels.Registration, error)
	Update(ctx context.Context, reg *regmodels.Registration) error
	List(ctx context.Context, filter regstore.Filter) ([]*regmodels.Registration, error)
}

// AssessmentReader fetches the latest risk assessment per entity.
type AssessmentReader interface {
	Latest(ctx context.Context, entityID id.EntityID) (*assessmentmodels.RiskAssessment, error)
}

// AuditPublisher records compliance-relevant actions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service implements the reviewer operations.
type Service struct {
	registrations RegistrationStore
	assessments   AssessmentReader
	logger        *slog.Logger
	metrics       *metrics.Metrics
	audit         AuditPublisher
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
func New(registrations RegistrationStore, assessments AssessmentReader, opts ...Option) *Service {
	s := &Service{
		registrations: registrations,
		assessments:   assessments,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListRegistrations builds the review queue: registrations matching the
// filter, each annotated with its latest risk assessment. Lookups fan out
// concurrently; an entity with no history simply has no summary.
func (s *Service) ListRegistrations(ctx context.Context, filter regstore.Filter) ([]*RegistrationOverview, error) {
	regs, err := s.registrations.List(ctx, filter)
	if err != nil {
		return nil, s.translateStoreErr(err)
	}

	overviews := make([]*RegistrationOverview, len(regs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(latestFanout)
	for i, reg := range regs {
		g.Go(func() error {
			overview := &RegistrationOverview{Registration: reg}
			latest, err := s.assessments.Latest(gctx, reg.EntityID)
			switch {
			case errors.Is(err, assessmentstore.ErrNoAssessments):
				// Never submitted; the queue shows it without a risk line.
			case err != nil:
				return err
			default:
				overview.LatestAssessment = &AssessmentSummary{
					OverallScore: latest.OverallScore,
					RiskLevel:    latest.RiskLevel,
					Timestamp:    latest.Timestamp,
				}
			}
			overviews[i] = overview
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return overviews, nil
}

// GetRegistration returns one registration with its latest assessment, for
// the reviewer's detail view. Unlike the registrant API there is no ownership
// check; the admin middleware is the gate.
func (s *Service) GetRegistration(ctx context.Context, regID id.RegistrationID) (*RegistrationOverview, error) {
	reg, err := s.registrations.Get(ctx, regID)
	if err != nil {
		return nil, s.translateStoreErr(err)
	}
	overview := &RegistrationOverview{Registration: reg}
	latest, err := s.assessments.Latest(ctx, reg.EntityID)
	if err != nil && !errors.Is(err, assessmentstore.ErrNoAssessments) {
		return nil, err
	}
	if err == nil {
		overview.LatestAssessment = &AssessmentSummary{
			OverallScore: latest.OverallScore,
			RiskLevel:    latest.RiskLevel,
			Timestamp:    latest.Timestamp,
		}
	}
	return overview, nil
}

// StartReview claims a submitted application for review.
func (s *Service) StartReview(ctx context.Context, reviewerID id.UserID, regID id.RegistrationID) (*regmodels.Registration, error) {
	reg, err := s.registrations.Get(ctx, regID)
	if err != nil {
		return nil, s.translateStoreErr(err)
	}
	if !reg.Status.CanTransition(regmodels.StatusUnderReview) {
		return nil, dErrors.Newf(dErrors.CodeConflict, "registration in status %s cannot enter review", reg.Status)
	}

	reg.Status = regmodels.StatusUnderReview
	reg.ReviewedBy = &reviewerID
	reg.UpdatedAt = requestcontext.Now(ctx).UTC()
	if err := s.registrations.Update(ctx, reg); err != nil {
		return nil, s.translateStoreErr(err)
	}
	return reg, nil
}

// Review closes a review with an approval or rejection. Rejections carry a
// note so the registrant knows what to fix before resubmitting.
func (s *Service) Review(ctx context.Context, reviewerID id.UserID, regID id.RegistrationID, decision Decision, note string) (*regmodels.Registration, error) {
	note = strings.TrimSpace(note)
	if decision == DecisionReject && note == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "a rejection requires a review note")
	}

	reg, err := s.registrations.Get(ctx, regID)
	if err != nil {
		return nil, s.translateStoreErr(err)
	}
	target := regmodels.StatusApproved
	if decision == DecisionReject {
		target = regmodels.StatusRejected
	}
	if !reg.Status.CanTransition(target) {
		return nil, dErrors.Newf(dErrors.CodeConflict, "registration in status %s cannot be reviewed", reg.Status)
	}

	now := requestcontext.Now(ctx).UTC()
	reg.Status = target
	reg.ReviewNote = note
	reg.ReviewedBy = &reviewerID
	reg.ReviewedAt = &now
	reg.UpdatedAt = now
	if err := s.registrations.Update(ctx, reg); err != nil {
		return nil, s.translateStoreErr(err)
	}

	if s.metrics != nil {
		s.metrics.IncReviewed(string(reg.EntityType), string(decision))
	}
	s.emitAudit(ctx, audit.Event{
		ActorID:  reviewerID.String(),
		EntityID: reg.EntityID.String(),
		Action:   audit.ActionRegistrationReviewed,
		Subject:  reg.ID.String(),
		Decision: string(decision),
		Reason:   note,
	})
	s.logger.InfoContext(ctx, "registration reviewed",
		"request_id", requestcontext.RequestID(ctx),
		"registration_id", reg.ID,
		"decision", decision,
	)
	return reg, nil
}

func (s *Service) translateStoreErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "registration not found")
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
