// Package assessment assembles complete risk assessments: it evaluates every
// factor a profile names, aggregates category and overall scores, attaches
// remediation guidance, and records snapshots for history queries.
package assessment

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"chaincomply/internal/assessment/aggregate"
	"chaincomply/internal/assessment/evaluator"
	"chaincomply/internal/assessment/facts"
	"chaincomply/internal/assessment/metrics"
	"chaincomply/internal/assessment/models"
	"chaincomply/internal/assessment/profile"
	"chaincomply/internal/assessment/recommend"
	"chaincomply/internal/assessment/store"
	"chaincomply/internal/audit"
	id "chaincomply/pkg/domain"
	dErrors "chaincomply/pkg/domain-errors"
	"chaincomply/pkg/requestcontext"
)

// AuditPublisher records compliance-relevant actions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service runs the scoring pipeline and persists the results.
type Service struct {
	registry  *evaluator.Registry
	profiles  profile.Set
	snapshots store.SnapshotStore
	logger    *slog.Logger
	metrics   *metrics.Metrics
	audit     AuditPublisher
	tracer    trace.Tracer
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

// New constructs a Service. Every profile is validated against the registry up
// front so a miswired factor name fails at startup, not on the first request.
func New(registry *evaluator.Registry, profiles profile.Set, snapshots store.SnapshotStore, opts ...Option) (*Service, error) {
	if err := profiles.Validate(registry); err != nil {
		return nil, err
	}
	s := &Service{
		registry:  registry,
		profiles:  profiles,
		snapshots: snapshots,
		logger:    slog.Default(),
		tracer:    otel.Tracer("chaincomply/internal/assessment"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Result is the outcome of one assessment run. StoreErr is set when the
// snapshot could not be persisted; the assessment itself is still valid and
// returned to the caller in that case.
type Result struct {
	Assessment *models.RiskAssessment
	StoreErr   error
}

// Assess scores one entity from its facts.
//
// Scoring is pure: the same entity type and facts always produce the same
// scores. The timestamp comes from the request clock, and persistence or
// audit failures never alter the computed assessment.
func (s *Service) Assess(ctx context.Context, entityID id.EntityID, entityType id.EntityType, factMap facts.Map) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "assessment.Assess", trace.WithAttributes(
		attribute.String("entity.id", entityID.String()),
		attribute.String("entity.type", string(entityType)),
	))
	defer span.End()

	started := time.Now()

	prof, ok := s.profiles.For(entityType)
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeConfiguration, "no scoring profile for entity type %s", entityType)
	}

	if err := s.checkRequiredFacts(prof, factMap); err != nil {
		span.RecordError(err)
		return nil, err
	}

	categories := make([]models.CategoryScore, 0, len(prof.Categories))
	for _, cat := range prof.Categories {
		scores := make([]models.FactorScore, 0, len(cat.Factors))
		for _, name := range cat.Factors {
			eval, ok := s.registry.Get(name)
			if !ok {
				// Unreachable after profile validation in New.
				return nil, dErrors.Newf(dErrors.CodeConfiguration, "no evaluator registered for factor %s", name)
			}
			score := eval.Evaluate(factMap.Get(name))
			scores = append(scores, recommend.Apply(eval, score))
		}
		categories = append(categories, aggregate.Category(cat.Name, scores, cat.Weights))
	}

	overall, err := aggregate.Overall(categories)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	assessment := &models.RiskAssessment{
		EntityID:     entityID,
		EntityType:   entityType,
		OverallScore: overall.Value,
		RiskLevel:    overall.RiskLevel,
		Categories:   categories,
		Timestamp:    requestcontext.Now(ctx).UTC(),
	}
	span.SetAttributes(attribute.String("assessment.risk_level", string(overall.RiskLevel)))

	if s.metrics != nil {
		s.metrics.ObserveAssessment(string(entityType), string(overall.RiskLevel), time.Since(started))
	}

	result := &Result{Assessment: assessment}
	if err := s.snapshots.Append(ctx, assessment); err != nil {
		result.StoreErr = err
		if s.metrics != nil {
			s.metrics.IncSnapshotAppendFailure()
		}
		s.logger.Error("snapshot append failed",
			"entity_id", entityID, "entity_type", entityType, "error", err)
	}

	s.emitAudit(ctx, entityID, assessment)
	return result, nil
}

// History returns persisted assessments for an entity, oldest first.
func (s *Service) History(ctx context.Context, entityID id.EntityID, r store.Range) ([]*models.RiskAssessment, error) {
	return s.snapshots.History(ctx, entityID, r)
}

// Latest returns the most recent assessment for an entity.
func (s *Service) Latest(ctx context.Context, entityID id.EntityID) (*models.RiskAssessment, error) {
	return s.snapshots.Latest(ctx, entityID)
}

// Trend reduces an entity's history to the overall-score time series.
func (s *Service) Trend(ctx context.Context, entityID id.EntityID, r store.Range) ([]models.TrendPoint, error) {
	history, err := s.snapshots.History(ctx, entityID, r)
	if err != nil {
		return nil, err
	}
	points := make([]models.TrendPoint, len(history))
	for i, a := range history {
		points[i] = models.TrendPoint{
			Timestamp:    a.Timestamp,
			OverallScore: a.OverallScore,
			RiskLevel:    a.RiskLevel,
		}
	}
	return points, nil
}

// checkRequiredFacts rejects the run when any required factor has no fact.
// Optional absences score at the evaluator's conservative floor instead.
func (s *Service) checkRequiredFacts(prof profile.Profile, factMap facts.Map) error {
	var missing []string
	for _, cat := range prof.Categories {
		for _, name := range cat.Factors {
			eval, ok := s.registry.Get(name)
			if !ok {
				continue
			}
			if eval.Required() && factMap.Get(name).IsAbsent() {
				missing = append(missing, name)
			}
		}
	}
	if len(missing) > 0 {
		return dErrors.Newf(dErrors.CodeInvalidInput, "missing required facts: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (s *Service) emitAudit(ctx context.Context, entityID id.EntityID, assessment *models.RiskAssessment) {
	if s.audit == nil {
		return
	}
	err := s.audit.Emit(ctx, audit.Event{
		EntityID: entityID.String(),
		Action:   audit.ActionAssessmentComputed,
		Subject:  string(assessment.EntityType),
		Decision: string(assessment.RiskLevel),
	})
	if err != nil {
		s.logger.Warn("audit emit failed", "entity_id", entityID, "error", err)
	}
}
