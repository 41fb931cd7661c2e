// Package handler exposes the risk assessment API over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"chaincomply/internal/assessment"
	"chaincomply/internal/assessment/facts"
	"chaincomply/internal/assessment/models"
	"chaincomply/internal/assessment/store"
	id "chaincomply/pkg/domain"
	dErrors "chaincomply/pkg/domain-errors"
	"chaincomply/pkg/platform/httputil"
	"chaincomply/pkg/requestcontext"
)

// Service is the assessment surface the handler depends on.
type Service interface {
	Assess(ctx context.Context, entityID id.EntityID, entityType id.EntityType, factMap facts.Map) (*assessment.Result, error)
	History(ctx context.Context, entityID id.EntityID, r store.Range) ([]*models.RiskAssessment, error)
	Latest(ctx context.Context, entityID id.EntityID) (*models.RiskAssessment, error)
	Trend(ctx context.Context, entityID id.EntityID, r store.Range) ([]models.TrendPoint, error)
}

// Handler serves the assessment endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New creates an assessment Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the assessment routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/entities/{entityID}/assessments", func(r chi.Router) {
		r.Post("/", h.handleAssess)
		r.Get("/", h.handleHistory)
		r.Get("/latest", h.handleLatest)
		r.Get("/trend", h.handleTrend)
	})
}

func (h *Handler) handleAssess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	entityID, err := id.ParseEntityID(chi.URLParam(r, "entityID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[AssessRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	entityType, err := id.ParseEntityType(req.EntityType)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	factMap, err := req.FactMap()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.Assess(ctx, entityID, entityType, factMap)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeInvalidInput) {
			h.logger.ErrorContext(ctx, "assessment failed",
				"request_id", requestID,
				"entity_id", entityID,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}
	if result.StoreErr != nil {
		h.logger.ErrorContext(ctx, "assessment computed but snapshot not persisted",
			"request_id", requestID,
			"entity_id", entityID,
			"error", result.StoreErr,
		)
	}

	httputil.WriteJSON(w, http.StatusCreated, result.Assessment)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	entityID, ok := h.entityID(w, r)
	if !ok {
		return
	}
	rng, err := parseRange(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	history, err := h.service.History(r.Context(), entityID, rng)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if history == nil {
		history = []*models.RiskAssessment{}
	}
	httputil.WriteJSON(w, http.StatusOK, history)
}

func (h *Handler) handleLatest(w http.ResponseWriter, r *http.Request) {
	entityID, ok := h.entityID(w, r)
	if !ok {
		return
	}

	latest, err := h.service.Latest(r.Context(), entityID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, latest)
}

func (h *Handler) handleTrend(w http.ResponseWriter, r *http.Request) {
	entityID, ok := h.entityID(w, r)
	if !ok {
		return
	}
	rng, err := parseRange(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	points, err := h.service.Trend(r.Context(), entityID, rng)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if points == nil {
		points = []models.TrendPoint{}
	}
	httputil.WriteJSON(w, http.StatusOK, points)
}

func (h *Handler) entityID(w http.ResponseWriter, r *http.Request) (id.EntityID, bool) {
	entityID, err := id.ParseEntityID(chi.URLParam(r, "entityID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.EntityID{}, false
	}
	return entityID, true
}

// parseRange reads from/to (RFC 3339) and limit query parameters.
func parseRange(r *http.Request) (store.Range, error) {
	var rng store.Range
	q := r.URL.Query()

	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return rng, dErrors.New(dErrors.CodeBadRequest, "from must be RFC 3339")
		}
		rng.From = t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return rng, dErrors.New(dErrors.CodeBadRequest, "to must be RFC 3339")
		}
		rng.To = t
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return rng, dErrors.New(dErrors.CodeBadRequest, "limit must be a non-negative integer")
		}
		rng.Limit = n
	}
	return rng, nil
}
