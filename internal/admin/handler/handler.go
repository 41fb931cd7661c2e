// Package handler exposes the review-queue API. The router mounts these
// routes behind the admin middleware; the handler itself does no role checks.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"chaincomply/internal/admin"
	regmodels "chaincomply/internal/registration/models"
	regstore "chaincomply/internal/registration/store"
	id "chaincomply/pkg/domain"
	dErrors "chaincomply/pkg/domain-errors"
	"chaincomply/pkg/platform/httputil"
	"chaincomply/pkg/requestcontext"
)

// Service is the admin surface the handler depends on.
type Service interface {
	ListRegistrations(ctx context.Context, filter regstore.Filter) ([]*admin.RegistrationOverview, error)
	GetRegistration(ctx context.Context, regID id.RegistrationID) (*admin.RegistrationOverview, error)
	StartReview(ctx context.Context, reviewerID id.UserID, regID id.RegistrationID) (*regmodels.Registration, error)
	Review(ctx context.Context, reviewerID id.UserID, regID id.RegistrationID, decision admin.Decision, note string) (*regmodels.Registration, error)
}

// Handler serves the admin endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New creates an admin Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the admin routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/admin/registrations", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Route("/{registrationID}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.Post("/claim", h.handleClaim)
			r.Post("/review", h.handleReview)
		})
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := parseFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	overviews, err := h.service.ListRegistrations(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "review queue listing failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	if overviews == nil {
		overviews = []*admin.RegistrationOverview{}
	}
	httputil.WriteJSON(w, http.StatusOK, admin.RegistrationListResponse{
		Registrations: overviews,
		Total:         len(overviews),
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	regID, ok := h.registrationID(w, r)
	if !ok {
		return
	}

	overview, err := h.service.GetRegistration(r.Context(), regID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, overview)
}

func (h *Handler) handleClaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	regID, ok := h.registrationID(w, r)
	if !ok {
		return
	}

	reg, err := h.service.StartReview(ctx, requestcontext.UserID(ctx), regID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, reg)
}

func (h *Handler) handleReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	regID, ok := h.registrationID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[ReviewRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	decision, err := admin.ParseDecision(req.Decision)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	reg, err := h.service.Review(ctx, requestcontext.UserID(ctx), regID, decision, req.Note)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, reg)
}

func (h *Handler) registrationID(w http.ResponseWriter, r *http.Request) (id.RegistrationID, bool) {
	regID, err := id.ParseRegistrationID(chi.URLParam(r, "registrationID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.RegistrationID{}, false
	}
	return regID, true
}

// parseFilter reads status (comma-separated), entity_type, and limit query
// parameters into a store filter.
func parseFilter(r *http.Request) (regstore.Filter, error) {
	var filter regstore.Filter
	q := r.URL.Query()

	if raw := q.Get("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			status, err := regmodels.ParseStatus(strings.TrimSpace(part))
			if err != nil {
				return filter, err
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}
	if raw := q.Get("entity_type"); raw != "" {
		entityType, err := id.ParseEntityType(raw)
		if err != nil {
			return filter, err
		}
		filter.EntityType = entityType
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return filter, dErrors.New(dErrors.CodeBadRequest, "limit must be a non-negative integer")
		}
		filter.Limit = n
	}
	return filter, nil
}
