// Package handler exposes the registrant-facing registration API over HTTP.
// All routes assume an authenticated request context; the router mounts them
// behind the token middleware.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"chaincomply/internal/registration"
	"chaincomply/internal/registration/models"
	id "chaincomply/pkg/domain"
	dErrors "chaincomply/pkg/domain-errors"
	"chaincomply/pkg/platform/httputil"
	"chaincomply/pkg/requestcontext"
)

// Service is the registration surface the handler depends on.
type Service interface {
	Create(ctx context.Context, ownerID id.UserID, entityType id.EntityType, legalName string) (*models.Registration, error)
	Get(ctx context.Context, ownerID id.UserID, regID id.RegistrationID) (*models.Registration, error)
	ListMine(ctx context.Context, ownerID id.UserID) ([]*models.Registration, error)
	Update(ctx context.Context, ownerID id.UserID, regID id.RegistrationID, legalName string, patch models.Disclosures) (*models.Registration, error)
	Submit(ctx context.Context, ownerID id.UserID, regID id.RegistrationID) (*registration.SubmissionResult, error)
	Reopen(ctx context.Context, ownerID id.UserID, regID id.RegistrationID) (*models.Registration, error)
}

// Handler serves the registration endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New creates a registration Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the registration routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/registrations", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Get("/", h.handleList)
		r.Route("/{registrationID}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.Patch("/", h.handleUpdate)
			r.Post("/submit", h.handleSubmit)
			r.Post("/reopen", h.handleReopen)
		})
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	entityType, err := id.ParseEntityType(req.EntityType)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	reg, err := h.service.Create(ctx, requestcontext.UserID(ctx), entityType, req.LegalName)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, reg)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	regs, err := h.service.ListMine(ctx, requestcontext.UserID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if regs == nil {
		regs = []*models.Registration{}
	}
	httputil.WriteJSON(w, http.StatusOK, regs)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	regID, ok := h.registrationID(w, r)
	if !ok {
		return
	}

	reg, err := h.service.Get(ctx, requestcontext.UserID(ctx), regID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, reg)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	regID, ok := h.registrationID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	reg, err := h.service.Update(ctx, requestcontext.UserID(ctx), regID, req.LegalName, req.Disclosures)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, reg)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	regID, ok := h.registrationID(w, r)
	if !ok {
		return
	}

	result, err := h.service.Submit(ctx, requestcontext.UserID(ctx), regID)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeInvalidInput) && !dErrors.HasCode(err, dErrors.CodeConflict) &&
			!dErrors.HasCode(err, dErrors.CodeNotFound) {
			h.logger.ErrorContext(ctx, "registration submit failed",
				"request_id", requestID,
				"registration_id", regID,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}
	if result.SnapshotErr != nil {
		h.logger.ErrorContext(ctx, "submission scored but snapshot not persisted",
			"request_id", requestID,
			"registration_id", regID,
			"error", result.SnapshotErr,
		)
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleReopen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	regID, ok := h.registrationID(w, r)
	if !ok {
		return
	}

	reg, err := h.service.Reopen(ctx, requestcontext.UserID(ctx), regID)
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
