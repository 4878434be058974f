package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"namereg/internal/platform/middleware"
	"namereg/internal/registry/models"
	id "namereg/pkg/domain"
	dErrors "namereg/pkg/domain-errors"
)

// Service defines the registry operations the HTTP layer delegates to.
type Service interface {
	Reserve(ctx context.Context, name, extension string, target id.Identity) (string, error)
	Claim(ctx context.Context, name, extension string, duration time.Duration) (string, error)
	Revoke(ctx context.Context, key string) (string, error)
	Transfer(ctx context.Context, key string, newOwner id.Identity) (string, error)
	GetDomain(ctx context.Context, key string) (*models.Domain, error)
	GetHistory(ctx context.Context, key string) ([]models.HistoryEntry, error)
	Lookup(ctx context.Context, key string) (id.Identity, error)
	ReverseLookup(ctx context.Context, owner id.Identity) ([]string, error)
	IsClaimable(ctx context.Context, key string) (bool, error)
	RegistryOwner(ctx context.Context) id.Identity
}

// Handler handles registry endpoints.
type Handler struct {
	logger    *slog.Logger
	registry  Service
	validator middleware.TokenValidator
}

// New creates a new registry Handler.
func New(registry Service, validator middleware.TokenValidator, logger *slog.Logger) *Handler {
	return &Handler{
		logger:    logger,
		registry:  registry,
		validator: validator,
	}
}

// Register mounts the registry routes. Mutations require a bearer token;
// reads are open.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(h.logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.RequestTime)
	router.Use(middleware.Logger(h.logger))
	router.Use(middleware.Timeout(30 * time.Second))

	router.Group(func(gr chi.Router) {
		gr.Use(middleware.RequireAuth(h.validator, h.logger))
		gr.Post("/registry/reserve", h.handleReserve)
		gr.Post("/registry/claim", h.handleClaim)
		gr.Post("/registry/domains/{key}/revoke", h.handleRevoke)
		gr.Post("/registry/domains/{key}/transfer", h.handleTransfer)
	})

	router.Get("/registry/owner", h.handleRegistryOwner)
	router.Get("/registry/domains/{key}", h.handleGetDomain)
	router.Get("/registry/domains/{key}/history", h.handleGetHistory)
	router.Get("/registry/domains/{key}/owner", h.handleLookup)
	router.Get("/registry/domains/{key}/claimable", h.handleIsClaimable)
	router.Get("/registry/owners/{identity}/domains", h.handleReverseLookup)

	r.Mount("/", router)
}

type reserveRequest struct {
	Name      string `json:"name"`
	Extension string `json:"extension"`
	Target    string `json:"target"`
}

func (h *Handler) handleReserve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req reserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.warn(ctx, "invalid reserve request", err)
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	target, err := id.ParseIdentity(req.Target)
	if err != nil {
		h.warn(ctx, "invalid reserve target", err)
		writeError(w, err)
		return
	}

	key, err := h.registry.Reserve(ctx, req.Name, req.Extension, target)
	if err != nil {
		h.operationFailed(ctx, "reserve", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"key": key})
}

type claimRequest struct {
	Name            string `json:"name"`
	Extension       string `json:"extension"`
	DurationSeconds int64  `json:"duration_seconds"`
}

func (h *Handler) handleClaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req claimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.warn(ctx, "invalid claim request", err)
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	key, err := h.registry.Claim(ctx, req.Name, req.Extension, time.Duration(req.DurationSeconds)*time.Second)
	if err != nil {
		h.operationFailed(ctx, "claim", err)
		writeError(w, err)
		return
	}

	record, err := h.registry.GetDomain(ctx, key)
	if err != nil {
		h.operationFailed(ctx, "claim", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"key":         key,
		"valid_until": record.ValidUntil,
	})
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	key, err := h.registry.Revoke(ctx, chi.URLParam(r, "key"))
	if err != nil {
		h.operationFailed(ctx, "revoke", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"key": key})
}

type transferRequest struct {
	NewOwner string `json:"new_owner"`
}

func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.warn(ctx, "invalid transfer request", err)
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	newOwner, err := id.ParseIdentity(req.NewOwner)
	if err != nil {
		h.warn(ctx, "invalid transfer recipient", err)
		writeError(w, err)
		return
	}

	key, err := h.registry.Transfer(ctx, chi.URLParam(r, "key"), newOwner)
	if err != nil {
		h.operationFailed(ctx, "transfer", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"key": key})
}

func (h *Handler) handleGetDomain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	record, err := h.registry.GetDomain(ctx, chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (h *Handler) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	entries, err := h.registry.GetHistory(ctx, chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	owner, err := h.registry.Lookup(ctx, chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"owner": owner.String()})
}

func (h *Handler) handleIsClaimable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claimable, err := h.registry.IsClaimable(ctx, chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"claimable": claimable})
}

func (h *Handler) handleReverseLookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	owner, err := id.ParseIdentity(chi.URLParam(r, "identity"))
	if err != nil {
		writeError(w, err)
		return
	}

	keys, err := h.registry.ReverseLookup(ctx, owner)
	if err != nil {
		writeError(w, err)
		return
	}
	if keys == nil {
		keys = []string{}
	}

	writeJSON(w, http.StatusOK, map[string][]string{"keys": keys})
}

func (h *Handler) handleRegistryOwner(w http.ResponseWriter, r *http.Request) {
	owner := h.registry.RegistryOwner(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"owner": owner.String()})
}

func (h *Handler) warn(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", middleware.GetRequestID(ctx),
		"error", err.Error(),
	)
}

func (h *Handler) operationFailed(ctx context.Context, operation string, err error) {
	h.logger.WarnContext(ctx, "registry operation failed",
		"operation", operation,
		"request_id", middleware.GetRequestID(ctx),
		"error", err.Error(),
	)
}
