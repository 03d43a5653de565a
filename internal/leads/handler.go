package leads

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/territory-leads/internal/access"
	"github.com/wolfman30/territory-leads/internal/identity"
	"github.com/wolfman30/territory-leads/internal/observability/metrics"
	"github.com/wolfman30/territory-leads/internal/validation"
	"github.com/wolfman30/territory-leads/pkg/logging"
)

const maxBodyBytes = 64 << 10

// Auditor records lead creation in the compliance trail.
type Auditor interface {
	LogLeadCreated(ctx context.Context, actorID, leadID, sourcePlaceID string) error
}

// Handler handles HTTP requests for leads
type Handler struct {
	repo      Repository
	validator *Validator
	audit     Auditor
	metrics   *metrics.DiscoveryMetrics
	logger    *logging.Logger
}

// NewHandler creates a new leads handler. audit and m may be nil.
func NewHandler(repo Repository, audit Auditor, m *metrics.DiscoveryMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:      repo,
		validator: NewValidator(),
		audit:     audit,
		metrics:   m,
		logger:    logger,
	}
}

// CreateLeadResponse is returned after a lead is stored.
type CreateLeadResponse struct {
	LeadID string `json:"leadId"`
}

// CreateLead handles POST /leads
func (h *Handler) CreateLead(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	var req CreateLeadRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.logger.Warn("failed to decode lead request", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid payload"})
		return
	}

	lead, err := h.validator.Validate(req)
	if err != nil {
		writeInvalid(w, err)
		return
	}
	lead.AssignedToID = actor.ID
	lead.OwnerEmail = actor.Email

	if err := h.repo.Create(r.Context(), lead); err != nil {
		h.logger.Error("failed to create lead", "actor_id", actor.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to create lead"})
		return
	}

	h.metrics.ObserveLeadCreated(string(lead.Status))
	if h.audit != nil {
		if err := h.audit.LogLeadCreated(r.Context(), actor.ID, lead.ID, lead.SourcePlaceID); err != nil {
			h.logger.Error("failed to audit lead creation", "lead_id", lead.ID, "error", err)
		}
	}
	h.logger.Info("lead created", "lead_id", lead.ID, "actor_id", actor.ID, "status", lead.Status)

	writeJSON(w, http.StatusCreated, CreateLeadResponse{LeadID: lead.ID})
}

// ListLeadsResponse is the response for listing leads
type ListLeadsResponse struct {
	Leads []*Lead `json:"leads"`
	Count int     `json:"count"`
}

// ListLeads handles GET /leads?status=&city=&owner=
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	q := r.URL.Query()
	requested := access.LeadFilter{
		OwnerID: q.Get("owner"),
		Status:  strings.TrimSpace(q.Get("status")),
		City:    q.Get("city"),
	}
	if requested.Status != "" {
		if _, ok := ParseStatus(requested.Status); !ok {
			verr := validation.New()
			verr.Add("status", "must be one of NEW, QUALIFIED, CONTACTED, OPPORTUNITY, CLOSED")
			writeInvalid(w, verr)
			return
		}
	}

	filter := access.VisibleLeadFilter(actor, requested)
	leads, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list leads", "actor_id", actor.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to list leads"})
		return
	}

	writeJSON(w, http.StatusOK, ListLeadsResponse{Leads: leads, Count: len(leads)})
}

// GetLead handles GET /leads/{leadID}. Leads the caller may not see answer
// exactly like leads that do not exist.
func (h *Handler) GetLead(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	lead, err := h.repo.GetByID(r.Context(), chi.URLParam(r, "leadID"))
	if err != nil && !errors.Is(err, ErrLeadNotFound) {
		h.logger.Error("failed to load lead", "actor_id", actor.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to load lead"})
		return
	}
	if err != nil || !access.CanView(actor, lead) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Lead not found"})
		return
	}

	writeJSON(w, http.StatusOK, lead)
}

func writeInvalid(w http.ResponseWriter, err error) {
	var verr *validation.Errors
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid payload", "details": verr})
		return
	}
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid payload"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
