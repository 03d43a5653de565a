package compliance

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/wolfman30/territory-leads/internal/identity"
	"github.com/wolfman30/territory-leads/internal/validation"
	"github.com/wolfman30/territory-leads/pkg/logging"
)

// EventQuerier reads the audit trail.
type EventQuerier interface {
	QueryEvents(ctx context.Context, filter AuditFilter) ([]AuditEvent, error)
}

// Handler serves the guardrails page data and the admin audit view.
type Handler struct {
	events EventQuerier
	logger *logging.Logger
}

func NewHandler(events EventQuerier, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{events: events, logger: logger}
}

// GetGuardrails handles GET /compliance/guardrails
func (h *Handler) GetGuardrails(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"guardrails": Guardrails()})
}

// ListEvents handles GET /compliance/events?actor=&type=&since=&limit= for
// admins. since is an RFC 3339 timestamp.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}
	if !actor.IsAdmin() {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
		return
	}

	q := r.URL.Query()
	verr := validation.New()
	filter := AuditFilter{ActorID: strings.TrimSpace(q.Get("actor"))}
	if raw := strings.TrimSpace(q.Get("type")); raw != "" {
		eventType, ok := ParseEventType(raw)
		if !ok {
			verr.Add("type", "must be one of %s, %s, %s", EventPlacesSearch, EventPlaceDetailsViewed, EventLeadCreated)
		}
		filter.EventType = eventType
	}
	if raw := strings.TrimSpace(q.Get("since")); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			verr.Add("since", "must be an RFC 3339 timestamp")
		}
		filter.Since = since.UTC()
	}
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			verr.Add("limit", "must be a positive integer")
		}
		filter.Limit = limit
	}
	if !verr.Empty() {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid payload", "details": verr})
		return
	}

	events, err := h.events.QueryEvents(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to query audit events", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to load audit events"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events, "count": len(events)})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
