package places

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/wolfman30/territory-leads/internal/identity"
	"github.com/wolfman30/territory-leads/internal/observability/metrics"
	"github.com/wolfman30/territory-leads/internal/validation"
	"github.com/wolfman30/territory-leads/pkg/logging"
)

const maxBodyBytes = 64 << 10

// Gateway is the directory surface the handler needs.
type Gateway interface {
	Search(ctx context.Context, params SearchParams) (*SearchResult, error)
	Details(ctx context.Context, placeID string) (*PlaceDetail, error)
}

// Auditor records that a lookup happened. Only counts and identifiers are
// passed, never place payloads.
type Auditor interface {
	LogPlacesSearch(ctx context.Context, actorID string, resultCount int, upstreamStatus string) error
	LogPlaceDetailsViewed(ctx context.Context, actorID, placeID string) error
}

// Handler serves the interactive discovery endpoints. Rate limiting is applied
// by middleware before these handlers run.
type Handler struct {
	gateway Gateway
	audit   Auditor
	metrics *metrics.DiscoveryMetrics
	logger  *logging.Logger
}

// NewHandler creates a places handler. audit and m may be nil.
func NewHandler(gateway Gateway, audit Auditor, m *metrics.DiscoveryMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{gateway: gateway, audit: audit, metrics: m, logger: logger}
}

// Search handles POST /places/search
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid payload"})
		return
	}
	params, err := req.Params()
	if err != nil {
		h.metrics.ObservePlacesCall("search", metrics.OutcomeInvalid, 0)
		writeInvalid(w, err)
		return
	}

	start := time.Now()
	result, err := h.gateway.Search(r.Context(), params)
	if err != nil {
		h.fail(w, "search", actor, err, start, "Search failed")
		return
	}
	h.metrics.ObservePlacesCall("search", metrics.OutcomeOK, time.Since(start).Seconds())
	h.metrics.ObserveSearchResults(len(result.Results))

	if h.audit != nil {
		if err := h.audit.LogPlacesSearch(r.Context(), actor.ID, len(result.Results), result.Status); err != nil {
			h.logger.Error("failed to audit places search", "actor_id", actor.ID, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, result)
}

// Details handles POST /places/details
func (h *Handler) Details(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	var req DetailsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid payload"})
		return
	}
	if err := ValidatePlaceID(req.PlaceID); err != nil {
		h.metrics.ObservePlacesCall("details", metrics.OutcomeInvalid, 0)
		writeInvalid(w, err)
		return
	}

	start := time.Now()
	detail, err := h.gateway.Details(r.Context(), req.PlaceID)
	if err != nil {
		h.fail(w, "details", actor, err, start, "Details lookup failed")
		return
	}
	h.metrics.ObservePlacesCall("details", metrics.OutcomeOK, time.Since(start).Seconds())

	if h.audit != nil {
		if err := h.audit.LogPlaceDetailsViewed(r.Context(), actor.ID, req.PlaceID); err != nil {
			h.logger.Error("failed to audit place details", "actor_id", actor.ID, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"details": detail})
}

func (h *Handler) fail(w http.ResponseWriter, operation string, actor identity.Actor, err error, start time.Time, message string) {
	elapsed := time.Since(start).Seconds()

	var verr *validation.Errors
	var cfgErr *ConfigError
	var upErr *UpstreamError
	switch {
	case errors.As(err, &verr):
		h.metrics.ObservePlacesCall(operation, metrics.OutcomeInvalid, 0)
		writeInvalid(w, err)
		return
	case errors.As(err, &cfgErr):
		h.metrics.ObservePlacesCall(operation, metrics.OutcomeConfigError, elapsed)
		h.logger.Error("places gateway misconfigured",
			"operation", operation,
			"error_kind", "configuration",
			"setting", cfgErr.Setting,
			"actor_id", actor.ID,
		)
	case errors.As(err, &upErr):
		h.metrics.ObservePlacesCall(operation, metrics.OutcomeUpstreamError, elapsed)
		h.logger.Error("places upstream call failed",
			"operation", operation,
			"error_kind", "upstream",
			"upstream_status", upErr.StatusCode,
			"actor_id", actor.ID,
			"error", err,
		)
	default:
		h.metrics.ObservePlacesCall(operation, metrics.OutcomeUpstreamError, elapsed)
		h.logger.Error("places call failed",
			"operation", operation,
			"error_kind", "upstream",
			"actor_id", actor.ID,
			"error", err,
		)
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": message})
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
