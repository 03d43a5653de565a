package users

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wolfman30/territory-leads/internal/access"
	"github.com/wolfman30/territory-leads/internal/identity"
	"github.com/wolfman30/territory-leads/pkg/logging"
)

// Owner is an entry in the admin owner filter.
type Owner struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Handler serves the owner directory.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// ListOwners handles GET /owners. Non-admins get 404 so the route does not
// reveal that a directory exists.
func (h *Handler) ListOwners(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}
	if !access.CanListOwners(actor) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
		return
	}

	rms, err := h.repo.ListByRole(r.Context(), identity.RoleRM)
	if err != nil {
		h.logger.Error("failed to list owners", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to list owners"})
		return
	}

	owners := make([]Owner, 0, len(rms))
	for _, u := range rms {
		owners = append(owners, Owner{ID: u.ID, Email: u.Email, Name: u.Name})
	}
	writeJSON(w, http.StatusOK, map[string]any{"owners": owners})
}

// Profile is the signed-in user's own account view.
type Profile struct {
	ID    string        `json:"id"`
	Email string        `json:"email"`
	Name  string        `json:"name,omitempty"`
	Role  identity.Role `json:"role"`
}

// GetMe handles GET /me. A session whose account no longer exists is
// treated as unauthenticated.
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	u, err := h.repo.GetByID(r.Context(), actor.ID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			return
		}
		h.logger.Error("failed to load profile", "actor_id", actor.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to load profile"})
		return
	}
	writeJSON(w, http.StatusOK, Profile{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
