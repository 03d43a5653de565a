package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/wolfman30/territory-leads/internal/validation"
	"github.com/wolfman30/territory-leads/pkg/logging"
)

// LoginRequest is the credential form.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Handler serves POST /auth/login.
type Handler struct {
	auth   *Authenticator
	logger *logging.Logger
}

func NewHandler(auth *Authenticator, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{auth: auth, logger: logger}
}

// Login handles POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 16<<10)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid payload"})
		return
	}
	verr := validation.New()
	if strings.TrimSpace(req.Email) == "" {
		verr.Add("email", "is required")
	}
	if req.Password == "" {
		verr.Add("password", "is required")
	}
	if !verr.Empty() {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid payload", "details": verr})
		return
	}

	session, err := h.auth.Login(r.Context(), req.Email, req.Password)
	switch {
	case err == nil:
		h.logger.Info("login succeeded", "actor_id", session.Actor.ID, "role", session.Actor.Role)
		writeJSON(w, http.StatusOK, session)
	case errors.Is(err, ErrInvalidCredentials):
		h.logger.Warn("login rejected")
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid email or password"})
	case errors.Is(err, ErrAuthDisabled):
		h.logger.Error("login attempted without session secret")
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	default:
		h.logger.Error("login failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Login failed"})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
