package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/wolfman30/territory-leads/internal/identity"
	"github.com/wolfman30/territory-leads/pkg/logging"
)

// SessionVerifier turns a bearer token into an actor.
type SessionVerifier interface {
	Verify(token string) (identity.Actor, error)
}

// RequireSession rejects requests without a valid bearer session with 401 and
// stores the actor in the request context for downstream handlers.
func RequireSession(verifier SessionVerifier, logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				writeError(w, http.StatusUnauthorized, map[string]any{"error": "Unauthorized"})
				return
			}
			actor, err := verifier.Verify(strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")))
			if err != nil {
				logger.Debug("session rejected", "path", r.URL.Path, "error", err)
				writeError(w, http.StatusUnauthorized, map[string]any{"error": "Unauthorized"})
				return
			}
			next.ServeHTTP(w, r.WithContext(identity.WithActor(r.Context(), actor)))
		})
	}
}

func writeError(w http.ResponseWriter, status int, payload map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
