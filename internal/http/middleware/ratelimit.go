package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/wolfman30/territory-leads/internal/identity"
	"github.com/wolfman30/territory-leads/internal/observability/metrics"
	"github.com/wolfman30/territory-leads/internal/ratelimit"
	"github.com/wolfman30/territory-leads/pkg/logging"
)

// RateLimit charges each request against the caller's budget for policy and
// rejects over-budget requests with 429. It must run after RequireSession;
// requests without an actor are rejected with 401 rather than shared-counted.
func RateLimit(limiter *ratelimit.Limiter, policy ratelimit.Policy, m *metrics.DiscoveryMetrics, logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := identity.ActorFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, map[string]any{"error": "Unauthorized"})
				return
			}

			decision := limiter.Check(r.Context(), policy, actor.ID)
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(policy.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			if !decision.Allowed {
				retry := decision.RetryAfter(time.Now())
				w.Header().Set("Retry-After", strconv.Itoa(int(retry/time.Second)))
				m.ObserveRateLimited(policy.Scope)
				logger.Warn("rate limit exceeded",
					"scope", policy.Scope,
					"actor_id", actor.ID,
					"reset_at", decision.ResetAt,
				)
				writeError(w, http.StatusTooManyRequests, map[string]any{
					"error":   "Rate limit exceeded.",
					"resetAt": decision.ResetAt.UTC().Format(time.RFC3339),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
