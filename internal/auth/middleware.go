package auth

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/meridian-advisory/meridian/internal/authz"
	"github.com/meridian-advisory/meridian/internal/observability"
	"github.com/meridian-advisory/meridian/internal/platform/httpx"
	"github.com/meridian-advisory/meridian/internal/shared"
)

// Middleware wires authentication and authorization guards for HTTP handlers.
type Middleware struct {
	Service   *Service
	Logger    *slog.Logger
	Metrics   *observability.Metrics
	evaluator authz.Evaluator
}

// WithPrincipal resolves the session user into an authz.Principal and stores
// it in the request context. Anonymous visitors get a guest principal, which
// carries the self-service defaults (registration, account requests) and
// nothing else.
func (m Middleware) WithPrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := &authz.Principal{Role: authz.RoleGuest}
		if userID, ok := m.sessionUserID(r); ok {
			resolved, err := m.Service.Principal(r.Context(), userID)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Warn("resolve principal", slog.Int64("user_id", userID), slog.Any("error", err))
				}
			} else {
				principal = resolved
			}
		}
		next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
	})
}

// RequireAuth rejects unauthenticated requests. Guest principals are
// anonymous and do not count.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := PrincipalFromContext(r.Context())
		if principal == nil || principal.ID == 0 {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Require guards a route behind a general (entity-free) permission check.
// Entity-scoped checks stay in the services, which can build the resource
// reference from loaded rows.
func (m Middleware) Require(perm authz.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := PrincipalFromContext(r.Context())
			allowed := m.evaluator.HasPermission(principal, perm, nil)
			m.Metrics.ObserveAuthzDecision(string(perm), allowed)
			if !allowed {
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "missing permission "+string(perm))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) sessionUserID(r *http.Request) (int64, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0, false
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("parse session user id", slog.String("value", raw))
		}
		return 0, false
	}
	return id, true
}
