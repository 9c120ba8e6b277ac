package authz

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"log/slog"

	"github.com/lodestar-crm/lodestar-crm/internal/platform/httpx"
	"github.com/lodestar-crm/lodestar-crm/internal/shared"
)

// IdentityResolver loads the current identity for a user ID, fresh from
// the user record. Permission changes take effect on the next request.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, userID int64) (*Identity, error)
}

// Middleware wires authorization helpers for HTTP handlers.
type Middleware struct {
	Resolver IdentityResolver
	Logger   *slog.Logger
}

// RequireAuth ensures the request carries a valid authenticated session
// and places the resolved identity in the request context.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := m.identity(r)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), id)))
	})
}

// RequireRoles ensures the current identity holds one of the given roles.
func (m Middleware) RequireRoles(roles ...Role) func(http.Handler) http.Handler {
	return m.require(Policy{Roles: roles})
}

// RequireCapability ensures the current identity holds the capability.
func (m Middleware) RequireCapability(cap Capability) func(http.Handler) http.Handler {
	return m.require(Policy{Capability: cap})
}

func (m Middleware) require(pol Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := IdentityFromContext(r.Context())
			if id == nil {
				resolved, err := m.identity(r)
				if err != nil {
					httpx.RespondError(w, err)
					return
				}
				id = resolved
				r = r.WithContext(ContextWithIdentity(r.Context(), id))
			}
			if Decide(id, pol) != Allowed {
				httpx.RespondError(w, httpx.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) identity(r *http.Request) (*Identity, error) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return nil, httpx.ErrUnauthenticated
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return nil, httpx.ErrUnauthenticated
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("authz parse user id", slog.String("value", raw))
		}
		return nil, httpx.ErrUnauthenticated
	}
	id, err := m.Resolver.ResolveIdentity(r.Context(), userID)
	if err != nil {
		return nil, err
	}
	return id, nil
}
