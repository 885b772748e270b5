package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	trustcore "github.com/hoqouqi/trustcore"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "hq_session"

type claimsContextKey struct{}

// ClaimsFromContext returns the verified session claims stored by [Guard].
func ClaimsFromContext(ctx context.Context) (trustcore.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(trustcore.Claims)
	return claims, ok
}

// Guard resolves the session cookie to verified claims and stores them in
// the request context. Requests without a valid session get 401; downstream
// handlers read the identity with [ClaimsFromContext].
func Guard(engine *trustcore.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, trustcore.ErrUnauthenticated.Error(), http.StatusUnauthorized)
				return
			}

			ctx := trustcore.WithClientIP(r.Context(), ClientIP(r))

			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				http.Error(w, trustcore.ErrUnauthenticated.Error(), http.StatusUnauthorized)
				return
			}

			claims, ok := engine.VerifySession(ctx, cookie.Value)
			if !ok {
				http.Error(w, trustcore.ErrUnauthenticated.Error(), http.StatusUnauthorized)
				return
			}

			ctx = context.WithValue(ctx, claimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RoleResolver reports the current role for a user, typically from the
// database. Returning ok=false means the account no longer exists or is
// disabled.
type RoleResolver func(ctx context.Context, userID int64) (trustcore.Role, bool)

// GuardWithRoleResolver behaves like [Guard] but re-resolves the user's role
// on every request instead of trusting the one baked into the token.
// Stateless tokens otherwise carry a stale role until they expire; routes
// where a demotion must bite immediately pay the lookup here.
func GuardWithRoleResolver(engine *trustcore.Engine, resolve RoleResolver) func(http.Handler) http.Handler {
	guard := Guard(engine)
	return func(next http.Handler) http.Handler {
		return guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if resolve == nil {
				next.ServeHTTP(w, r)
				return
			}

			claims, _ := ClaimsFromContext(r.Context())
			role, ok := resolve(r.Context(), claims.UserID)
			if !ok || !role.Valid() {
				http.Error(w, trustcore.ErrUnauthenticated.Error(), http.StatusUnauthorized)
				return
			}

			claims.Role = role
			ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		}))
	}
}

// RequireRole rejects authenticated requests whose role is outside the
// allowed set. It must run after [Guard].
func RequireRole(roles ...trustcore.Role) func(http.Handler) http.Handler {
	allowed := make(map[trustcore.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				http.Error(w, trustcore.ErrUnauthenticated.Error(), http.StatusUnauthorized)
				return
			}
			if !allowed[claims.Role] {
				http.Error(w, trustcore.ErrForbidden.Error(), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP resolves the originating address: first hop of X-Forwarded-For
// when present, else the connection's remote address.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
