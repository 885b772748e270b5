package middleware

import (
	"net/http"
	"strconv"

	trustcore "github.com/hoqouqi/trustcore"
	"github.com/hoqouqi/trustcore/ratelimit"
)

// RateLimit throttles an action per originating address. The key is
// "<action>:<client-ip>", so anonymous actions like login and registration
// never share a budget across actions or addresses. Denials get 429;
// a failed shared backend gets 503 rather than a silent admit.
func RateLimit(engine *trustcore.Engine, action string, policy ratelimit.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)
			ctx := trustcore.WithClientIP(r.Context(), ip)

			ok, err := engine.Allow(ctx, action+":"+ip, policy)
			if err != nil {
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}
			if !ok {
				http.Error(w, trustcore.ErrRateLimited.Error(), http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimitByUser throttles an action per authenticated identity. It must
// run after [Guard]; requests without claims get 401.
func RateLimitByUser(engine *trustcore.Engine, action string, policy ratelimit.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, okClaims := ClaimsFromContext(r.Context())
			if !okClaims {
				http.Error(w, trustcore.ErrUnauthenticated.Error(), http.StatusUnauthorized)
				return
			}

			ctx := trustcore.WithClientIP(r.Context(), ClientIP(r))

			ok, err := engine.Allow(ctx, action+":"+strconv.FormatInt(claims.UserID, 10), policy)
			if err != nil {
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}
			if !ok {
				http.Error(w, trustcore.ErrRateLimited.Error(), http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
