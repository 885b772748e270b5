package middleware

import (
	"net/http"

	trustcore "github.com/hoqouqi/trustcore"
	"github.com/hoqouqi/trustcore/csrf"
)

// CSRF enforces the double-submit token pair on state-changing methods.
// Safe methods pass through untouched: their authenticity is covered by the
// session token. The echoed copy is read from the [csrf.HeaderName] header
// first, then from the [csrf.FieldName] form field.
func CSRF(engine *trustcore.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isMutating(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			ctx := trustcore.WithClientIP(r.Context(), ClientIP(r))

			var cookieToken string
			if cookie, err := r.Cookie(csrf.CookieName); err == nil {
				cookieToken = cookie.Value
			}

			submitted := r.Header.Get(csrf.HeaderName)
			if submitted == "" {
				submitted = r.PostFormValue(csrf.FieldName)
			}

			if !engine.ValidateCSRF(ctx, cookieToken, submitted) {
				http.Error(w, trustcore.ErrCSRFRejected.Error(), http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SetCSRFCookie mints a render token, writes its cookie copy, and returns
// the value for embedding in the page payload.
func SetCSRFCookie(engine *trustcore.Engine, w http.ResponseWriter, secure bool) (string, error) {
	token, err := engine.IssueCSRFToken()
	if err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     csrf.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   csrf.CookieMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})

	return token, nil
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
