// Package csrf implements double-submit anti-forgery tokens. A token minted
// at render time is written into both a cookie and the page payload; a
// mutating submission is accepted only when the browser echoes back a value
// exactly equal to its cookie copy.
//
// The token binds no identity and no expiry — it only proves the submitting
// client is the same browser context that rendered the form. Each render
// mints a fresh token that supersedes the previous one.
package csrf

import (
	"crypto/rand"
	"encoding/base64"
	"io"
)

const (
	// CookieName is the cookie carrying the render-time copy of the token.
	CookieName = "hq_csrf"
	// HeaderName is the header a non-form client may echo the token in.
	HeaderName = "X-CSRF-Token"
	// FieldName is the hidden form field a browser form echoes the token in.
	FieldName = "csrf_token"

	// CookieMaxAge bounds the cookie lifetime. Tokens are superseded on
	// every render, so this only caps how long an idle form stays usable.
	CookieMaxAge = 3600

	tokenBytes = 32
)

// Token mints a fresh high-entropy anti-forgery token. It fails only when
// the entropy source fails.
func Token() (string, error) {
	raw := make([]byte, tokenBytes)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Validate reports whether the submitted token matches the cookie copy.
// Both values must be non-empty and exactly equal — not prefix, not
// case-folded. Plain equality is fine here: the value is already known to
// any party able to submit it, so there is no secret to recover bit by bit.
func Validate(cookieToken, submittedToken string) bool {
	if cookieToken == "" || submittedToken == "" {
		return false
	}
	return cookieToken == submittedToken
}
