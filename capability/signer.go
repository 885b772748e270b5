// Package capability grants short-lived, cryptographically scoped access to
// private stored resources without a server-side lookup table.
//
// A grant binds (resource, grantee, expiry) under an HMAC signature and is
// carried as two URL query parameters next to the resource path:
//
//	/api/case-documents/17/download?expires=<unix>&sig=<hex>
//
// Verification recomputes the signature from the CURRENTLY AUTHENTICATED
// identity, not from anything in the URL, so a captured link replayed by a
// different logged-in user fails the signature check even before the
// caller's own authorization runs. Grants are never stored and cannot be
// revoked before expiry; the short default TTL is the mitigation.
package capability

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

const (
	// ParamExpires is the query parameter carrying the grant expiry.
	ParamExpires = "expires"
	// ParamSignature is the query parameter carrying the grant signature.
	ParamSignature = "sig"
)

// DefaultTTL is the grant lifetime applied when a caller passes a
// non-positive ttl to [Signer.Sign]. Grants are regenerated on every
// listing, so minutes are plenty.
const DefaultTTL = 10 * time.Minute

// Config defines a public type used by trustcore APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Secret []byte
	TTL    time.Duration

	// Now overrides the clock for tests. Nil means time.Now.
	Now func() time.Time
}

// Signer mints and verifies capability grants. Safe for concurrent use.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Grant is a signed capability over one resource for one identity. All three
// plaintext fields are covered by the signature; altering any of them
// invalidates it.
type Grant struct {
	ResourceID int64
	UserID     int64
	ExpiresAt  int64
	Signature  string
}

// NewSigner describes the newsigner operation and its observable behavior.
//
// NewSigner may return an error when input validation, dependency calls, or security checks fail.
// NewSigner does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewSigner(cfg Config) (*Signer, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("capability signer requires a signing secret")
	}
	if cfg.TTL < 0 {
		return nil, errors.New("invalid capability TTL configuration")
	}
	if cfg.TTL == 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Signer{
		secret: cfg.Secret,
		ttl:    cfg.TTL,
		now:    cfg.Now,
	}, nil
}

// Sign mints a grant over resourceID for userID expiring at now+ttl.
// A non-positive ttl selects the signer's configured TTL.
func (s *Signer) Sign(resourceID, userID int64, ttl time.Duration) Grant {
	if ttl <= 0 {
		ttl = s.ttl
	}

	expiresAt := s.now().Add(ttl).Unix()

	return Grant{
		ResourceID: resourceID,
		UserID:     userID,
		ExpiresAt:  expiresAt,
		Signature:  s.sign(resourceID, userID, expiresAt),
	}
}

// Verify reports whether a grant over resourceID presented by
// presentingUserID with the given expiry and signature is valid. The expiry
// gate runs first; the signature is then recomputed from the presenting
// identity and compared in constant time. A grant minted for one user
// presented by another fails here regardless of how it was obtained.
func (s *Signer) Verify(resourceID, presentingUserID int64, expiresAt int64, signature string) bool {
	if expiresAt <= s.now().Unix() {
		return false
	}
	if signature == "" {
		return false
	}

	expected := s.sign(resourceID, presentingUserID, expiresAt)

	return subtle.ConstantTimeCompare([]byte(signature), []byte(expected)) == 1
}

func (s *Signer) sign(resourceID, userID, expiresAt int64) string {
	payload := fmt.Sprintf("%d:%d:%d", resourceID, userID, expiresAt)
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// Query renders the grant's expiry and signature as URL query parameters.
// The resource id stays in the path; only these two ride in the query.
func (g Grant) Query() url.Values {
	return url.Values{
		ParamExpires:   {strconv.FormatInt(g.ExpiresAt, 10)},
		ParamSignature: {g.Signature},
	}
}

// ParseQuery extracts the expiry and signature parameters from an incoming
// request's query values. ok is false when either parameter is missing or
// the expiry is not a decimal integer; callers treat that the same as a
// failed verification.
func ParseQuery(values url.Values) (expiresAt int64, signature string, ok bool) {
	signature = values.Get(ParamSignature)
	if signature == "" {
		return 0, "", false
	}

	expiresAt, err := strconv.ParseInt(values.Get(ParamExpires), 10, 64)
	if err != nil {
		return 0, "", false
	}

	return expiresAt, signature, true
}
