package trustcore

import "errors"

var (
	// ErrSecretMissing is an exported constant or variable used by the trust-and-access engine.
	ErrSecretMissing = errors.New("signing secret must be set")
	// ErrSecretPlaceholder is an exported constant or variable used by the trust-and-access engine.
	ErrSecretPlaceholder = errors.New("signing secret is a known placeholder value")
	// ErrUnauthenticated is an exported constant or variable used by the trust-and-access engine.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden is an exported constant or variable used by the trust-and-access engine.
	ErrForbidden = errors.New("forbidden")
	// ErrCSRFRejected is an exported constant or variable used by the trust-and-access engine.
	ErrCSRFRejected = errors.New("csrf validation failed")
	// ErrRateLimited is an exported constant or variable used by the trust-and-access engine.
	ErrRateLimited = errors.New("too many requests")
)
