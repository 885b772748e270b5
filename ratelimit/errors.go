package ratelimit

import "errors"

var (
	// ErrBackendUnavailable is an exported constant or variable used by the trust-and-access engine.
	ErrBackendUnavailable = errors.New("rate limit backend unavailable")
)
