package trustcore

import "github.com/hoqouqi/trustcore/session"

// Role is the platform role carried inside a session claim. Aliased from the
// session package so callers wiring handlers only import trustcore.
type Role = session.Role

const (
	// RoleClient is an exported constant or variable used by the trust-and-access engine.
	RoleClient = session.RoleClient
	// RoleLawyer is an exported constant or variable used by the trust-and-access engine.
	RoleLawyer = session.RoleLawyer
	// RoleAdmin is an exported constant or variable used by the trust-and-access engine.
	RoleAdmin = session.RoleAdmin
)

// Claims is the verified content of a session token.
type Claims = session.Claims
