package session

// Role defines a public type used by trustcore APIs.
//
// Role instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Role string

const (
	// RoleClient is an exported constant or variable used by the trust-and-access engine.
	RoleClient Role = "client"
	// RoleLawyer is an exported constant or variable used by the trust-and-access engine.
	RoleLawyer Role = "lawyer"
	// RoleAdmin is an exported constant or variable used by the trust-and-access engine.
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the three platform roles. The closed
// enumeration is what guarantees the compact wire format cannot suffer a
// delimiter collision.
func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleLawyer, RoleAdmin:
		return true
	}
	return false
}

// Claims defines a public type used by trustcore APIs.
//
// Claims instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
//
// Claims is the sole source of truth for the session's lifetime: downstream
// authorization reads the role from the verified claim by default, and only
// routes that opt into per-request role resolution pay for a live account
// lookup (see the staleness note in the package docs of trustcore).
type Claims struct {
	UserID    int64
	Role      Role
	ExpiresAt int64
}
