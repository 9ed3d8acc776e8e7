// Package session holds the client-side authentication state: the bearer
// token and role of the current login, persisted across process restarts.
package session

// Role is the access level granted to the current login.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleSeller
}

// Session is the authenticated identity held by the client. A zero value
// means "not logged in". Token and Role are always set and cleared together.
type Session struct {
	Token string `json:"token"`
	Role  Role   `json:"role"`
}

// Authenticated reports whether a token is held. It is a pure function of
// the token field.
func (s Session) Authenticated() bool {
	return s.Token != ""
}
