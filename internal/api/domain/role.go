package domain

// Role is an account's role within its company.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// ValidRole reports whether s names a known role.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleMember, RoleAdmin:
		return true
	}
	return false
}

// Caller is the authenticated identity of the current request, resolved
// from a verified access token at the HTTP boundary and passed explicitly
// into every service operation. There is no ambient request user.
type Caller struct {
	AccountID string
	Email     string
	Username  string
	Role      Role
	CompanyID string
}

// IsAdmin reports whether the caller holds the admin role.
func (c Caller) IsAdmin() bool { return c.Role == RoleAdmin }
