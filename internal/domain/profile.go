package domain

import "strings"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleOwner Role = "owner"
)

// ParseRole treats anything other than "admin" as an ordinary owner.
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleOwner
}

type Profile struct {
	ID       string
	Email    string
	FullName string
	Role     Role
}

// DisplayName falls back to the email when no name was recorded.
func (p Profile) DisplayName() string {
	if n := strings.TrimSpace(p.FullName); n != "" {
		return n
	}
	return p.Email
}

// Credentials is what the login form is checked against.
type Credentials struct {
	UserID       string
	PasswordHash string
}

// Principal is the authenticated caller. It is either Admin or Owner;
// the set is closed by the unexported marker method.
type Principal interface {
	Profile() Profile
	// ManagesAll is true when the principal may edit every lodging
	// without an owner assignment.
	ManagesAll() bool
	// FullDashboard is true when the principal may open the admin dashboard.
	FullDashboard() bool
	principal()
}

type Admin struct{ P Profile }

func (a Admin) Profile() Profile { return a.P }
func (Admin) ManagesAll() bool { return true }
func (Admin) FullDashboard() bool { return true }
func (Admin) principal() {}

type Owner struct{ P Profile }

func (o Owner) Profile() Profile { return o.P }
func (Owner) ManagesAll() bool { return false }
func (Owner) FullDashboard() bool { return false }
func (Owner) principal() {}

// PrincipalFor builds the variant matching the profile's role.
func PrincipalFor(p Profile) Principal {
	if p.Role == RoleAdmin {
		return Admin{P: p}
	}
	return Owner{P: p}
}
