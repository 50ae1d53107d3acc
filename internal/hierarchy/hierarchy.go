package hierarchy

// Role is the actor's effective authority for a single approval decision,
// resolved against one target employee.
type Role string

const (
	RoleNone          Role = "NONE"
	RoleSystemAdmin   Role = "SYSTEM_ADMIN"
	RoleCEO           Role = "CEO"
	RoleDirectManager Role = "DIRECT_MANAGER"
)

// Identity is the authenticated actor as the auth layer sees it. EmployeeID
// is empty for system accounts with no employee profile.
type Identity struct {
	UserID      string
	EmployeeID  string
	AccountRole string
	IsAdmin     bool
}

// Classification carries the effective role plus the raw CEO and
// DirectManager facts. Both are kept because an actor who is CEO and the
// target's direct manager at the same time fast-tracks approvals.
type Classification struct {
	Role            Role
	CEO             bool
	DirectManager   bool
	ActorEmployeeID string
}

// Eligible reports whether the actor may act on the target at all.
func (c Classification) Eligible() bool {
	return c.Role != RoleNone
}
