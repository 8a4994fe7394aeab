package domain

// Role classifies what mutating affordances a user sees. It reflects the
// remotely stored role, it does not enforce anything server-side.
type Role string

const (
	RoleManager Role = "manager"
	RoleMember  Role = "member"
	// RoleNone means authenticated but no role chosen yet. Gating treats it
	// exactly like RoleMember: mutating affordances are denied.
	RoleNone Role = "none"
)

// ParseRole maps a remote role string to a Role. Anything unrecognised,
// including the empty string, resolves to RoleNone — a user who authenticated
// via OAuth but quit before picking a role has no role field at all.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleManager:
		return RoleManager
	case RoleMember:
		return RoleMember
	default:
		return RoleNone
	}
}

// CanCreateTasks reports whether this role may create or assign tasks.
func (r Role) CanCreateTasks() bool { return r == RoleManager }

// Session is the authenticated identity for one user: constructed on
// login, passed explicitly to core operations, cleared on logout. A snapshot
// is persisted to the session store so role gating survives a restart without
// a network round trip.
type Session struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	PhotoURL string `json:"photo_url,omitempty"`
	Role     Role   `json:"role"`
}
