// Package access contains the role model and the predicates shared by
// room and schedule authorization checks. The predicates are pure and
// read-only; callers resolve a membership row first and pass the role
// in. A missing membership resolves to the zero Role, which matches no
// predicate, so every check fails closed.
package access

// Role is the closed set of per-room roles. The numeric values mirror
// the role table of the original data set (owner=1, moderator=2,
// member=3) and are stored as-is in the room_members.role column.
// Checks are exact-equality tests, never "<= rank" comparisons.
type Role uint8

const (
	// RoleNone is the zero value and means "no membership row".
	RoleNone Role = 0
	// RoleOwner is the single owner of a room.
	RoleOwner Role = 1
	// RoleModerator may manage room content but not membership.
	RoleModerator Role = 2
	// RoleMember may read room content.
	RoleMember Role = 3
)

// Valid reports whether r is one of the three assignable roles.
func (r Role) Valid() bool {
	return r == RoleOwner || r == RoleModerator || r == RoleMember
}

// String returns the lower-case role name, or "none" for the zero value.
func (r Role) String() string {
	switch r {
	case RoleOwner:
		return "owner"
	case RoleModerator:
		return "moderator"
	case RoleMember:
		return "member"
	}
	return "none"
}

// IsOwner reports whether r is exactly the owner role.
func IsOwner(r Role) bool { return r == RoleOwner }

// IsModerator reports whether r is exactly the moderator role.
func IsModerator(r Role) bool { return r == RoleModerator }

// CanManageContent reports whether r may create, edit or delete room
// content. Owners and moderators qualify; plain members do not.
func CanManageContent(r Role) bool { return r == RoleOwner || r == RoleModerator }
