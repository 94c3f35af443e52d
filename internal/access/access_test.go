package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPredicatesAreExactMatches(t *testing.T) {
	cases := []struct {
		role      Role
		owner     bool
		moderator bool
		manage    bool
	}{
		{RoleOwner, true, false, true},
		{RoleModerator, false, true, true},
		{RoleMember, false, false, false},
		{RoleNone, false, false, false},
		{Role(42), false, false, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.owner, IsOwner(tc.role), "IsOwner(%s)", tc.role)
		assert.Equal(t, tc.moderator, IsModerator(tc.role), "IsModerator(%s)", tc.role)
		assert.Equal(t, tc.manage, CanManageContent(tc.role), "CanManageContent(%s)", tc.role)
	}
}

func TestValid(t *testing.T) {
	assert.True(t, RoleOwner.Valid())
	assert.True(t, RoleModerator.Valid())
	assert.True(t, RoleMember.Valid())
	assert.False(t, RoleNone.Valid())
	assert.False(t, Role(4).Valid())
}

func TestString(t *testing.T) {
	assert.Equal(t, "owner", RoleOwner.String())
	assert.Equal(t, "moderator", RoleModerator.String())
	assert.Equal(t, "member", RoleMember.String())
	assert.Equal(t, "none", RoleNone.String())
}
