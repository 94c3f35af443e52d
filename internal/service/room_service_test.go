package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/10190997/stud-do/internal/access"
)

const (
	alice = uint64(1)
	bob   = uint64(2)
	carol = uint64(3)
)

func newRoomFixture(t *testing.T) (*RoomService, *memRoomStore, uint64) {
	t.Helper()
	store := newMemRoomStore()
	svc := NewRoomService(store)
	view, err := svc.CreateRoom(context.Background(), "algebra", alice)
	require.NoError(t, err)
	return svc, store, view.Room.ID
}

func TestCreateRoomMakesCallerOwner(t *testing.T) {
	svc, _, roomID := newRoomFixture(t)

	view, err := svc.GetRoom(context.Background(), roomID, alice)
	require.NoError(t, err)
	assert.Equal(t, "algebra", view.Room.Name)
	assert.Equal(t, access.RoleOwner, view.Role)
	require.Len(t, view.Members, 1)
	assert.Equal(t, alice, view.Members[0].UserID)
	assert.Equal(t, access.RoleOwner, view.Members[0].Role)
}

func TestCreateRoomRejectsEmptyName(t *testing.T) {
	svc, _, _ := newRoomFixture(t)

	_, err := svc.CreateRoom(context.Background(), "   ", alice)
	require.Error(t, err)
	assert.Equal(t, KindInvalid, KindOf(err))
}

func TestGetRoomInvisibleToOutsiders(t *testing.T) {
	svc, _, roomID := newRoomFixture(t)

	_, err := svc.GetRoom(context.Background(), roomID, bob)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestAddMemberAssignsMemberRole(t *testing.T) {
	svc, store, roomID := newRoomFixture(t)

	_, err := svc.AddMember(context.Background(), roomID, bob)
	require.NoError(t, err)

	role, err := store.Membership(context.Background(), roomID, bob)
	require.NoError(t, err)
	assert.Equal(t, access.RoleMember, role)
}

func TestAddMemberTwiceConflicts(t *testing.T) {
	svc, _, roomID := newRoomFixture(t)

	_, err := svc.AddMember(context.Background(), roomID, bob)
	require.NoError(t, err)

	_, err = svc.AddMember(context.Background(), roomID, bob)
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestAddMemberUnknownRoom(t *testing.T) {
	svc, _, _ := newRoomFixture(t)

	_, err := svc.AddMember(context.Background(), 999, bob)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestRemoveMemberSelfLeave(t *testing.T) {
	svc, store, roomID := newRoomFixture(t)
	_, err := svc.AddMember(context.Background(), roomID, bob)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveMember(context.Background(), roomID, bob, bob))

	_, err = store.Membership(context.Background(), roomID, bob)
	assert.Error(t, err)
}

func TestRemoveMemberByOwner(t *testing.T) {
	svc, _, roomID := newRoomFixture(t)
	_, err := svc.AddMember(context.Background(), roomID, bob)
	require.NoError(t, err)

	assert.NoError(t, svc.RemoveMember(context.Background(), roomID, bob, alice))
}

func TestRemoveMemberByNonOwnerDenied(t *testing.T) {
	svc, _, roomID := newRoomFixture(t)
	for _, u := range []uint64{bob, carol} {
		_, err := svc.AddMember(context.Background(), roomID, u)
		require.NoError(t, err)
	}

	err := svc.RemoveMember(context.Background(), roomID, bob, carol)
	require.Error(t, err)
	assert.Equal(t, KindPermissionDenied, KindOf(err))
}

func TestOwnerCannotBeRemoved(t *testing.T) {
	svc, _, roomID := newRoomFixture(t)
	_, err := svc.AddMember(context.Background(), roomID, bob)
	require.NoError(t, err)

	// Not by themselves, not by anyone else.
	for _, caller := range []uint64{alice, bob} {
		err := svc.RemoveMember(context.Background(), roomID, alice, caller)
		require.Error(t, err)
		assert.Equal(t, KindPermissionDenied, KindOf(err))
	}
}

func TestAddModeratorPromotesPlainMember(t *testing.T) {
	svc, store, roomID := newRoomFixture(t)
	_, err := svc.AddMember(context.Background(), roomID, bob)
	require.NoError(t, err)

	_, err = svc.AddModerator(context.Background(), roomID, bob, alice)
	require.NoError(t, err)

	role, err := store.Membership(context.Background(), roomID, bob)
	require.NoError(t, err)
	assert.Equal(t, access.RoleModerator, role)
}

func TestAddModeratorRequiresOwner(t *testing.T) {
	svc, _, roomID := newRoomFixture(t)
	for _, u := range []uint64{bob, carol} {
		_, err := svc.AddMember(context.Background(), roomID, u)
		require.NoError(t, err)
	}

	_, err := svc.AddModerator(context.Background(), roomID, bob, carol)
	require.Error(t, err)
	assert.Equal(t, KindPermissionDenied, KindOf(err))
}

func TestAddModeratorRejectsNonMemberTarget(t *testing.T) {
	svc, _, roomID := newRoomFixture(t)

	_, err := svc.AddModerator(context.Background(), roomID, bob, alice)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestAddModeratorRejectsAlreadyModerator(t *testing.T) {
	svc, _, roomID := newRoomFixture(t)
	_, err := svc.AddMember(context.Background(), roomID, bob)
	require.NoError(t, err)
	_, err = svc.AddModerator(context.Background(), roomID, bob, alice)
	require.NoError(t, err)

	_, err = svc.AddModerator(context.Background(), roomID, bob, alice)
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestAddModeratorRejectsOwnerTarget(t *testing.T) {
	svc, _, roomID := newRoomFixture(t)

	_, err := svc.AddModerator(context.Background(), roomID, alice, alice)
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestRemoveModeratorDemotesToMember(t *testing.T) {
	svc, store, roomID := newRoomFixture(t)
	_, err := svc.AddMember(context.Background(), roomID, bob)
	require.NoError(t, err)
	_, err = svc.AddModerator(context.Background(), roomID, bob, alice)
	require.NoError(t, err)

	_, err = svc.RemoveModerator(context.Background(), roomID, bob, alice)
	require.NoError(t, err)

	role, err := store.Membership(context.Background(), roomID, bob)
	require.NoError(t, err)
	assert.Equal(t, access.RoleMember, role)
}

func TestRemoveModeratorRejectsPlainMemberTarget(t *testing.T) {
	svc, _, roomID := newRoomFixture(t)
	_, err := svc.AddMember(context.Background(), roomID, bob)
	require.NoError(t, err)

	_, err = svc.RemoveModerator(context.Background(), roomID, bob, alice)
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestRenameRoomOwnerOnly(t *testing.T) {
	svc, _, roomID := newRoomFixture(t)
	_, err := svc.AddMember(context.Background(), roomID, bob)
	require.NoError(t, err)

	_, err = svc.RenameRoom(context.Background(), roomID, "geometry", bob)
	require.Error(t, err)
	assert.Equal(t, KindPermissionDenied, KindOf(err))

	view, err := svc.RenameRoom(context.Background(), roomID, "geometry", alice)
	require.NoError(t, err)
	assert.Equal(t, "geometry", view.Room.Name)
}

func TestDeleteRoomOwnerOnly(t *testing.T) {
	svc, _, roomID := newRoomFixture(t)
	_, err := svc.AddMember(context.Background(), roomID, bob)
	require.NoError(t, err)

	err = svc.DeleteRoom(context.Background(), roomID, bob)
	require.Error(t, err)
	assert.Equal(t, KindPermissionDenied, KindOf(err))

	require.NoError(t, svc.DeleteRoom(context.Background(), roomID, alice))

	_, err = svc.GetRoom(context.Background(), roomID, alice)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestListRoomsOnlyMemberships(t *testing.T) {
	svc, _, roomID := newRoomFixture(t)
	other, err := svc.CreateRoom(context.Background(), "bob's room", bob)
	require.NoError(t, err)

	views, err := svc.ListRooms(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, roomID, views[0].Room.ID)
	assert.Equal(t, access.RoleOwner, views[0].Role)

	views, err = svc.ListRooms(context.Background(), bob)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, other.Room.ID, views[0].Room.ID)
}

func TestSearchRooms(t *testing.T) {
	svc, _, _ := newRoomFixture(t)
	_, err := svc.CreateRoom(context.Background(), "algebra II", alice)
	require.NoError(t, err)
	_, err = svc.CreateRoom(context.Background(), "history", alice)
	require.NoError(t, err)

	views, err := svc.SearchRooms(context.Background(), "algebra", alice)
	require.NoError(t, err)
	assert.Len(t, views, 2)

	names, err := svc.SearchSuggestions(context.Background(), "hist", alice)
	require.NoError(t, err)
	assert.Equal(t, []string{"history"}, names)

	_, err = svc.SearchRooms(context.Background(), "  ", alice)
	assert.Equal(t, KindInvalid, KindOf(err))
}
