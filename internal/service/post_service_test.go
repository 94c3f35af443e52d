package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostFixture(t *testing.T) (*PostService, *RoomService, uint64) {
	t.Helper()
	rooms := newMemRoomStore()
	roomSvc := NewRoomService(rooms)
	view, err := roomSvc.CreateRoom(context.Background(), "algebra", alice)
	require.NoError(t, err)
	svc := NewPostService(newMemPostStore(), rooms)
	return svc, roomSvc, view.Room.ID
}

func TestCreatePostByOwner(t *testing.T) {
	svc, _, roomID := newPostFixture(t)

	post, err := svc.CreatePost(context.Background(), roomID, alice, "homework is due friday", []string{"https://files.example/sheet.pdf"})
	require.NoError(t, err)
	assert.NotZero(t, post.ID)
	assert.Equal(t, alice, post.AuthorID)
	assert.Equal(t, []string{"https://files.example/sheet.pdf"}, post.Attachments)
}

func TestCreatePostByModerator(t *testing.T) {
	svc, roomSvc, roomID := newPostFixture(t)
	_, err := roomSvc.AddMember(context.Background(), roomID, bob)
	require.NoError(t, err)
	_, err = roomSvc.AddModerator(context.Background(), roomID, bob, alice)
	require.NoError(t, err)

	_, err = svc.CreatePost(context.Background(), roomID, bob, "lecture moved to room 204", nil)
	assert.NoError(t, err)
}

func TestCreatePostByPlainMemberDenied(t *testing.T) {
	svc, roomSvc, roomID := newPostFixture(t)
	_, err := roomSvc.AddMember(context.Background(), roomID, bob)
	require.NoError(t, err)

	_, err = svc.CreatePost(context.Background(), roomID, bob, "can I post here?", nil)
	require.Error(t, err)
	assert.Equal(t, KindPermissionDenied, KindOf(err))
}

func TestCreatePostByOutsider(t *testing.T) {
	svc, _, roomID := newPostFixture(t)

	_, err := svc.CreatePost(context.Background(), roomID, carol, "hello", nil)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestCreatePostRejectsEmptyText(t *testing.T) {
	svc, _, roomID := newPostFixture(t)

	_, err := svc.CreatePost(context.Background(), roomID, alice, "   ", nil)
	require.Error(t, err)
	assert.Equal(t, KindInvalid, KindOf(err))
}

func TestListPostsAnyMember(t *testing.T) {
	svc, roomSvc, roomID := newPostFixture(t)
	_, err := roomSvc.AddMember(context.Background(), roomID, bob)
	require.NoError(t, err)
	_, err = svc.CreatePost(context.Background(), roomID, alice, "first", nil)
	require.NoError(t, err)
	_, err = svc.CreatePost(context.Background(), roomID, alice, "second", nil)
	require.NoError(t, err)

	posts, err := svc.ListPosts(context.Background(), roomID, bob)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	// Newest first.
	assert.Equal(t, "second", posts[0].Text)
	assert.Equal(t, "first", posts[1].Text)

	_, err = svc.ListPosts(context.Background(), roomID, carol)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestGetPostRequiresMembership(t *testing.T) {
	svc, _, roomID := newPostFixture(t)
	post, err := svc.CreatePost(context.Background(), roomID, alice, "first", nil)
	require.NoError(t, err)

	_, err = svc.GetPost(context.Background(), post.ID, carol)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))

	got, err := svc.GetPost(context.Background(), post.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)
}

func TestUpdatePostReplacesTextAndAttachments(t *testing.T) {
	svc, _, roomID := newPostFixture(t)
	post, err := svc.CreatePost(context.Background(), roomID, alice, "draft", []string{"a.png"})
	require.NoError(t, err)

	got, err := svc.UpdatePost(context.Background(), post.ID, alice, "final", []string{"b.png", "c.png"})
	require.NoError(t, err)
	assert.Equal(t, "final", got.Text)
	assert.Equal(t, []string{"b.png", "c.png"}, got.Attachments)
}

func TestUpdatePostByPlainMemberDenied(t *testing.T) {
	svc, roomSvc, roomID := newPostFixture(t)
	_, err := roomSvc.AddMember(context.Background(), roomID, bob)
	require.NoError(t, err)
	post, err := svc.CreatePost(context.Background(), roomID, alice, "announcement", nil)
	require.NoError(t, err)

	_, err = svc.UpdatePost(context.Background(), post.ID, bob, "defaced", nil)
	require.Error(t, err)
	assert.Equal(t, KindPermissionDenied, KindOf(err))
}

func TestDeletePostContentManagersOnly(t *testing.T) {
	svc, roomSvc, roomID := newPostFixture(t)
	_, err := roomSvc.AddMember(context.Background(), roomID, bob)
	require.NoError(t, err)
	post, err := svc.CreatePost(context.Background(), roomID, alice, "announcement", nil)
	require.NoError(t, err)

	err = svc.DeletePost(context.Background(), post.ID, bob)
	require.Error(t, err)
	assert.Equal(t, KindPermissionDenied, KindOf(err))

	require.NoError(t, svc.DeletePost(context.Background(), post.ID, alice))

	_, err = svc.GetPost(context.Background(), post.ID, alice)
	assert.Equal(t, KindNotFound, KindOf(err))
}
