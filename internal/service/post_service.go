package service

import (
	"context"
	"errors"
	"strings"

	"github.com/10190997/stud-do/internal/access"
	"github.com/10190997/stud-do/internal/model"
	"github.com/10190997/stud-do/internal/repository"
)

// PostStore is the persistence surface the post manager needs. It is
// implemented by repository.PostRepo.
type PostStore interface {
	Create(ctx context.Context, p *model.Post) error
	GetByID(ctx context.Context, id uint64) (*model.Post, error)
	ListByRoom(ctx context.Context, roomID uint64) ([]model.Post, error)
	Update(ctx context.Context, id uint64, text string, attachments []string) error
	Delete(ctx context.Context, id uint64) error
}

// RoomAccess is the slice of the room store the post manager needs to
// answer "does this room exist and what is this user's role in it".
// repository.RoomRepo implements it.
type RoomAccess interface {
	GetByID(ctx context.Context, id uint64) (*model.Room, error)
	Membership(ctx context.Context, roomID, userID uint64) (access.Role, error)
}

// PostService manages the posts published inside rooms. Writing is an
// owner or moderator privilege; plain members only read.
type PostService struct {
	posts PostStore
	rooms RoomAccess
}

// NewPostService constructs a PostService over the given stores.
func NewPostService(posts PostStore, rooms RoomAccess) *PostService {
	return &PostService{posts: posts, rooms: rooms}
}

// CreatePost publishes a post in a room. The caller's role must allow
// content management.
func (s *PostService) CreatePost(ctx context.Context, roomID, callerID uint64, text string, attachments []string) (*model.Post, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, Invalid("post text is required")
	}
	if err := s.requirePublisher(ctx, roomID, callerID); err != nil {
		return nil, err
	}
	post := &model.Post{
		RoomID:      roomID,
		AuthorID:    callerID,
		Text:        text,
		Attachments: attachments,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, Unexpected(err)
	}
	return post, nil
}

// GetPost returns one post. The caller must be a member of the post's
// room; outsiders see nothing.
func (s *PostService) GetPost(ctx context.Context, postID, callerID uint64) (*model.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, NotFound("post not found")
		}
		return nil, Unexpected(err)
	}
	if _, err := s.rooms.Membership(ctx, post.RoomID, callerID); err != nil {
		if errors.Is(err, repository.ErrNoMembership) {
			return nil, NotFound("post not found")
		}
		return nil, Unexpected(err)
	}
	return post, nil
}

// ListPosts returns a room's posts, newest first. Any member may read.
func (s *PostService) ListPosts(ctx context.Context, roomID, callerID uint64) ([]model.Post, error) {
	if _, err := s.rooms.Membership(ctx, roomID, callerID); err != nil {
		if errors.Is(err, repository.ErrNoMembership) {
			return nil, NotFound("room not found")
		}
		return nil, Unexpected(err)
	}
	posts, err := s.posts.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, Unexpected(err)
	}
	return posts, nil
}

// UpdatePost replaces a post's text and attachments. The caller's role
// in the post's room must allow content management.
func (s *PostService) UpdatePost(ctx context.Context, postID, callerID uint64, text string, attachments []string) (*model.Post, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, Invalid("post text is required")
	}
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, NotFound("post not found")
		}
		return nil, Unexpected(err)
	}
	if err := s.requirePublisher(ctx, post.RoomID, callerID); err != nil {
		return nil, err
	}
	if err := s.posts.Update(ctx, postID, text, attachments); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, NotFound("post not found")
		}
		return nil, Unexpected(err)
	}
	updated, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, Unexpected(err)
	}
	return updated, nil
}

// DeletePost removes a post. The caller's role in the post's room must
// allow content management.
func (s *PostService) DeletePost(ctx context.Context, postID, callerID uint64) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return NotFound("post not found")
		}
		return Unexpected(err)
	}
	if err := s.requirePublisher(ctx, post.RoomID, callerID); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return NotFound("post not found")
		}
		return Unexpected(err)
	}
	return nil
}

// requirePublisher checks that the caller holds a role allowed to
// publish in the room. A missing membership row fails closed.
func (s *PostService) requirePublisher(ctx context.Context, roomID, callerID uint64) error {
	role, err := s.rooms.Membership(ctx, roomID, callerID)
	if err != nil {
		if errors.Is(err, repository.ErrNoMembership) {
			return NotFound("room not found")
		}
		return Unexpected(err)
	}
	if !access.CanManageContent(role) {
		return PermissionDenied("only the room owner and moderators can publish posts")
	}
	return nil
}
