package service

import (
	"context"
	"errors"
	"strings"

	"github.com/10190997/stud-do/internal/access"
	"github.com/10190997/stud-do/internal/model"
	"github.com/10190997/stud-do/internal/repository"
)

// RoomStore is the persistence surface the room manager needs. It is
// implemented by repository.RoomRepo; tests substitute an in-memory
// fake.
type RoomStore interface {
	CreateWithOwner(ctx context.Context, name string, ownerID uint64) (*model.Room, error)
	GetByID(ctx context.Context, id uint64) (*model.Room, error)
	Rename(ctx context.Context, id uint64, name string) error
	Delete(ctx context.Context, id uint64) error
	Membership(ctx context.Context, roomID, userID uint64) (access.Role, error)
	AddMember(ctx context.Context, roomID, userID uint64, role access.Role) error
	SetRole(ctx context.Context, roomID, userID uint64, role access.Role) error
	RemoveMember(ctx context.Context, roomID, userID uint64) error
	ListMembers(ctx context.Context, roomID uint64) ([]model.RoomMember, error)
	ListForUser(ctx context.Context, userID uint64) ([]model.Room, error)
	SearchForUser(ctx context.Context, userID uint64, text string) ([]model.Room, error)
}

// RoomView is a room as seen by one caller: the room row, the caller's
// own role in it and the full member list.
type RoomView struct {
	Room    model.Room
	Role    access.Role
	Members []model.RoomMember
}

// RoomService manages rooms and their memberships. It owns the role
// assignment rules: rooms have exactly one owner, owners appoint and
// dismiss moderators, and the owner can never be removed.
type RoomService struct {
	rooms RoomStore
}

// NewRoomService constructs a RoomService backed by the given store.
func NewRoomService(rooms RoomStore) *RoomService {
	return &RoomService{rooms: rooms}
}

// CreateRoom creates a room and makes the caller its owner. The two
// rows are written atomically by the store.
func (s *RoomService) CreateRoom(ctx context.Context, name string, callerID uint64) (*RoomView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, Invalid("room name is required")
	}
	room, err := s.rooms.CreateWithOwner(ctx, name, callerID)
	if err != nil {
		return nil, Unexpected(err)
	}
	members, err := s.rooms.ListMembers(ctx, room.ID)
	if err != nil {
		return nil, Unexpected(err)
	}
	return &RoomView{Room: *room, Role: access.RoleOwner, Members: members}, nil
}

// GetRoom returns the room as seen by the caller. A room the caller is
// not a member of does not exist from their point of view.
func (s *RoomService) GetRoom(ctx context.Context, roomID, callerID uint64) (*RoomView, error) {
	role, err := s.rooms.Membership(ctx, roomID, callerID)
	if err != nil {
		if errors.Is(err, repository.ErrNoMembership) {
			return nil, NotFound("room not found")
		}
		return nil, Unexpected(err)
	}
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, NotFound("room not found")
		}
		return nil, Unexpected(err)
	}
	members, err := s.rooms.ListMembers(ctx, roomID)
	if err != nil {
		return nil, Unexpected(err)
	}
	return &RoomView{Room: *room, Role: role, Members: members}, nil
}

// ListRooms returns every room the caller is a member of.
func (s *RoomService) ListRooms(ctx context.Context, callerID uint64) ([]RoomView, error) {
	rooms, err := s.rooms.ListForUser(ctx, callerID)
	if err != nil {
		return nil, Unexpected(err)
	}
	return s.buildViews(ctx, rooms, callerID)
}

// SearchRooms returns the caller's rooms whose name contains the
// search text.
func (s *RoomService) SearchRooms(ctx context.Context, text string, callerID uint64) ([]RoomView, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, Invalid("search text is required")
	}
	rooms, err := s.rooms.SearchForUser(ctx, callerID, text)
	if err != nil {
		return nil, Unexpected(err)
	}
	return s.buildViews(ctx, rooms, callerID)
}

// SearchSuggestions returns just the matching room names, for
// type-ahead search boxes.
func (s *RoomService) SearchSuggestions(ctx context.Context, text string, callerID uint64) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, Invalid("search text is required")
	}
	rooms, err := s.rooms.SearchForUser(ctx, callerID, text)
	if err != nil {
		return nil, Unexpected(err)
	}
	names := make([]string, 0, len(rooms))
	for _, r := range rooms {
		names = append(names, r.Name)
	}
	return names, nil
}

// RenameRoom changes the room's name. Only the owner may rename.
func (s *RoomService) RenameRoom(ctx context.Context, roomID uint64, newName string, callerID uint64) (*RoomView, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, Invalid("room name is required")
	}
	if err := s.requireOwner(ctx, roomID, callerID); err != nil {
		return nil, err
	}
	if err := s.rooms.Rename(ctx, roomID, newName); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, NotFound("room not found")
		}
		return nil, Unexpected(err)
	}
	return s.GetRoom(ctx, roomID, callerID)
}

// DeleteRoom removes the room and cascades its memberships and posts.
// Only the owner may delete.
func (s *RoomService) DeleteRoom(ctx context.Context, roomID, callerID uint64) error {
	if err := s.requireOwner(ctx, roomID, callerID); err != nil {
		return err
	}
	if err := s.rooms.Delete(ctx, roomID); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return NotFound("room not found")
		}
		return Unexpected(err)
	}
	return nil
}

// AddMember adds a user to the room with the plain member role. Any
// authenticated caller may add members; the only guard is against
// duplicates. Tightening this to owners is a product decision that has
// deliberately not been taken.
func (s *RoomService) AddMember(ctx context.Context, roomID, userID uint64) (*RoomView, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, NotFound("room not found")
		}
		return nil, Unexpected(err)
	}
	if err := s.rooms.AddMember(ctx, roomID, userID, access.RoleMember); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, Conflict("user is already a member of the room")
		}
		return nil, Unexpected(err)
	}
	members, err := s.rooms.ListMembers(ctx, roomID)
	if err != nil {
		return nil, Unexpected(err)
	}
	return &RoomView{Room: *room, Role: access.RoleMember, Members: members}, nil
}

// RemoveMember removes a user from the room. Members may leave on
// their own; removing someone else requires the owner. The owner can
// never be removed, not even by themselves.
func (s *RoomService) RemoveMember(ctx context.Context, roomID, targetUserID, callerID uint64) error {
	targetRole, err := s.rooms.Membership(ctx, roomID, targetUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNoMembership) {
			return NotFound("user is not a member of the room")
		}
		return Unexpected(err)
	}
	if access.IsOwner(targetRole) {
		return PermissionDenied("owner cannot leave")
	}
	if callerID != targetUserID {
		callerRole, err := s.rooms.Membership(ctx, roomID, callerID)
		if err != nil && !errors.Is(err, repository.ErrNoMembership) {
			return Unexpected(err)
		}
		if !access.IsOwner(callerRole) {
			return PermissionDenied("only the owner can remove other members")
		}
	}
	if err := s.rooms.RemoveMember(ctx, roomID, targetUserID); err != nil {
		if errors.Is(err, repository.ErrNoMembership) {
			return NotFound("user is not a member of the room")
		}
		return Unexpected(err)
	}
	return nil
}

// AddModerator promotes a plain member to moderator. Only the owner
// may promote, and only the member role is a valid starting point.
func (s *RoomService) AddModerator(ctx context.Context, roomID, targetUserID, callerID uint64) (*RoomView, error) {
	if err := s.requireOwner(ctx, roomID, callerID); err != nil {
		return nil, err
	}
	targetRole, err := s.rooms.Membership(ctx, roomID, targetUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNoMembership) {
			return nil, NotFound("user is not a member of the room")
		}
		return nil, Unexpected(err)
	}
	if targetRole != access.RoleMember {
		return nil, Conflict("user is not a plain member and cannot be promoted")
	}
	if err := s.rooms.SetRole(ctx, roomID, targetUserID, access.RoleModerator); err != nil {
		return nil, Unexpected(err)
	}
	return s.GetRoom(ctx, roomID, callerID)
}

// RemoveModerator demotes a moderator back to plain member. Only the
// owner may demote, and only the moderator role is a valid starting
// point.
func (s *RoomService) RemoveModerator(ctx context.Context, roomID, targetUserID, callerID uint64) (*RoomView, error) {
	if err := s.requireOwner(ctx, roomID, callerID); err != nil {
		return nil, err
	}
	targetRole, err := s.rooms.Membership(ctx, roomID, targetUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNoMembership) {
			return nil, NotFound("user is not a member of the room")
		}
		return nil, Unexpected(err)
	}
	if targetRole != access.RoleModerator {
		return nil, Conflict("user is not a moderator")
	}
	if err := s.rooms.SetRole(ctx, roomID, targetUserID, access.RoleMember); err != nil {
		return nil, Unexpected(err)
	}
	return s.GetRoom(ctx, roomID, callerID)
}

// requireOwner resolves the caller's role and fails unless it is
// exactly the owner role. A caller with no membership row fails the
// check the same way.
func (s *RoomService) requireOwner(ctx context.Context, roomID, callerID uint64) error {
	role, err := s.rooms.Membership(ctx, roomID, callerID)
	if err != nil {
		if errors.Is(err, repository.ErrNoMembership) {
			return NotFound("room not found")
		}
		return Unexpected(err)
	}
	if !access.IsOwner(role) {
		return PermissionDenied("only the room owner may do this")
	}
	return nil
}

// buildViews assembles per-room views, deriving the caller's role from
// the member list to avoid an extra lookup per room.
func (s *RoomService) buildViews(ctx context.Context, rooms []model.Room, callerID uint64) ([]RoomView, error) {
	views := make([]RoomView, 0, len(rooms))
	for _, room := range rooms {
		members, err := s.rooms.ListMembers(ctx, room.ID)
		if err != nil {
			return nil, Unexpected(err)
		}
		view := RoomView{Room: room, Members: members}
		for _, m := range members {
			if m.UserID == callerID {
				view.Role = m.Role
				break
			}
		}
		views = append(views, view)
	}
	return views, nil
}
