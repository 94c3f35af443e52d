package service

import (
	"context"
	"errors"
	"strings"

	"github.com/10190997/stud-do/internal/model"
	"github.com/10190997/stud-do/internal/repository"
)

// ScheduleStore is the persistence surface the schedule manager needs.
// It is implemented by repository.ScheduleRepo.
type ScheduleStore interface {
	CreateWithShare(ctx context.Context, name string, creatorID uint64, color string) (*model.Schedule, error)
	GetByID(ctx context.Context, id uint64) (*model.Schedule, error)
	Rename(ctx context.Context, id uint64, name string) error
	Delete(ctx context.Context, id uint64) error
	Share(ctx context.Context, scheduleID, userID uint64) (*model.ScheduleShare, error)
	AddShare(ctx context.Context, scheduleID, userID uint64, color string, visibility bool) error
	UpdateShare(ctx context.Context, scheduleID, userID uint64, color string, visibility bool) error
	RemoveShare(ctx context.Context, scheduleID, userID uint64) error
	ListShares(ctx context.Context, scheduleID uint64) ([]model.ScheduleShare, error)
	ListForUser(ctx context.Context, userID uint64) ([]model.Schedule, []model.ScheduleShare, error)
}

// ScheduleView is a schedule as seen by one caller: the schedule row,
// the caller's own colour and visibility for it, and everyone it is
// shared with.
type ScheduleView struct {
	Schedule   model.Schedule
	Color      string
	Visibility bool
	Shares     []model.ScheduleShare
}

// ScheduleService manages schedules and their per-user shares. A
// schedule belongs to its creator; sharing grants read access plus a
// private colour and visibility flag that each user tunes for
// themselves without affecting anyone else.
type ScheduleService struct {
	schedules ScheduleStore
}

// NewScheduleService constructs a ScheduleService backed by the given
// store.
func NewScheduleService(schedules ScheduleStore) *ScheduleService {
	return &ScheduleService{schedules: schedules}
}

// CreateSchedule creates a schedule and the creator's own share in one
// step. The creator's share starts visible; an empty colour falls back
// to the default.
func (s *ScheduleService) CreateSchedule(ctx context.Context, name, color string, callerID uint64) (*ScheduleView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, Invalid("schedule name is required")
	}
	if color == "" {
		color = model.DefaultShareColor
	}
	if !validHexColor(color) {
		return nil, Invalid("color must be a hex color like #aabbcc")
	}
	sched, err := s.schedules.CreateWithShare(ctx, name, callerID, color)
	if err != nil {
		return nil, Unexpected(err)
	}
	shares, err := s.schedules.ListShares(ctx, sched.ID)
	if err != nil {
		return nil, Unexpected(err)
	}
	return &ScheduleView{Schedule: *sched, Color: color, Visibility: true, Shares: shares}, nil
}

// GetSchedule returns the schedule as seen by the caller. A schedule
// the caller has no share in does not exist from their point of view.
func (s *ScheduleService) GetSchedule(ctx context.Context, scheduleID, callerID uint64) (*ScheduleView, error) {
	share, err := s.schedules.Share(ctx, scheduleID, callerID)
	if err != nil {
		if errors.Is(err, repository.ErrNoShare) {
			return nil, NotFound("schedule not found")
		}
		return nil, Unexpected(err)
	}
	sched, err := s.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, repository.ErrScheduleNotFound) {
			return nil, NotFound("schedule not found")
		}
		return nil, Unexpected(err)
	}
	shares, err := s.schedules.ListShares(ctx, scheduleID)
	if err != nil {
		return nil, Unexpected(err)
	}
	return &ScheduleView{Schedule: *sched, Color: share.Color, Visibility: share.Visibility, Shares: shares}, nil
}

// ListSchedules returns every schedule shared with the caller, each
// carrying the caller's own colour and visibility.
func (s *ScheduleService) ListSchedules(ctx context.Context, callerID uint64) ([]ScheduleView, error) {
	scheds, shares, err := s.schedules.ListForUser(ctx, callerID)
	if err != nil {
		return nil, Unexpected(err)
	}
	views := make([]ScheduleView, 0, len(scheds))
	for i, sched := range scheds {
		views = append(views, ScheduleView{
			Schedule:   sched,
			Color:      shares[i].Color,
			Visibility: shares[i].Visibility,
		})
	}
	return views, nil
}

// RenameSchedule changes the schedule's name. Only the creator may
// rename.
func (s *ScheduleService) RenameSchedule(ctx context.Context, scheduleID uint64, newName string, callerID uint64) (*ScheduleView, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, Invalid("schedule name is required")
	}
	if _, err := s.requireCreator(ctx, scheduleID, callerID); err != nil {
		return nil, err
	}
	if err := s.schedules.Rename(ctx, scheduleID, newName); err != nil {
		if errors.Is(err, repository.ErrScheduleNotFound) {
			return nil, NotFound("schedule not found")
		}
		return nil, Unexpected(err)
	}
	return s.GetSchedule(ctx, scheduleID, callerID)
}

// DeleteSchedule removes the schedule and cascades its events and
// shares. Only the creator may delete.
func (s *ScheduleService) DeleteSchedule(ctx context.Context, scheduleID, callerID uint64) error {
	if _, err := s.requireCreator(ctx, scheduleID, callerID); err != nil {
		return err
	}
	if err := s.schedules.Delete(ctx, scheduleID); err != nil {
		if errors.Is(err, repository.ErrScheduleNotFound) {
			return NotFound("schedule not found")
		}
		return Unexpected(err)
	}
	return nil
}

// GrantAccess shares the schedule with another user. Only the creator
// may share. The new share starts with the default colour and is
// visible.
func (s *ScheduleService) GrantAccess(ctx context.Context, scheduleID, targetUserID, callerID uint64) (*ScheduleView, error) {
	if _, err := s.requireCreator(ctx, scheduleID, callerID); err != nil {
		return nil, err
	}
	if err := s.schedules.AddShare(ctx, scheduleID, targetUserID, model.DefaultShareColor, true); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, Conflict("user already has access to the schedule")
		}
		return nil, Unexpected(err)
	}
	return s.GetSchedule(ctx, scheduleID, callerID)
}

// RevokeAccess removes a user's share. Users may unsubscribe
// themselves; revoking someone else requires the creator. The
// creator's own share can never be removed.
func (s *ScheduleService) RevokeAccess(ctx context.Context, scheduleID, targetUserID, callerID uint64) error {
	sched, err := s.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, repository.ErrScheduleNotFound) {
			return NotFound("schedule not found")
		}
		return Unexpected(err)
	}
	if _, err := s.schedules.Share(ctx, scheduleID, targetUserID); err != nil {
		if errors.Is(err, repository.ErrNoShare) {
			return NotFound("user has no access to the schedule")
		}
		return Unexpected(err)
	}
	if callerID != targetUserID && callerID != sched.CreatorID {
		return PermissionDenied("only the schedule creator can revoke access for others")
	}
	if targetUserID == sched.CreatorID {
		return PermissionDenied("the schedule creator cannot be unsubscribed")
	}
	if err := s.schedules.RemoveShare(ctx, scheduleID, targetUserID); err != nil {
		if errors.Is(err, repository.ErrNoShare) {
			return NotFound("user has no access to the schedule")
		}
		return Unexpected(err)
	}
	return nil
}

// UpdateAppearance changes the caller's own colour and visibility for
// the schedule. Every user with a share, the creator included, tunes
// only their own row; other users' rows are never touched. A nil
// color or visibility keeps the stored value, so toggling one does
// not reset the other.
func (s *ScheduleService) UpdateAppearance(ctx context.Context, scheduleID, callerID uint64, color *string, visibility *bool) (*ScheduleView, error) {
	share, err := s.schedules.Share(ctx, scheduleID, callerID)
	if err != nil {
		if errors.Is(err, repository.ErrNoShare) {
			return nil, NotFound("schedule not found")
		}
		return nil, Unexpected(err)
	}
	newColor := share.Color
	if color != nil {
		newColor = *color
		if newColor == "" {
			newColor = model.DefaultShareColor
		}
		if !validHexColor(newColor) {
			return nil, Invalid("color must be a hex color like #aabbcc")
		}
	}
	newVisibility := share.Visibility
	if visibility != nil {
		newVisibility = *visibility
	}
	if err := s.schedules.UpdateShare(ctx, scheduleID, callerID, newColor, newVisibility); err != nil {
		if errors.Is(err, repository.ErrNoShare) {
			return nil, NotFound("schedule not found")
		}
		return nil, Unexpected(err)
	}
	return s.GetSchedule(ctx, scheduleID, callerID)
}

// requireCreator resolves the schedule and fails unless the caller
// created it.
func (s *ScheduleService) requireCreator(ctx context.Context, scheduleID, callerID uint64) (*model.Schedule, error) {
	sched, err := s.schedules.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, repository.ErrScheduleNotFound) {
			return nil, NotFound("schedule not found")
		}
		return nil, Unexpected(err)
	}
	if sched.CreatorID != callerID {
		return nil, PermissionDenied("only the schedule creator may do this")
	}
	return sched, nil
}

// validHexColor reports whether s is a "#" followed by exactly six hex
// digits.
func validHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
