package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/10190997/stud-do/internal/access"
	"github.com/10190997/stud-do/internal/model"
	"github.com/10190997/stud-do/internal/repository"
)

// In-memory store fakes. They mirror the error contracts of the real
// repositories so the managers can be exercised without a database.

type memberKey struct{ roomID, userID uint64 }

type memRoomStore struct {
	nextID  uint64
	rooms   map[uint64]model.Room
	members map[memberKey]access.Role
}

func newMemRoomStore() *memRoomStore {
	return &memRoomStore{
		rooms:   make(map[uint64]model.Room),
		members: make(map[memberKey]access.Role),
	}
}

func (m *memRoomStore) CreateWithOwner(_ context.Context, name string, ownerID uint64) (*model.Room, error) {
	m.nextID++
	room := model.Room{ID: m.nextID, Name: name, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.rooms[room.ID] = room
	m.members[memberKey{room.ID, ownerID}] = access.RoleOwner
	return &room, nil
}

func (m *memRoomStore) GetByID(_ context.Context, id uint64) (*model.Room, error) {
	room, ok := m.rooms[id]
	if !ok {
		return nil, repository.ErrRoomNotFound
	}
	return &room, nil
}

func (m *memRoomStore) Rename(_ context.Context, id uint64, name string) error {
	room, ok := m.rooms[id]
	if !ok {
		return repository.ErrRoomNotFound
	}
	room.Name = name
	m.rooms[id] = room
	return nil
}

func (m *memRoomStore) Delete(_ context.Context, id uint64) error {
	if _, ok := m.rooms[id]; !ok {
		return repository.ErrRoomNotFound
	}
	delete(m.rooms, id)
	for k := range m.members {
		if k.roomID == id {
			delete(m.members, k)
		}
	}
	return nil
}

func (m *memRoomStore) Membership(_ context.Context, roomID, userID uint64) (access.Role, error) {
	role, ok := m.members[memberKey{roomID, userID}]
	if !ok {
		return access.RoleNone, repository.ErrNoMembership
	}
	return role, nil
}

func (m *memRoomStore) AddMember(_ context.Context, roomID, userID uint64, role access.Role) error {
	key := memberKey{roomID, userID}
	if _, ok := m.members[key]; ok {
		return repository.ErrDuplicate
	}
	m.members[key] = role
	return nil
}

func (m *memRoomStore) SetRole(_ context.Context, roomID, userID uint64, role access.Role) error {
	key := memberKey{roomID, userID}
	if _, ok := m.members[key]; !ok {
		return repository.ErrNoMembership
	}
	m.members[key] = role
	return nil
}

func (m *memRoomStore) RemoveMember(_ context.Context, roomID, userID uint64) error {
	key := memberKey{roomID, userID}
	if _, ok := m.members[key]; !ok {
		return repository.ErrNoMembership
	}
	delete(m.members, key)
	return nil
}

func (m *memRoomStore) ListMembers(_ context.Context, roomID uint64) ([]model.RoomMember, error) {
	var out []model.RoomMember
	for k, role := range m.members {
		if k.roomID == roomID {
			out = append(out, model.RoomMember{RoomID: roomID, UserID: k.userID, Role: role})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Role != out[j].Role {
			return out[i].Role < out[j].Role
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

func (m *memRoomStore) ListForUser(_ context.Context, userID uint64) ([]model.Room, error) {
	var out []model.Room
	for k := range m.members {
		if k.userID == userID {
			out = append(out, m.rooms[k.roomID])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memRoomStore) SearchForUser(ctx context.Context, userID uint64, text string) ([]model.Room, error) {
	all, err := m.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	var out []model.Room
	for _, r := range all {
		if containsFold(r.Name, text) {
			out = append(out, r)
		}
	}
	return out, nil
}

type shareKey struct{ scheduleID, userID uint64 }

type memScheduleStore struct {
	nextID    uint64
	schedules map[uint64]model.Schedule
	shares    map[shareKey]model.ScheduleShare
}

func newMemScheduleStore() *memScheduleStore {
	return &memScheduleStore{
		schedules: make(map[uint64]model.Schedule),
		shares:    make(map[shareKey]model.ScheduleShare),
	}
}

func (m *memScheduleStore) CreateWithShare(_ context.Context, name string, creatorID uint64, color string) (*model.Schedule, error) {
	m.nextID++
	sched := model.Schedule{ID: m.nextID, Name: name, CreatorID: creatorID, CreatedAt: time.Now()}
	m.schedules[sched.ID] = sched
	m.shares[shareKey{sched.ID, creatorID}] = model.ScheduleShare{
		ScheduleID: sched.ID, UserID: creatorID, Color: color, Visibility: true,
	}
	return &sched, nil
}

func (m *memScheduleStore) GetByID(_ context.Context, id uint64) (*model.Schedule, error) {
	sched, ok := m.schedules[id]
	if !ok {
		return nil, repository.ErrScheduleNotFound
	}
	return &sched, nil
}

func (m *memScheduleStore) Rename(_ context.Context, id uint64, name string) error {
	sched, ok := m.schedules[id]
	if !ok {
		return repository.ErrScheduleNotFound
	}
	sched.Name = name
	m.schedules[id] = sched
	return nil
}

func (m *memScheduleStore) Delete(_ context.Context, id uint64) error {
	if _, ok := m.schedules[id]; !ok {
		return repository.ErrScheduleNotFound
	}
	delete(m.schedules, id)
	for k := range m.shares {
		if k.scheduleID == id {
			delete(m.shares, k)
		}
	}
	return nil
}

func (m *memScheduleStore) Share(_ context.Context, scheduleID, userID uint64) (*model.ScheduleShare, error) {
	share, ok := m.shares[shareKey{scheduleID, userID}]
	if !ok {
		return nil, repository.ErrNoShare
	}
	return &share, nil
}

func (m *memScheduleStore) AddShare(_ context.Context, scheduleID, userID uint64, color string, visibility bool) error {
	key := shareKey{scheduleID, userID}
	if _, ok := m.shares[key]; ok {
		return repository.ErrDuplicate
	}
	m.shares[key] = model.ScheduleShare{ScheduleID: scheduleID, UserID: userID, Color: color, Visibility: visibility}
	return nil
}

func (m *memScheduleStore) UpdateShare(_ context.Context, scheduleID, userID uint64, color string, visibility bool) error {
	key := shareKey{scheduleID, userID}
	share, ok := m.shares[key]
	if !ok {
		return repository.ErrNoShare
	}
	share.Color = color
	share.Visibility = visibility
	m.shares[key] = share
	return nil
}

func (m *memScheduleStore) RemoveShare(_ context.Context, scheduleID, userID uint64) error {
	key := shareKey{scheduleID, userID}
	if _, ok := m.shares[key]; !ok {
		return repository.ErrNoShare
	}
	delete(m.shares, key)
	return nil
}

func (m *memScheduleStore) ListShares(_ context.Context, scheduleID uint64) ([]model.ScheduleShare, error) {
	var out []model.ScheduleShare
	for k, share := range m.shares {
		if k.scheduleID == scheduleID {
			out = append(out, share)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (m *memScheduleStore) ListForUser(_ context.Context, userID uint64) ([]model.Schedule, []model.ScheduleShare, error) {
	var scheds []model.Schedule
	for k := range m.shares {
		if k.userID == userID {
			scheds = append(scheds, m.schedules[k.scheduleID])
		}
	}
	sort.Slice(scheds, func(i, j int) bool { return scheds[i].ID < scheds[j].ID })
	shares := make([]model.ScheduleShare, 0, len(scheds))
	for _, sched := range scheds {
		shares = append(shares, m.shares[shareKey{sched.ID, userID}])
	}
	return scheds, shares, nil
}

type memEventStore struct {
	nextID uint64
	events map[uint64]model.Event
}

func newMemEventStore() *memEventStore {
	return &memEventStore{events: make(map[uint64]model.Event)}
}

func (m *memEventStore) GetByID(_ context.Context, id uint64) (*model.Event, error) {
	ev, ok := m.events[id]
	if !ok {
		return nil, repository.ErrEventNotFound
	}
	return &ev, nil
}

func (m *memEventStore) ListBySchedule(_ context.Context, scheduleID uint64) ([]model.Event, error) {
	return m.snapshot(scheduleID), nil
}

func (m *memEventStore) CreateValidated(_ context.Context, ev *model.Event, check func([]model.Event) error) error {
	if check != nil {
		if err := check(m.snapshot(ev.ScheduleID)); err != nil {
			return err
		}
	}
	m.nextID++
	ev.ID = m.nextID
	m.events[ev.ID] = *ev
	return nil
}

func (m *memEventStore) UpdateValidated(_ context.Context, ev *model.Event, check func([]model.Event) error) error {
	if _, ok := m.events[ev.ID]; !ok {
		return repository.ErrEventNotFound
	}
	if check != nil {
		if err := check(m.snapshot(ev.ScheduleID)); err != nil {
			return err
		}
	}
	m.events[ev.ID] = *ev
	return nil
}

func (m *memEventStore) Delete(_ context.Context, id uint64) error {
	if _, ok := m.events[id]; !ok {
		return repository.ErrEventNotFound
	}
	delete(m.events, id)
	return nil
}

func (m *memEventStore) snapshot(scheduleID uint64) []model.Event {
	var out []model.Event
	for _, ev := range m.events {
		if ev.ScheduleID == scheduleID {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out
}

type memPostStore struct {
	nextID uint64
	posts  map[uint64]model.Post
}

func newMemPostStore() *memPostStore {
	return &memPostStore{posts: make(map[uint64]model.Post)}
}

func (m *memPostStore) Create(_ context.Context, p *model.Post) error {
	m.nextID++
	p.ID = m.nextID
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.posts[p.ID] = *p
	return nil
}

func (m *memPostStore) GetByID(_ context.Context, id uint64) (*model.Post, error) {
	post, ok := m.posts[id]
	if !ok {
		return nil, repository.ErrPostNotFound
	}
	return &post, nil
}

func (m *memPostStore) ListByRoom(_ context.Context, roomID uint64) ([]model.Post, error) {
	var out []model.Post
	for _, post := range m.posts {
		if post.RoomID == roomID {
			out = append(out, post)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memPostStore) Update(_ context.Context, id uint64, text string, attachments []string) error {
	post, ok := m.posts[id]
	if !ok {
		return repository.ErrPostNotFound
	}
	post.Text = text
	post.Attachments = attachments
	post.UpdatedAt = time.Now()
	m.posts[id] = post
	return nil
}

func (m *memPostStore) Delete(_ context.Context, id uint64) error {
	if _, ok := m.posts[id]; !ok {
		return repository.ErrPostNotFound
	}
	delete(m.posts, id)
	return nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
