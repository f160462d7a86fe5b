package engine_test

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/moonhowl/werewolfd/internal/game/action"
	"github.com/moonhowl/werewolfd/internal/game/engine"
	"github.com/moonhowl/werewolfd/internal/game/role"
	"github.com/moonhowl/werewolfd/internal/game/room"
	"github.com/moonhowl/werewolfd/internal/game/seat"
)

// memDB is shared in-memory state backing all the fake stores.
type memDB struct {
	mu       sync.Mutex
	rooms    map[string]room.Room
	members  map[string][]room.Member
	settings map[string]role.Settings
	seats    map[string][]seat.Seat
	actions  map[string][]action.GameAction
	nextID   int64
}

func newMemDB() *memDB {
	return &memDB{
		rooms:    make(map[string]room.Room),
		members:  make(map[string][]room.Member),
		settings: make(map[string]role.Settings),
		seats:    make(map[string][]seat.Seat),
		actions:  make(map[string][]action.GameAction),
		nextID:   1,
	}
}

func (m *memDB) id() int64 {
	id := m.nextID
	m.nextID++
	return id
}

// memRooms implements room.Store.
type memRooms struct{ db *memDB }

func (s memRooms) Get(_ context.Context, id string) (room.Room, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	r, ok := s.db.rooms[id]
	if !ok {
		return room.Room{}, room.ErrRoomNotFound
	}
	return r, nil
}

func (s memRooms) Create(_ context.Context, r room.Room) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.rooms[r.ID] = r
	return nil
}

func (s memRooms) Update(_ context.Context, r room.Room) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.rooms[r.ID]; !ok {
		return room.ErrRoomNotFound
	}
	s.db.rooms[r.ID] = r
	return nil
}

func (s memRooms) Exists(_ context.Context, id string) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	_, ok := s.db.rooms[id]
	return ok, nil
}

// memMembers implements room.MemberStore.
type memMembers struct{ db *memDB }

func (s memMembers) Members(_ context.Context, roomID string) ([]room.Member, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return append([]room.Member(nil), s.db.members[roomID]...), nil
}

func (s memMembers) Member(_ context.Context, roomID string, playerID uuid.UUID) (room.Member, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, m := range s.db.members[roomID] {
		if m.PlayerID == playerID {
			return m, nil
		}
	}
	return room.Member{}, room.ErrMemberNotFound
}

func (s memMembers) Add(_ context.Context, m room.Member) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	m.ID = s.db.id()
	s.db.members[m.RoomID] = append(s.db.members[m.RoomID], m)
	return nil
}

func (s memMembers) Update(_ context.Context, m room.Member) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for i, cur := range s.db.members[m.RoomID] {
		if cur.PlayerID == m.PlayerID {
			s.db.members[m.RoomID][i] = m
			return nil
		}
	}
	return room.ErrMemberNotFound
}

func (s memMembers) Remove(_ context.Context, roomID string, playerID uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	members := s.db.members[roomID]
	for i, cur := range members {
		if cur.PlayerID == playerID {
			s.db.members[roomID] = append(members[:i:i], members[i+1:]...)
			return nil
		}
	}
	return nil
}

// memSettings implements room.SettingsStore.
type memSettings struct{ db *memDB }

func (s memSettings) Get(_ context.Context, roomID string) (role.Settings, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	cfg, ok := s.db.settings[roomID]
	if !ok {
		return role.Settings{}, room.ErrRoomNotFound
	}
	return cfg, nil
}

func (s memSettings) Save(_ context.Context, cfg role.Settings) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.settings[cfg.RoomID] = cfg
	return nil
}

// memSeats implements engine.SeatStore.
type memSeats struct{ db *memDB }

func (s memSeats) Roster(_ context.Context, roomID string) ([]seat.Seat, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return append([]seat.Seat(nil), s.db.seats[roomID]...), nil
}

func (s memSeats) Get(_ context.Context, roomID string, seatID int64) (seat.Seat, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, cur := range s.db.seats[roomID] {
		if cur.ID == seatID {
			return cur, nil
		}
	}
	return seat.Seat{}, engine.ErrSeatNotFound
}

func (s memSeats) Add(_ context.Context, seats []seat.Seat) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, cur := range seats {
		cur.ID = s.db.id()
		s.db.seats[cur.RoomID] = append(s.db.seats[cur.RoomID], cur)
	}
	return nil
}

func (s memSeats) Update(_ context.Context, cur seat.Seat) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for i, old := range s.db.seats[cur.RoomID] {
		if old.ID == cur.ID {
			s.db.seats[cur.RoomID][i] = cur
			return nil
		}
	}
	return engine.ErrSeatNotFound
}

func (s memSeats) MarkDead(_ context.Context, roomID string, seatIDs []int64, night int) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	dead := make(map[int64]bool, len(seatIDs))
	for _, id := range seatIDs {
		dead[id] = true
	}
	for i, cur := range s.db.seats[roomID] {
		if dead[cur.ID] {
			n := night
			cur.IsAlive = false
			cur.NightKilled = &n
			s.db.seats[roomID][i] = cur
		}
	}
	return nil
}

func (s memSeats) RemoveAll(_ context.Context, roomID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.seats, roomID)
	return nil
}

// memActions implements engine.ActionStore.
type memActions struct{ db *memDB }

func (s memActions) byState(roomID string, st action.State) []action.GameAction {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []action.GameAction
	for _, a := range s.db.actions[roomID] {
		if a.State == st {
			out = append(out, a)
		}
	}
	return out
}

func (s memActions) Queued(_ context.Context, roomID string) ([]action.GameAction, error) {
	return s.byState(roomID, action.StateQueued), nil
}

func (s memActions) Processed(_ context.Context, roomID string) ([]action.GameAction, error) {
	return s.byState(roomID, action.StateProcessed), nil
}

func (s memActions) QueuedForActor(_ context.Context, roomID string, actorID int64) (action.GameAction, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, a := range s.db.actions[roomID] {
		if a.State == action.StateQueued && a.ByActor(actorID) {
			return a, nil
		}
	}
	return action.GameAction{}, engine.ErrActionNotFound
}

func (s memActions) QueuedWerewolfKill(_ context.Context, roomID string) (action.GameAction, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, a := range s.db.actions[roomID] {
		if a.State == action.StateQueued && a.Type == action.WerewolfKill {
			return a, nil
		}
	}
	return action.GameAction{}, engine.ErrActionNotFound
}

func (s memActions) Save(_ context.Context, a *action.GameAction) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if a.ID == 0 {
		a.ID = s.db.id()
		s.db.actions[a.RoomID] = append(s.db.actions[a.RoomID], *a)
		return nil
	}
	for i, cur := range s.db.actions[a.RoomID] {
		if cur.ID == a.ID {
			s.db.actions[a.RoomID][i] = *a
			return nil
		}
	}
	return engine.ErrActionNotFound
}

func (s memActions) Delete(_ context.Context, actionID int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for roomID, list := range s.db.actions {
		for i, cur := range list {
			if cur.ID == actionID {
				s.db.actions[roomID] = append(list[:i:i], list[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

func (s memActions) MarkProcessed(_ context.Context, roomID string, actionIDs []int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	flip := make(map[int64]bool, len(actionIDs))
	for _, id := range actionIDs {
		flip[id] = true
	}
	for i, a := range s.db.actions[roomID] {
		if flip[a.ID] {
			a.State = action.StateProcessed
			s.db.actions[roomID][i] = a
		}
	}
	return nil
}

func (s memActions) Clear(_ context.Context, roomID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.actions, roomID)
	return nil
}
