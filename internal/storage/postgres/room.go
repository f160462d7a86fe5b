package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/moonhowl/werewolfd/internal/game/room"
)

// ErrRoomExists is returned when creating a room whose join code is taken.
var ErrRoomExists = errors.New("room already exists")

// RoomStore persists room records. Implements room.Store.
type RoomStore struct {
	db *pgxpool.Pool
}

// NewRoomStore creates a RoomStore backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewRoomStore(db *pgxpool.Pool) *RoomStore {
	return &RoomStore{db: db}
}

// Get returns the room with the given join code.
//
// Postcondition: Returns the Room or room.ErrRoomNotFound.
func (s *RoomStore) Get(ctx context.Context, id string) (room.Room, error) {
	var r room.Room
	err := s.db.QueryRow(ctx,
		`SELECT id, moderator, state, current_night, is_day, win
		 FROM rooms WHERE id = $1`,
		id,
	).Scan(&r.ID, &r.Moderator, &r.State, &r.CurrentNight, &r.IsDay, &r.Win)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return room.Room{}, room.ErrRoomNotFound
		}
		return room.Room{}, fmt.Errorf("querying room: %w", err)
	}
	return r, nil
}

// Create inserts a new room record.
//
// Postcondition: Returns ErrRoomExists if the join code is taken.
func (s *RoomStore) Create(ctx context.Context, r room.Room) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO rooms (id, moderator, state, current_night, is_day, win)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		r.ID, r.Moderator, r.State, r.CurrentNight, r.IsDay, r.Win,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrRoomExists
		}
		return fmt.Errorf("inserting room: %w", err)
	}
	return nil
}

// Update writes the full room record back.
//
// Postcondition: Returns room.ErrRoomNotFound when no row matches.
func (s *RoomStore) Update(ctx context.Context, r room.Room) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE rooms
		 SET moderator = $2, state = $3, current_night = $4, is_day = $5, win = $6
		 WHERE id = $1`,
		r.ID, r.Moderator, r.State, r.CurrentNight, r.IsDay, r.Win,
	)
	if err != nil {
		return fmt.Errorf("updating room: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return room.ErrRoomNotFound
	}
	return nil
}

// Exists reports whether a room with the given join code exists.
func (s *RoomStore) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM rooms WHERE id = $1)`,
		id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking room existence: %w", err)
	}
	return exists, nil
}

// MemberStore persists lobby membership rows. Implements room.MemberStore.
type MemberStore struct {
	db *pgxpool.Pool
}

// NewMemberStore creates a MemberStore backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewMemberStore(db *pgxpool.Pool) *MemberStore {
	return &MemberStore{db: db}
}

// Members returns all membership rows for a room in join order.
func (s *MemberStore) Members(ctx context.Context, roomID string) ([]room.Member, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, room_id, player_id, nickname, avatar_index
		 FROM room_members WHERE room_id = $1 ORDER BY id`,
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying members: %w", err)
	}
	defer rows.Close()

	var members []room.Member
	for rows.Next() {
		var m room.Member
		if err := rows.Scan(&m.ID, &m.RoomID, &m.PlayerID, &m.Nickname, &m.AvatarIndex); err != nil {
			return nil, fmt.Errorf("scanning member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// Member returns the membership row for a player.
//
// Postcondition: Returns the Member or room.ErrMemberNotFound.
func (s *MemberStore) Member(ctx context.Context, roomID string, playerID uuid.UUID) (room.Member, error) {
	var m room.Member
	err := s.db.QueryRow(ctx,
		`SELECT id, room_id, player_id, nickname, avatar_index
		 FROM room_members WHERE room_id = $1 AND player_id = $2`,
		roomID, playerID,
	).Scan(&m.ID, &m.RoomID, &m.PlayerID, &m.Nickname, &m.AvatarIndex)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return room.Member{}, room.ErrMemberNotFound
		}
		return room.Member{}, fmt.Errorf("querying member: %w", err)
	}
	return m, nil
}

// Add inserts a membership row.
func (s *MemberStore) Add(ctx context.Context, m room.Member) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO room_members (room_id, player_id, nickname, avatar_index)
		 VALUES ($1, $2, $3, $4)`,
		m.RoomID, m.PlayerID, m.Nickname, m.AvatarIndex,
	)
	if err != nil {
		return fmt.Errorf("inserting member: %w", err)
	}
	return nil
}

// Update rewrites a membership row's display details.
//
// Postcondition: Returns room.ErrMemberNotFound when no row matches.
func (s *MemberStore) Update(ctx context.Context, m room.Member) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE room_members SET nickname = $3, avatar_index = $4
		 WHERE room_id = $1 AND player_id = $2`,
		m.RoomID, m.PlayerID, m.Nickname, m.AvatarIndex,
	)
	if err != nil {
		return fmt.Errorf("updating member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return room.ErrMemberNotFound
	}
	return nil
}

// Remove deletes a player's membership row. Removing an absent player is not
// an error.
func (s *MemberStore) Remove(ctx context.Context, roomID string, playerID uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		`DELETE FROM room_members WHERE room_id = $1 AND player_id = $2`,
		roomID, playerID,
	)
	if err != nil {
		return fmt.Errorf("removing member: %w", err)
	}
	return nil
}
