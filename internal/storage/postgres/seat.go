package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/moonhowl/werewolfd/internal/game/engine"
	"github.com/moonhowl/werewolfd/internal/game/seat"
)

// SeatStore persists dealt seats. Implements engine.SeatStore.
type SeatStore struct {
	db *pgxpool.Pool
}

// NewSeatStore creates a SeatStore backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSeatStore(db *pgxpool.Pool) *SeatStore {
	return &SeatStore{db: db}
}

// Roster returns every seat in the room's current game, living and dead.
func (s *SeatStore) Roster(ctx context.Context, roomID string) ([]seat.Seat, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, room_id, player_id, nickname, avatar_index, role, is_alive, night_killed
		 FROM seats WHERE room_id = $1 ORDER BY id`,
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying roster: %w", err)
	}
	defer rows.Close()

	var roster []seat.Seat
	for rows.Next() {
		var st seat.Seat
		if err := rows.Scan(&st.ID, &st.RoomID, &st.PlayerID, &st.Nickname,
			&st.AvatarIndex, &st.Role, &st.IsAlive, &st.NightKilled); err != nil {
			return nil, fmt.Errorf("scanning seat: %w", err)
		}
		roster = append(roster, st)
	}
	return roster, rows.Err()
}

// Get returns one seat.
//
// Postcondition: Returns the Seat or engine.ErrSeatNotFound.
func (s *SeatStore) Get(ctx context.Context, roomID string, seatID int64) (seat.Seat, error) {
	var st seat.Seat
	err := s.db.QueryRow(ctx,
		`SELECT id, room_id, player_id, nickname, avatar_index, role, is_alive, night_killed
		 FROM seats WHERE room_id = $1 AND id = $2`,
		roomID, seatID,
	).Scan(&st.ID, &st.RoomID, &st.PlayerID, &st.Nickname,
		&st.AvatarIndex, &st.Role, &st.IsAlive, &st.NightKilled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return seat.Seat{}, engine.ErrSeatNotFound
		}
		return seat.Seat{}, fmt.Errorf("querying seat: %w", err)
	}
	return st, nil
}

// Add inserts the given seats in one batch.
func (s *SeatStore) Add(ctx context.Context, seats []seat.Seat) error {
	batch := &pgx.Batch{}
	for _, st := range seats {
		batch.Queue(
			`INSERT INTO seats (room_id, player_id, nickname, avatar_index, role, is_alive, night_killed)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			st.RoomID, st.PlayerID, st.Nickname, st.AvatarIndex, st.Role, st.IsAlive, st.NightKilled,
		)
	}
	if err := s.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("inserting seats: %w", err)
	}
	return nil
}

// Update rewrites one seat's mutable fields.
//
// Postcondition: Returns engine.ErrSeatNotFound when no row matches.
func (s *SeatStore) Update(ctx context.Context, st seat.Seat) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE seats SET is_alive = $3, night_killed = $4
		 WHERE room_id = $1 AND id = $2`,
		st.RoomID, st.ID, st.IsAlive, st.NightKilled,
	)
	if err != nil {
		return fmt.Errorf("updating seat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return engine.ErrSeatNotFound
	}
	return nil
}

// MarkDead sets the given seats dead, stamping the death round.
func (s *SeatStore) MarkDead(ctx context.Context, roomID string, seatIDs []int64, night int) error {
	_, err := s.db.Exec(ctx,
		`UPDATE seats SET is_alive = FALSE, night_killed = $3
		 WHERE room_id = $1 AND id = ANY($2)`,
		roomID, seatIDs, night,
	)
	if err != nil {
		return fmt.Errorf("marking seats dead: %w", err)
	}
	return nil
}

// RemoveAll deletes every seat for the room.
func (s *SeatStore) RemoveAll(ctx context.Context, roomID string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM seats WHERE room_id = $1`, roomID)
	if err != nil {
		return fmt.Errorf("removing seats: %w", err)
	}
	return nil
}
