package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/moonhowl/werewolfd/internal/game/action"
	"github.com/moonhowl/werewolfd/internal/game/engine"
)

// ActionStore owns the game-action ledger. Implements engine.ActionStore.
type ActionStore struct {
	db *pgxpool.Pool
}

// NewActionStore creates an ActionStore backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewActionStore(db *pgxpool.Pool) *ActionStore {
	return &ActionStore{db: db}
}

const actionColumns = `id, room_id, actor_id, type, target_id, night, state`

func scanAction(row pgx.Row) (action.GameAction, error) {
	var a action.GameAction
	err := row.Scan(&a.ID, &a.RoomID, &a.ActorID, &a.Type, &a.TargetID, &a.Night, &a.State)
	return a, err
}

func (s *ActionStore) byState(ctx context.Context, roomID string, state action.State) ([]action.GameAction, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+actionColumns+` FROM game_actions
		 WHERE room_id = $1 AND state = $2 ORDER BY id`,
		roomID, state,
	)
	if err != nil {
		return nil, fmt.Errorf("querying actions: %w", err)
	}
	defer rows.Close()

	var actions []action.GameAction
	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning action: %w", err)
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

// Queued returns all queued entries for the room, oldest first.
func (s *ActionStore) Queued(ctx context.Context, roomID string) ([]action.GameAction, error) {
	return s.byState(ctx, roomID, action.StateQueued)
}

// Processed returns all processed entries for the room, oldest first.
func (s *ActionStore) Processed(ctx context.Context, roomID string) ([]action.GameAction, error) {
	return s.byState(ctx, roomID, action.StateProcessed)
}

// QueuedForActor returns the actor's queued entry.
//
// Postcondition: Returns the entry or engine.ErrActionNotFound.
func (s *ActionStore) QueuedForActor(ctx context.Context, roomID string, actorID int64) (action.GameAction, error) {
	a, err := scanAction(s.db.QueryRow(ctx,
		`SELECT `+actionColumns+` FROM game_actions
		 WHERE room_id = $1 AND actor_id = $2 AND state = $3`,
		roomID, actorID, action.StateQueued,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return action.GameAction{}, engine.ErrActionNotFound
		}
		return action.GameAction{}, fmt.Errorf("querying queued action: %w", err)
	}
	return a, nil
}

// QueuedWerewolfKill returns the room's single shared queued werewolf kill.
//
// Postcondition: Returns the entry or engine.ErrActionNotFound.
func (s *ActionStore) QueuedWerewolfKill(ctx context.Context, roomID string) (action.GameAction, error) {
	a, err := scanAction(s.db.QueryRow(ctx,
		`SELECT `+actionColumns+` FROM game_actions
		 WHERE room_id = $1 AND type = $2 AND state = $3`,
		roomID, action.WerewolfKill, action.StateQueued,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return action.GameAction{}, engine.ErrActionNotFound
		}
		return action.GameAction{}, fmt.Errorf("querying werewolf kill: %w", err)
	}
	return a, nil
}

// Save inserts (ID == 0) or rewrites (ID != 0) a ledger entry, populating ID
// on insert.
func (s *ActionStore) Save(ctx context.Context, a *action.GameAction) error {
	if a.ID == 0 {
		err := s.db.QueryRow(ctx,
			`INSERT INTO game_actions (room_id, actor_id, type, target_id, night, state)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING id`,
			a.RoomID, a.ActorID, a.Type, a.TargetID, a.Night, a.State,
		).Scan(&a.ID)
		if err != nil {
			return fmt.Errorf("inserting action: %w", err)
		}
		return nil
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE game_actions
		 SET actor_id = $2, type = $3, target_id = $4, night = $5, state = $6
		 WHERE id = $1`,
		a.ID, a.ActorID, a.Type, a.TargetID, a.Night, a.State,
	)
	if err != nil {
		return fmt.Errorf("updating action: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return engine.ErrActionNotFound
	}
	return nil
}

// Delete removes an entry by id. Deleting an absent id is a no-op.
func (s *ActionStore) Delete(ctx context.Context, actionID int64) error {
	_, err := s.db.Exec(ctx, `DELETE FROM game_actions WHERE id = $1`, actionID)
	if err != nil {
		return fmt.Errorf("deleting action: %w", err)
	}
	return nil
}

// MarkProcessed flips the given entries to the processed state.
func (s *ActionStore) MarkProcessed(ctx context.Context, roomID string, actionIDs []int64) error {
	_, err := s.db.Exec(ctx,
		`UPDATE game_actions SET state = $3
		 WHERE room_id = $1 AND id = ANY($2)`,
		roomID, actionIDs, action.StateProcessed,
	)
	if err != nil {
		return fmt.Errorf("marking actions processed: %w", err)
	}
	return nil
}

// Clear wipes the room's ledger.
func (s *ActionStore) Clear(ctx context.Context, roomID string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM game_actions WHERE room_id = $1`, roomID)
	if err != nil {
		return fmt.Errorf("clearing actions: %w", err)
	}
	return nil
}
