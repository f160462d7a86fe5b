// Package engine is the night-action resolution engine: it consumes queued
// actions at end of night, resolves them into deaths and deferred effects,
// advances the phase clock, and tracks win conditions. All persistence goes
// through the store contracts below; the engine never touches storage or
// transport directly.
package engine

import (
	"context"
	"errors"

	"github.com/moonhowl/werewolfd/internal/game/action"
	"github.com/moonhowl/werewolfd/internal/game/seat"
)

// ErrSeatNotFound is returned when a seat lookup yields no row.
var ErrSeatNotFound = errors.New("seat not found")

// ErrActionNotFound is returned when an action lookup yields no row.
var ErrActionNotFound = errors.New("action not found")

// ErrNotEnoughPlayers is returned by StartGame when the lobby cannot cover
// the configured deck.
var ErrNotEnoughPlayers = errors.New("more players are needed for current game settings")

// ErrMissingActor is returned when an action type that requires an actor is
// submitted or resolved without one.
var ErrMissingActor = errors.New("no player assigned for this action")

// ErrTargetNotInRoster is returned when an action targets a seat id that
// does not resolve to a roster member. Reaching the resolver with such an
// action is a data-integrity fault; submissions are validated up front.
var ErrTargetNotInRoster = errors.New("action target not found in roster")

// SeatStore persists the per-game seats (players with dealt roles).
type SeatStore interface {
	// Roster returns every seat in the room's current game, living and dead.
	Roster(ctx context.Context, roomID string) ([]seat.Seat, error)
	// Get returns one seat, or ErrSeatNotFound.
	Get(ctx context.Context, roomID string, seatID int64) (seat.Seat, error)
	// Add inserts the given seats.
	Add(ctx context.Context, seats []seat.Seat) error
	// Update rewrites one seat's mutable fields (life state).
	Update(ctx context.Context, s seat.Seat) error
	// MarkDead sets the given seats dead, stamping the death round.
	MarkDead(ctx context.Context, roomID string, seatIDs []int64, night int) error
	// RemoveAll deletes every seat for the room (new-game reset).
	RemoveAll(ctx context.Context, roomID string) error
}

// ActionStore owns the game-action ledger.
type ActionStore interface {
	// Queued returns all queued entries for the room, oldest first.
	Queued(ctx context.Context, roomID string) ([]action.GameAction, error)
	// QueuedForActor returns the actor's queued entry, or ErrActionNotFound.
	QueuedForActor(ctx context.Context, roomID string, actorID int64) (action.GameAction, error)
	// QueuedWerewolfKill returns the room's single shared queued werewolf
	// kill, or ErrActionNotFound.
	QueuedWerewolfKill(ctx context.Context, roomID string) (action.GameAction, error)
	// Processed returns all processed entries for the room, oldest first.
	Processed(ctx context.Context, roomID string) ([]action.GameAction, error)
	// Save inserts a (ID == 0) or rewrites (ID != 0) a ledger entry,
	// populating ID on insert.
	Save(ctx context.Context, a *action.GameAction) error
	// Delete removes an entry by id. Deleting an absent id is a no-op.
	Delete(ctx context.Context, actionID int64) error
	// MarkProcessed flips the given entries to the processed state.
	MarkProcessed(ctx context.Context, roomID string, actionIDs []int64) error
	// Clear wipes the room's ledger (new-game reset).
	Clear(ctx context.Context, roomID string) error
}
