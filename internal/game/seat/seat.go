// Package seat defines the player-in-game record: one seat per non-moderator
// room member for the duration of a game.
package seat

import (
	"github.com/google/uuid"

	"github.com/moonhowl/werewolfd/internal/game/role"
)

// Seat is a player's place in a running game. Seats are created when cards
// are dealt and replaced wholesale when a new game starts in the same room.
type Seat struct {
	// ID is the seat's room-scoped ledger id; 0 means not yet saved.
	ID int64
	// RoomID is the owning room's join code.
	RoomID string
	// PlayerID is the player's account identity.
	PlayerID uuid.UUID
	// Nickname is the display name the player joined with.
	Nickname string
	// AvatarIndex selects the player's avatar.
	AvatarIndex int
	// Role is the dealt role. Immutable for the game's duration.
	Role role.Name
	// IsAlive is the seat's life state.
	IsAlive bool
	// NightKilled is the round the seat died on, nil while alive.
	NightKilled *int
}

// Living returns the subset of seats that are alive, preserving order.
func Living(seats []Seat) []Seat {
	out := make([]Seat, 0, len(seats))
	for _, s := range seats {
		if s.IsAlive {
			out = append(out, s)
		}
	}
	return out
}

// ByID returns the seat with the given id, or false when absent.
func ByID(seats []Seat, id int64) (Seat, bool) {
	for _, s := range seats {
		if s.ID == id {
			return s, true
		}
	}
	return Seat{}, false
}
