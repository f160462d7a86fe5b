// Package room defines the room record, lobby membership, and the directory
// service that manages both. Gameplay never mutates membership; the engine
// only reads it and touches the room's phase and win fields.
package room

import (
	"github.com/google/uuid"
)

// GameState tracks whether cards have been dealt in a room.
type GameState string

const (
	// StateLobby means players are gathering; no game is running.
	StateLobby GameState = "lobby"
	// StateCardsDealt means roles are assigned and the game is underway.
	StateCardsDealt GameState = "cards_dealt"
)

// WinCondition identifies the faction a finished game went to.
// Write-once per game: once non-None it is never recomputed until reset.
type WinCondition string

const (
	WinNone       WinCondition = "none"
	WinVillagers  WinCondition = "villagers"
	WinWerewolves WinCondition = "werewolves"
)

// Room is the shared game room record.
type Room struct {
	// ID is the human-typable join code.
	ID string
	// Moderator is the player driving phase transitions.
	Moderator uuid.UUID
	// State reports whether cards are dealt.
	State GameState
	// CurrentNight is the round counter. Starts at 0; incremented only on
	// the day-to-night transition.
	CurrentNight int
	// IsDay is the phase flag. Games begin at night.
	IsDay bool
	// Win is the memoized win condition for the current game.
	Win WinCondition
}

// ResetForNewGame returns the room to round 0, night, no winner.
func (r *Room) ResetForNewGame() {
	r.CurrentNight = 0
	r.IsDay = false
	r.Win = WinNone
}

// Member is a lobby membership row: a player who joined the room, moderator
// included. Seats are dealt from members at game start.
type Member struct {
	// ID is the membership row id; 0 means not yet saved.
	ID int64
	// RoomID is the owning room's join code.
	RoomID string
	// PlayerID is the player's account identity.
	PlayerID uuid.UUID
	// Nickname is the display name shown in the lobby.
	Nickname string
	// AvatarIndex selects the player's avatar.
	AvatarIndex int
}

// WithoutPlayer returns members excluding the given player id, preserving
// order.
func WithoutPlayer(members []Member, playerID uuid.UUID) []Member {
	out := make([]Member, 0, len(members))
	for _, m := range members {
		if m.PlayerID == playerID {
			continue
		}
		out = append(out, m)
	}
	return out
}
