// Package action defines the night-action ledger records shared by the role
// capability table, the resolution engine, and the stores.
package action

// Type identifies what a ledger entry does when resolved.
type Type string

// Action types. WerewolfKill is the shared pack kill; Kill is the Witch's
// poison; Suicide only ever appears as a resolver-generated deferred entry.
const (
	Kill          Type = "kill"
	WerewolfKill  Type = "werewolf_kill"
	VigilanteKill Type = "vigilante_kill"
	Revive        Type = "revive"
	Investigate   Type = "investigate"
	Suicide       Type = "suicide"
	VotedOut      Type = "voted_out"
)

// State is an entry's lifecycle state in the ledger.
type State string

const (
	// StateQueued marks an entry awaiting resolution.
	StateQueued State = "queued"
	// StateProcessed marks an entry that has been resolved and is now history.
	StateProcessed State = "processed"
)

// GameAction is one ledger entry.
//
// Invariant: at most one queued entry exists per (room, actor) slot, except
// werewolf kills, which share a single queued entry per room regardless of
// which wolf submitted it.
type GameAction struct {
	// ID is the ledger row id; 0 means not yet saved.
	ID int64
	// RoomID is the owning room's join code.
	RoomID string
	// ActorID is the seat id of the acting player. Nil for entries with no
	// actor, such as a day-vote VotedOut record.
	ActorID *int64
	// Type is the action performed.
	Type Type
	// TargetID is the seat id the action affects.
	TargetID int64
	// Night is the round counter at queue time (or, for deferred entries,
	// the round the entry becomes due).
	Night int
	// State is the ledger lifecycle state.
	State State
}

// ByActor reports whether the entry's actor is the given seat id.
func (a GameAction) ByActor(seatID int64) bool {
	return a.ActorID != nil && *a.ActorID == seatID
}
