// Package role defines the closed set of role identities and the per-room
// role settings that drive dealing and ability decisions.
package role

import "fmt"

// Name is a role identity. The set is closed: role behavior is dispatched
// through a switch in the ability package, not an open hierarchy.
type Name string

const (
	Werewolf  Name = "werewolf"
	Doctor    Name = "doctor"
	Detective Name = "detective"
	Witch     Name = "witch"
	Vigilante Name = "vigilante"
	Villager  Name = "villager"
	Drunk     Name = "drunk"
	Cursed    Name = "cursed"
)

// All lists every role identity, werewolf first.
var All = []Name{Werewolf, Doctor, Detective, Witch, Vigilante, Villager, Drunk, Cursed}

// Parse returns the Name for s, or an error for an unknown role string.
func Parse(s string) (Name, error) {
	for _, n := range All {
		if string(n) == s {
			return n, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Valid reports whether n is a recognised role identity.
func (n Name) Valid() bool {
	for _, r := range All {
		if n == r {
			return true
		}
	}
	return false
}

// IsWerewolf reports whether n belongs to the werewolf faction for
// win-condition purposes.
func (n Name) IsWerewolf() bool {
	return n == Werewolf
}

// Settings is the per-room deal and rule configuration. Read-only input to
// dealing and ability decisions; mutated only by an explicit settings update.
type Settings struct {
	RoomID string
	// Werewolves is the number of werewolf cards added to the deck.
	Werewolves int
	// SelectedRoles is the non-werewolf role list dealt before Villager fill.
	SelectedRoles []Name
	// AllowMultipleSelfHeals lets the Doctor self-heal on consecutive nights.
	AllowMultipleSelfHeals bool
	// ShowGameSummary exposes the end-of-game summary to players.
	ShowGameSummary bool
}

// CardsNeeded returns the number of players required to start a game with
// these settings.
func (s Settings) CardsNeeded() int {
	return len(s.SelectedRoles) + s.Werewolves
}
