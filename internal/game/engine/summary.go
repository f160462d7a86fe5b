package engine

import (
	"context"

	"github.com/moonhowl/werewolfd/internal/game/action"
)

// RoundHistory is one round's processed actions, split into the night batch
// and the day vote.
type RoundHistory struct {
	Night        int
	NightActions []action.GameAction
	DayActions   []action.GameAction
}

// Summary groups the room's processed actions by round. Every round from 0
// to the max observed round is represented, rounds without actions as empty
// entries, so clients can render a complete timeline.
func (e *Engine) Summary(ctx context.Context, roomID string) ([]RoundHistory, error) {
	processed, err := e.actions.Processed(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return BuildSummary(processed), nil
}

// BuildSummary splits processed actions into per-round history entries.
// VotedOut entries are day actions; everything else is a night action.
//
// Postcondition: result has maxNight+1 entries indexed by round (empty for a
// ledger with no processed actions).
func BuildSummary(processed []action.GameAction) []RoundHistory {
	if len(processed) == 0 {
		return []RoundHistory{}
	}

	maxNight := 0
	for _, a := range processed {
		if a.Night > maxNight {
			maxNight = a.Night
		}
	}

	out := make([]RoundHistory, maxNight+1)
	for i := range out {
		out[i] = RoundHistory{
			Night:        i,
			NightActions: []action.GameAction{},
			DayActions:   []action.GameAction{},
		}
	}
	for _, a := range processed {
		entry := &out[a.Night]
		if a.Type == action.VotedOut {
			entry.DayActions = append(entry.DayActions, a)
		} else {
			entry.NightActions = append(entry.NightActions, a)
		}
	}
	return out
}
