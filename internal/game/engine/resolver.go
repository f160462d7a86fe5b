package engine

import (
	"fmt"
	"sort"

	"github.com/moonhowl/werewolfd/internal/game/action"
	"github.com/moonhowl/werewolfd/internal/game/seat"
)

// NightResult is the outcome of resolving one night's queued batch.
type NightResult struct {
	// Killed is the final death set, ascending by seat id.
	Killed []int64
	// Deferred holds resolver-generated entries queued for night+1
	// (currently only the Vigilante guilt Suicide).
	Deferred []action.GameAction
}

// ResolveNight resolves the queued batch into a consistent death set and the
// deferred actions it produces. Pure computation: no I/O, inputs unmodified.
//
// Effects accumulate into three sets (revived, killed, forcedDead) and are
// reconciled only at the end, so the final sets do not depend on the order
// the batch is iterated: a Revive cancels a same-night Kill whether it is
// seen before the kill (the kill finds the target already revived) or after
// (the revive removes the target from the killed set). A deferred Suicide
// ignores the revived set by design: the guilt death is uncancellable.
//
// A VigilanteKill whose target is not a roster member, or that carries no
// actor when the target turns out innocent, is a data-integrity fault and
// aborts the batch.
//
// Postcondition: Killed is sorted and duplicate-free; every Deferred entry
// is a queued Suicide for night+1.
func ResolveNight(queued []action.GameAction, roster []seat.Seat, night int) (NightResult, error) {
	revived := make(map[int64]struct{})
	killed := make(map[int64]struct{})
	forcedDead := make(map[int64]struct{})
	var deferred []action.GameAction

	for _, a := range queued {
		switch a.Type {
		case action.Investigate:
			// Pure information action; resolved instantaneously elsewhere.
		case action.Suicide:
			forcedDead[a.TargetID] = struct{}{}
		case action.Kill, action.WerewolfKill:
			if _, ok := revived[a.TargetID]; ok {
				continue
			}
			killed[a.TargetID] = struct{}{}
		case action.VigilanteKill:
			if _, ok := revived[a.TargetID]; ok {
				continue
			}
			killed[a.TargetID] = struct{}{}

			target, ok := seat.ByID(roster, a.TargetID)
			if !ok {
				return NightResult{}, fmt.Errorf("resolving vigilante kill %d: %w", a.ID, ErrTargetNotInRoster)
			}
			if target.Role.IsWerewolf() {
				// Justified shot, no penalty.
				continue
			}
			if a.ActorID == nil {
				return NightResult{}, fmt.Errorf("resolving vigilante kill %d: %w", a.ID, ErrMissingActor)
			}
			shooter := *a.ActorID
			deferred = append(deferred, action.GameAction{
				RoomID:   a.RoomID,
				ActorID:  &shooter,
				Type:     action.Suicide,
				TargetID: shooter,
				Night:    night + 1,
				State:    action.StateQueued,
			})
		case action.Revive:
			delete(killed, a.TargetID)
			revived[a.TargetID] = struct{}{}
		default:
			// Unknown types are ignored.
		}
	}

	for id := range forcedDead {
		killed[id] = struct{}{}
	}

	out := make([]int64, 0, len(killed))
	for id := range killed {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return NightResult{Killed: out, Deferred: deferred}, nil
}
