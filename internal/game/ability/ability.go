// Package ability is the role capability table: given a seat and the current
// game context it produces the actions the seat's role may perform this
// phase, with per-action enablement and valid-target lists.
//
// All role rules live in the switch in Actions so the full rule set stays
// reviewable in one place.
package ability

import (
	"github.com/moonhowl/werewolfd/internal/game/action"
	"github.com/moonhowl/werewolfd/internal/game/role"
	"github.com/moonhowl/werewolfd/internal/game/seat"
)

// Disabled-reason strings surfaced to clients.
const (
	ReasonDead     = "Player is dead"
	ReasonGuilt    = "The Vigilante is guilt ridden and has decided to take his life tonight"
	ReasonUsedOnce = "Ability was previously used"
)

// Action labels surfaced to clients.
const (
	LabelKill        = "Kill Player"
	LabelHeal        = "Heal Player"
	LabelInvestigate = "Investigate Player"
)

// Descriptor is one action a role can in principle perform this phase.
type Descriptor struct {
	Label string
	Type  action.Type
	// Enabled reports whether the action may be queued right now.
	Enabled bool
	// DisabledReason explains a false Enabled; empty otherwise.
	DisabledReason string
	// ValidTargets lists the seat ids the action may target.
	ValidTargets []int64
}

// CheckContext bundles everything a capability decision can depend on.
type CheckContext struct {
	// Actor is the seat whose actions are requested.
	Actor seat.Seat
	// Processed is the full processed-action history for this game.
	Processed []action.GameAction
	// Queued is the full set of currently queued actions.
	Queued []action.GameAction
	// Roster is every seat in the game, living and dead.
	Roster []seat.Seat
	// Settings is the room's role configuration.
	Settings role.Settings
}

// Actions returns the capability list for the actor's role.
//
// Liveness of the actor gates individual actions (with ReasonDead) but never
// removes them from the list; callers decide whether to ask at all for dead
// seats. Werewolves are the exception: the shared pack kill is not gated on
// the submitting wolf's liveness here.
//
// Postcondition: Returns an empty list for passive roles (Villager, Drunk,
// Cursed) and for unknown roles.
func Actions(ctx CheckContext) []Descriptor {
	switch ctx.Actor.Role {
	case role.Werewolf:
		return []Descriptor{{
			Label:        LabelKill,
			Type:         action.WerewolfKill,
			Enabled:      true,
			ValidTargets: livingTargets(ctx.Roster, ctx.Actor.ID),
		}}
	case role.Doctor:
		return []Descriptor{doctorHeal(ctx)}
	case role.Detective:
		d := Descriptor{
			Label:        LabelInvestigate,
			Type:         action.Investigate,
			Enabled:      true,
			ValidTargets: livingTargets(ctx.Roster, ctx.Actor.ID),
		}
		if !ctx.Actor.IsAlive {
			d.Enabled = false
			d.DisabledReason = ReasonDead
		}
		return []Descriptor{d}
	case role.Vigilante:
		return []Descriptor{vigilanteKill(ctx)}
	case role.Witch:
		return []Descriptor{witchHeal(ctx), witchKill(ctx)}
	default:
		return []Descriptor{}
	}
}

// doctorHeal builds the Doctor's heal action. When repeated self-heals are
// disallowed, the Doctor's own seat is excluded from the targets whenever
// their most recent processed Revive targeted themself.
func doctorHeal(ctx CheckContext) Descriptor {
	d := Descriptor{
		Label:        LabelHeal,
		Type:         action.Revive,
		Enabled:      true,
		ValidTargets: livingTargets(ctx.Roster, noExclusion),
	}
	if !ctx.Actor.IsAlive {
		d.Enabled = false
		d.DisabledReason = ReasonDead
		return d
	}
	if !ctx.Settings.AllowMultipleSelfHeals && lastReviveWasSelf(ctx.Processed, ctx.Actor.ID) {
		d.ValidTargets = excludeID(d.ValidTargets, ctx.Actor.ID)
	}
	return d
}

// vigilanteKill builds the Vigilante's kill. A queued guilt Suicide for this
// seat disables the action for the night it is due.
func vigilanteKill(ctx CheckContext) Descriptor {
	d := Descriptor{
		Label:        LabelKill,
		Type:         action.VigilanteKill,
		Enabled:      true,
		ValidTargets: livingTargets(ctx.Roster, ctx.Actor.ID),
	}
	if !ctx.Actor.IsAlive {
		d.Enabled = false
		d.DisabledReason = ReasonDead
		return d
	}
	for _, q := range ctx.Queued {
		if q.Type == action.Suicide && q.ByActor(ctx.Actor.ID) {
			d.Enabled = false
			d.DisabledReason = ReasonGuilt
			break
		}
	}
	return d
}

// witchHeal builds the Witch's single-use revive. Self-targeting is allowed.
func witchHeal(ctx CheckContext) Descriptor {
	d := Descriptor{
		Label:        LabelHeal,
		Type:         action.Revive,
		Enabled:      true,
		ValidTargets: livingTargets(ctx.Roster, noExclusion),
	}
	disableWitchAction(&d, ctx)
	return d
}

// witchKill builds the Witch's single-use poison.
func witchKill(ctx CheckContext) Descriptor {
	d := Descriptor{
		Label:        LabelKill,
		Type:         action.Kill,
		Enabled:      true,
		ValidTargets: livingTargets(ctx.Roster, ctx.Actor.ID),
	}
	disableWitchAction(&d, ctx)
	return d
}

// disableWitchAction applies the Witch gating shared by both her actions:
// dead witches act on nothing, and each action type is usable once per game.
func disableWitchAction(d *Descriptor, ctx CheckContext) {
	if !ctx.Actor.IsAlive {
		d.Enabled = false
		d.DisabledReason = ReasonDead
		return
	}
	for _, p := range ctx.Processed {
		if p.Type == d.Type && p.ByActor(ctx.Actor.ID) {
			d.Enabled = false
			d.DisabledReason = ReasonUsedOnce
			return
		}
	}
}

// lastReviveWasSelf reports whether the actor's most recent processed Revive
// (latest night, ties broken by ledger id) targeted the actor themself.
func lastReviveWasSelf(processed []action.GameAction, actorID int64) bool {
	var last *action.GameAction
	for i := range processed {
		p := &processed[i]
		if p.Type != action.Revive || !p.ByActor(actorID) {
			continue
		}
		if last == nil || p.Night > last.Night || (p.Night == last.Night && p.ID > last.ID) {
			last = p
		}
	}
	return last != nil && last.TargetID == actorID
}

// noExclusion is passed to livingTargets when self-targeting is allowed.
const noExclusion int64 = -1

// livingTargets returns the seat ids of all living roster members, excluding
// excludeID when it is a real seat id.
func livingTargets(roster []seat.Seat, excludeID int64) []int64 {
	out := make([]int64, 0, len(roster))
	for _, s := range roster {
		if !s.IsAlive || s.ID == excludeID {
			continue
		}
		out = append(out, s.ID)
	}
	return out
}

// excludeID returns ids without the given id, preserving order.
func excludeID(ids []int64, id int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
