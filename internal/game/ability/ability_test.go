package ability_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moonhowl/werewolfd/internal/game/ability"
	"github.com/moonhowl/werewolfd/internal/game/action"
	"github.com/moonhowl/werewolfd/internal/game/role"
	"github.com/moonhowl/werewolfd/internal/game/seat"
)

func roster() []seat.Seat {
	return []seat.Seat{
		{ID: 1, Role: role.Werewolf, IsAlive: true},
		{ID: 2, Role: role.Doctor, IsAlive: true},
		{ID: 3, Role: role.Detective, IsAlive: true},
		{ID: 4, Role: role.Witch, IsAlive: true},
		{ID: 5, Role: role.Vigilante, IsAlive: true},
		{ID: 6, Role: role.Villager, IsAlive: true},
		{ID: 7, Role: role.Villager, IsAlive: false},
	}
}

func ctxFor(actorID int64) ability.CheckContext {
	r := roster()
	actor, ok := seat.ByID(r, actorID)
	if !ok {
		panic("unknown actor in test roster")
	}
	return ability.CheckContext{Actor: actor, Roster: r}
}

func actorRef(id int64) *int64 { return &id }

func TestActions_PassiveRolesHaveNone(t *testing.T) {
	for _, r := range []role.Name{role.Villager, role.Drunk, role.Cursed} {
		ctx := ctxFor(6)
		ctx.Actor.Role = r
		assert.Empty(t, ability.Actions(ctx), "role %s", r)
	}
}

func TestActions_Werewolf(t *testing.T) {
	got := ability.Actions(ctxFor(1))
	require.Len(t, got, 1)
	a := got[0]
	assert.Equal(t, action.WerewolfKill, a.Type)
	assert.Equal(t, ability.LabelKill, a.Label)
	assert.True(t, a.Enabled)
	// All living seats except self; dead seat 7 excluded.
	assert.Equal(t, []int64{2, 3, 4, 5, 6}, a.ValidTargets)
}

func TestActions_Werewolf_NotGatedOnOwnLiveness(t *testing.T) {
	ctx := ctxFor(1)
	ctx.Actor.IsAlive = false
	got := ability.Actions(ctx)
	require.Len(t, got, 1)
	assert.True(t, got[0].Enabled)
}

func TestActions_Detective(t *testing.T) {
	got := ability.Actions(ctxFor(3))
	require.Len(t, got, 1)
	a := got[0]
	assert.Equal(t, action.Investigate, a.Type)
	assert.True(t, a.Enabled)
	assert.NotContains(t, a.ValidTargets, int64(3))

	ctx := ctxFor(3)
	ctx.Actor.IsAlive = false
	a = ability.Actions(ctx)[0]
	assert.False(t, a.Enabled)
	assert.Equal(t, ability.ReasonDead, a.DisabledReason)
}

func TestActions_Doctor_SelfHealAllowedByDefault(t *testing.T) {
	ctx := ctxFor(2)
	ctx.Settings.AllowMultipleSelfHeals = false
	got := ability.Actions(ctx)
	require.Len(t, got, 1)
	a := got[0]
	assert.Equal(t, action.Revive, a.Type)
	assert.True(t, a.Enabled)
	// No prior self-heal: self is a valid target.
	assert.Contains(t, a.ValidTargets, int64(2))
}

func TestActions_Doctor_NoRepeatSelfHeal(t *testing.T) {
	ctx := ctxFor(2)
	ctx.Settings.AllowMultipleSelfHeals = false
	ctx.Processed = []action.GameAction{
		{ID: 10, ActorID: actorRef(2), Type: action.Revive, TargetID: 6, Night: 0, State: action.StateProcessed},
		{ID: 11, ActorID: actorRef(2), Type: action.Revive, TargetID: 2, Night: 1, State: action.StateProcessed},
	}
	a := ability.Actions(ctx)[0]
	assert.NotContains(t, a.ValidTargets, int64(2))
	assert.True(t, a.Enabled)

	// After healing someone else, self becomes valid again.
	ctx.Processed = append(ctx.Processed, action.GameAction{
		ID: 12, ActorID: actorRef(2), Type: action.Revive, TargetID: 3, Night: 2, State: action.StateProcessed,
	})
	a = ability.Actions(ctx)[0]
	assert.Contains(t, a.ValidTargets, int64(2))
}

func TestActions_Doctor_RepeatSelfHealAllowedBySetting(t *testing.T) {
	ctx := ctxFor(2)
	ctx.Settings.AllowMultipleSelfHeals = true
	ctx.Processed = []action.GameAction{
		{ID: 11, ActorID: actorRef(2), Type: action.Revive, TargetID: 2, Night: 1, State: action.StateProcessed},
	}
	a := ability.Actions(ctx)[0]
	assert.Contains(t, a.ValidTargets, int64(2))
}

func TestActions_Doctor_Dead(t *testing.T) {
	ctx := ctxFor(2)
	ctx.Actor.IsAlive = false
	a := ability.Actions(ctx)[0]
	assert.False(t, a.Enabled)
	assert.Equal(t, ability.ReasonDead, a.DisabledReason)
}

func TestActions_Vigilante_GuiltSuicideDisables(t *testing.T) {
	ctx := ctxFor(5)
	a := ability.Actions(ctx)[0]
	assert.True(t, a.Enabled)
	assert.NotContains(t, a.ValidTargets, int64(5))

	ctx.Queued = []action.GameAction{
		{ID: 20, ActorID: actorRef(5), Type: action.Suicide, TargetID: 5, Night: 1, State: action.StateQueued},
	}
	a = ability.Actions(ctx)[0]
	assert.False(t, a.Enabled)
	assert.Equal(t, ability.ReasonGuilt, a.DisabledReason)
}

func TestActions_Vigilante_OtherSeatsSuicideDoesNotDisable(t *testing.T) {
	ctx := ctxFor(5)
	ctx.Queued = []action.GameAction{
		{ID: 20, ActorID: actorRef(4), Type: action.Suicide, TargetID: 4, Night: 1, State: action.StateQueued},
	}
	a := ability.Actions(ctx)[0]
	assert.True(t, a.Enabled)
}

func TestActions_Witch_TwoActions(t *testing.T) {
	got := ability.Actions(ctxFor(4))
	require.Len(t, got, 2)
	heal, kill := got[0], got[1]
	assert.Equal(t, action.Revive, heal.Type)
	assert.Equal(t, action.Kill, kill.Type)
	// Heal may target self; kill may not.
	assert.Contains(t, heal.ValidTargets, int64(4))
	assert.NotContains(t, kill.ValidTargets, int64(4))
}

func TestActions_Witch_SingleUsePerType(t *testing.T) {
	ctx := ctxFor(4)
	ctx.Processed = []action.GameAction{
		{ID: 30, ActorID: actorRef(4), Type: action.Kill, TargetID: 6, Night: 0, State: action.StateProcessed},
	}
	got := ability.Actions(ctx)
	heal, kill := got[0], got[1]
	assert.True(t, heal.Enabled, "revive tracked independently of kill")
	assert.False(t, kill.Enabled)
	assert.Equal(t, ability.ReasonUsedOnce, kill.DisabledReason)

	ctx.Processed = append(ctx.Processed, action.GameAction{
		ID: 31, ActorID: actorRef(4), Type: action.Revive, TargetID: 4, Night: 1, State: action.StateProcessed,
	})
	got = ability.Actions(ctx)
	assert.False(t, got[0].Enabled)
	assert.False(t, got[1].Enabled)
}

func TestActions_Witch_Dead(t *testing.T) {
	ctx := ctxFor(4)
	ctx.Actor.IsAlive = false
	for _, a := range ability.Actions(ctx) {
		assert.False(t, a.Enabled)
		assert.Equal(t, ability.ReasonDead, a.DisabledReason)
	}
}

func TestActions_UnknownRoleEmpty(t *testing.T) {
	ctx := ctxFor(6)
	ctx.Actor.Role = "jester"
	assert.Empty(t, ability.Actions(ctx))
}
