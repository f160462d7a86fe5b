package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moonhowl/werewolfd/internal/game/action"
	"github.com/moonhowl/werewolfd/internal/game/engine"
)

func TestBuildSummary_Empty(t *testing.T) {
	got := engine.BuildSummary(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestBuildSummary_GroupsByRoundWithGaps(t *testing.T) {
	processed := []action.GameAction{
		{ID: 1, Type: action.WerewolfKill, TargetID: 4, Night: 0, State: action.StateProcessed},
		{ID: 2, Type: action.Revive, TargetID: 4, Night: 0, State: action.StateProcessed},
		{ID: 3, Type: action.VotedOut, TargetID: 2, Night: 0, State: action.StateProcessed},
		// Round 1 had no recorded actions at all.
		{ID: 4, Type: action.Investigate, TargetID: 1, Night: 2, State: action.StateProcessed},
	}

	got := engine.BuildSummary(processed)
	require.Len(t, got, 3, "rounds 0 through 2 inclusive")

	assert.Equal(t, 0, got[0].Night)
	assert.Len(t, got[0].NightActions, 2)
	require.Len(t, got[0].DayActions, 1)
	assert.Equal(t, action.VotedOut, got[0].DayActions[0].Type)

	assert.Equal(t, 1, got[1].Night)
	assert.Empty(t, got[1].NightActions)
	assert.Empty(t, got[1].DayActions)
	assert.NotNil(t, got[1].NightActions, "empty rounds render as empty lists")
	assert.NotNil(t, got[1].DayActions)

	assert.Equal(t, 2, got[2].Night)
	assert.Len(t, got[2].NightActions, 1)
	assert.Empty(t, got[2].DayActions)
}
