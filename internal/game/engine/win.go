package engine

import (
	"context"

	"github.com/moonhowl/werewolfd/internal/game/room"
	"github.com/moonhowl/werewolfd/internal/game/seat"
)

// EvaluateWin inspects alive-role counts and returns the faction victor, or
// WinNone while the game continues. Villagers win the moment no werewolf is
// alive; werewolves win when they equal or outnumber everyone else. The
// zero-werewolf check wins on a degenerate empty roster.
func EvaluateWin(roster []seat.Seat) room.WinCondition {
	wolves, others := 0, 0
	for _, s := range roster {
		if !s.IsAlive {
			continue
		}
		if s.Role.IsWerewolf() {
			wolves++
		} else {
			others++
		}
	}
	if wolves == 0 {
		return room.WinVillagers
	}
	if wolves >= others {
		return room.WinWerewolves
	}
	return room.WinNone
}

// CheckWin returns the room's win condition, deciding and memoizing it on
// first non-None evaluation. A decided win is sticky: it is returned as-is
// without recounting the roster until the next game reset.
func (e *Engine) CheckWin(ctx context.Context, roomID string) (room.WinCondition, error) {
	r, err := e.rooms.Get(ctx, roomID)
	if err != nil {
		return room.WinNone, err
	}
	if r.Win != room.WinNone && r.Win != "" {
		return r.Win, nil
	}

	roster, err := e.seats.Roster(ctx, roomID)
	if err != nil {
		return room.WinNone, err
	}
	win := EvaluateWin(roster)
	if win == room.WinNone {
		return win, nil
	}

	r.Win = win
	if err := e.rooms.Update(ctx, r); err != nil {
		return room.WinNone, err
	}
	return win, nil
}
