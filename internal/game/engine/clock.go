package engine

import "github.com/moonhowl/werewolfd/internal/game/room"

// AdvancePhase moves the room one step along the night->day->night cadence.
// Night to day flips the flag; day to night also increments the round
// counter, so two calls separate night N from night N+1.
func AdvancePhase(r *room.Room) {
	if r.IsDay {
		r.CurrentNight++
		r.IsDay = false
		return
	}
	r.IsDay = true
}
