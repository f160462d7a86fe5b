// Package deal implements shuffle-and-deal role assignment at game start.
package deal

import (
	"github.com/moonhowl/werewolfd/internal/game/random"
	"github.com/moonhowl/werewolfd/internal/game/role"
	"github.com/moonhowl/werewolfd/internal/game/room"
	"github.com/moonhowl/werewolfd/internal/game/seat"
)

// Deal assigns one role to every member and returns the unsaved seats.
//
// The member order and the deck (selected roles plus the configured number
// of Werewolf cards) are shuffled independently with Fisher-Yates over src;
// members beyond the card count receive Villager. Both shuffles draw from
// src so a seeded source makes the whole deal deterministic.
//
// Precondition: members must exclude the moderator; src must be non-nil.
// Postcondition: len(result) == len(members); every seat is alive with a
// valid role; exactly min(cfg.Werewolves, len(members)) seats are Werewolf
// when len(members) >= cfg.CardsNeeded().
func Deal(members []room.Member, cfg role.Settings, src random.Source) []seat.Seat {
	shuffled := make([]room.Member, len(members))
	copy(shuffled, members)
	random.Shuffle(len(shuffled), src, func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	deck := make([]role.Name, 0, cfg.CardsNeeded())
	deck = append(deck, cfg.SelectedRoles...)
	for i := 0; i < cfg.Werewolves; i++ {
		deck = append(deck, role.Werewolf)
	}
	random.Shuffle(len(deck), src, func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})

	seats := make([]seat.Seat, 0, len(shuffled))
	for i, m := range shuffled {
		card := role.Villager
		if i < len(deck) {
			card = deck[i]
		}
		seats = append(seats, seat.Seat{
			RoomID:      m.RoomID,
			PlayerID:    m.PlayerID,
			Nickname:    m.Nickname,
			AvatarIndex: m.AvatarIndex,
			Role:        card,
			IsAlive:     true,
		})
	}
	return seats
}
