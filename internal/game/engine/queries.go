package engine

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/moonhowl/werewolfd/internal/game/ability"
	"github.com/moonhowl/werewolfd/internal/game/action"
	"github.com/moonhowl/werewolfd/internal/game/role"
	"github.com/moonhowl/werewolfd/internal/game/seat"
)

// QueuedActions returns the room's queued entries for the moderator view.
// Synthetic Suicide entries are system-internal and never surfaced.
func (e *Engine) QueuedActions(ctx context.Context, roomID string) ([]action.GameAction, error) {
	queued, err := e.actions.Queued(ctx, roomID)
	if err != nil {
		return nil, err
	}
	out := make([]action.GameAction, 0, len(queued))
	for _, a := range queued {
		if a.Type == action.Suicide {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// QueuedActionFor returns the seat's queued entry, or (nil, nil) when the
// seat has nothing queued.
func (e *Engine) QueuedActionFor(ctx context.Context, roomID string, seatID int64) (*action.GameAction, error) {
	a, err := e.actions.QueuedForActor(ctx, roomID, seatID)
	if errors.Is(err, ErrActionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ActionsForSeat returns the capability list for one seat.
func (e *Engine) ActionsForSeat(ctx context.Context, roomID string, seatID int64) ([]ability.Descriptor, error) {
	actor, err := e.seats.Get(ctx, roomID, seatID)
	if err != nil {
		return nil, err
	}
	cc, err := e.checkContext(ctx, roomID, actor)
	if err != nil {
		return nil, err
	}
	return ability.Actions(cc), nil
}

// SeatActions pairs a seat with its current capability list, for the
// moderator's all-seats view.
type SeatActions struct {
	Seat    seat.Seat
	Actions []ability.Descriptor
}

// RolesAndActions returns every seat with its capability list.
func (e *Engine) RolesAndActions(ctx context.Context, roomID string) ([]SeatActions, error) {
	roster, err := e.seats.Roster(ctx, roomID)
	if err != nil {
		return nil, err
	}
	processed, err := e.actions.Processed(ctx, roomID)
	if err != nil {
		return nil, err
	}
	queued, err := e.actions.Queued(ctx, roomID)
	if err != nil {
		return nil, err
	}
	cfg, err := e.settings.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}

	out := make([]SeatActions, 0, len(roster))
	for _, s := range roster {
		cc := ability.CheckContext{
			Actor:     s,
			Processed: processed,
			Queued:    queued,
			Roster:    roster,
			Settings:  cfg,
		}
		out = append(out, SeatActions{Seat: s, Actions: ability.Actions(cc)})
	}
	return out, nil
}

// AssignedRole returns the role dealt to the given player, or ok=false when
// the player holds no seat in the room's current game.
func (e *Engine) AssignedRole(ctx context.Context, roomID string, playerID uuid.UUID) (role.Name, bool, error) {
	roster, err := e.seats.Roster(ctx, roomID)
	if err != nil {
		return "", false, err
	}
	for _, s := range roster {
		if s.PlayerID == playerID {
			return s.Role, true, nil
		}
	}
	return "", false, nil
}

// LatestDeaths returns the seats that died on the current round.
func (e *Engine) LatestDeaths(ctx context.Context, roomID string) ([]seat.Seat, error) {
	r, err := e.rooms.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}
	roster, err := e.seats.Roster(ctx, roomID)
	if err != nil {
		return nil, err
	}
	out := make([]seat.Seat, 0, len(roster))
	for _, s := range roster {
		if !s.IsAlive && s.NightKilled != nil && *s.NightKilled == r.CurrentNight {
			out = append(out, s)
		}
	}
	return out, nil
}

// Phase reports the room's current round and day/night flag.
func (e *Engine) Phase(ctx context.Context, roomID string) (night int, isDay bool, err error) {
	r, err := e.rooms.Get(ctx, roomID)
	if err != nil {
		return 0, false, err
	}
	return r.CurrentNight, r.IsDay, nil
}

// checkContext assembles the full capability-check input for one actor.
func (e *Engine) checkContext(ctx context.Context, roomID string, actor seat.Seat) (ability.CheckContext, error) {
	processed, err := e.actions.Processed(ctx, roomID)
	if err != nil {
		return ability.CheckContext{}, err
	}
	queued, err := e.actions.Queued(ctx, roomID)
	if err != nil {
		return ability.CheckContext{}, err
	}
	roster, err := e.seats.Roster(ctx, roomID)
	if err != nil {
		return ability.CheckContext{}, err
	}
	cfg, err := e.settings.Get(ctx, roomID)
	if err != nil {
		return ability.CheckContext{}, err
	}
	return ability.CheckContext{
		Actor:     actor,
		Processed: processed,
		Queued:    queued,
		Roster:    roster,
		Settings:  cfg,
	}, nil
}
