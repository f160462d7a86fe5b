package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/moonhowl/werewolfd/internal/game/action"
	"github.com/moonhowl/werewolfd/internal/game/deal"
	"github.com/moonhowl/werewolfd/internal/game/random"
	"github.com/moonhowl/werewolfd/internal/game/room"
)

// ErrSystemActionType is returned when a player submits an action type only
// the resolver may create (Suicide, VotedOut).
var ErrSystemActionType = errors.New("action type cannot be queued by players")

// Engine composes the resolver, phase clock, and win evaluator behind the
// game operations. Per-room operations are serialized with a per-room lock;
// operations on different rooms run fully in parallel.
type Engine struct {
	rooms    room.Store
	members  room.MemberStore
	settings room.SettingsStore
	seats    SeatStore
	actions  ActionStore
	src      random.Source
	logger   *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates an Engine over the given collaborators.
//
// Precondition: every store, src, and logger must be non-nil.
func New(rooms room.Store, members room.MemberStore, settings room.SettingsStore, seats SeatStore, actions ActionStore, src random.Source, logger *zap.Logger) *Engine {
	return &Engine{
		rooms:    rooms,
		members:  members,
		settings: settings,
		seats:    seats,
		actions:  actions,
		src:      src,
		logger:   logger,
		locks:    make(map[string]*sync.Mutex),
	}
}

// lockRoom acquires the room's mutex, creating it on first use, and returns
// the unlock function. Two concurrent end-night calls for one room must not
// both run the resolver against the same queued batch.
func (e *Engine) lockRoom(roomID string) func() {
	e.mu.Lock()
	l, ok := e.locks[roomID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[roomID] = l
	}
	e.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// PhaseReport is returned by phase-advancing operations so the caller can
// notify clients.
type PhaseReport struct {
	Night int
	IsDay bool
	Win   room.WinCondition
}

// StartGame deals a new game in the room: the ledger is cleared, the phase
// and win state reset, prior seats removed, and one role dealt to every
// non-moderator member.
//
// Precondition: the lobby (moderator excluded) must cover the configured
// deck, else ErrNotEnoughPlayers.
func (e *Engine) StartGame(ctx context.Context, roomID string) error {
	defer e.lockRoom(roomID)()

	r, err := e.rooms.Get(ctx, roomID)
	if err != nil {
		return err
	}
	cfg, err := e.settings.Get(ctx, roomID)
	if err != nil {
		return err
	}
	members, err := e.members.Members(ctx, roomID)
	if err != nil {
		return err
	}
	players := room.WithoutPlayer(members, r.Moderator)
	if len(players) < cfg.CardsNeeded() {
		return fmt.Errorf("%w: have %d players, need %d", ErrNotEnoughPlayers, len(players), cfg.CardsNeeded())
	}

	if err := e.actions.Clear(ctx, roomID); err != nil {
		return fmt.Errorf("clearing ledger: %w", err)
	}
	if err := e.seats.RemoveAll(ctx, roomID); err != nil {
		return fmt.Errorf("removing prior seats: %w", err)
	}

	seats := deal.Deal(players, cfg, e.src)
	if err := e.seats.Add(ctx, seats); err != nil {
		return fmt.Errorf("adding seats: %w", err)
	}

	r.ResetForNewGame()
	r.State = room.StateCardsDealt
	if err := e.rooms.Update(ctx, r); err != nil {
		return fmt.Errorf("updating room: %w", err)
	}

	e.logger.Info("game started",
		zap.String("room", roomID),
		zap.Int("players", len(players)),
		zap.Int("werewolves", cfg.Werewolves),
	)
	return nil
}

// EndNight resolves the queued batch, advances to day, and evaluates the win
// condition. The caller surfaces the returned report to clients; the engine
// emits no notifications itself.
func (e *Engine) EndNight(ctx context.Context, roomID string) (PhaseReport, error) {
	defer e.lockRoom(roomID)()

	r, err := e.rooms.Get(ctx, roomID)
	if err != nil {
		return PhaseReport{}, err
	}
	queued, err := e.actions.Queued(ctx, roomID)
	if err != nil {
		return PhaseReport{}, err
	}
	roster, err := e.seats.Roster(ctx, roomID)
	if err != nil {
		return PhaseReport{}, err
	}

	result, err := ResolveNight(queued, roster, r.CurrentNight)
	if err != nil {
		return PhaseReport{}, fmt.Errorf("resolving night %d: %w", r.CurrentNight, err)
	}

	if len(result.Killed) > 0 {
		if err := e.seats.MarkDead(ctx, roomID, result.Killed, r.CurrentNight); err != nil {
			return PhaseReport{}, fmt.Errorf("marking deaths: %w", err)
		}
	}

	ids := make([]int64, 0, len(queued))
	for _, a := range queued {
		ids = append(ids, a.ID)
	}
	if len(ids) > 0 {
		if err := e.actions.MarkProcessed(ctx, roomID, ids); err != nil {
			return PhaseReport{}, fmt.Errorf("marking actions processed: %w", err)
		}
	}
	for i := range result.Deferred {
		if err := e.actions.Save(ctx, &result.Deferred[i]); err != nil {
			return PhaseReport{}, fmt.Errorf("queueing deferred action: %w", err)
		}
	}

	AdvancePhase(&r)
	if err := e.rooms.Update(ctx, r); err != nil {
		return PhaseReport{}, fmt.Errorf("advancing phase: %w", err)
	}

	win, err := e.CheckWin(ctx, roomID)
	if err != nil {
		return PhaseReport{}, err
	}

	e.logger.Info("night resolved",
		zap.String("room", roomID),
		zap.Int("night", r.CurrentNight),
		zap.Int("deaths", len(result.Killed)),
		zap.Int("deferred", len(result.Deferred)),
		zap.String("win", string(win)),
	)
	return PhaseReport{Night: r.CurrentNight, IsDay: r.IsDay, Win: win}, nil
}

// Lynch marks the chosen seat dead at the current round and records a
// processed VotedOut entry. A nil seatID is a "no lynch" outcome; the phase
// still advances either way.
func (e *Engine) Lynch(ctx context.Context, roomID string, seatID *int64) (PhaseReport, error) {
	defer e.lockRoom(roomID)()

	r, err := e.rooms.Get(ctx, roomID)
	if err != nil {
		return PhaseReport{}, err
	}

	if seatID != nil {
		s, err := e.seats.Get(ctx, roomID, *seatID)
		if err != nil {
			return PhaseReport{}, err
		}
		night := r.CurrentNight
		s.IsAlive = false
		s.NightKilled = &night
		if err := e.seats.Update(ctx, s); err != nil {
			return PhaseReport{}, fmt.Errorf("marking lynched seat dead: %w", err)
		}
		voted := action.GameAction{
			RoomID:   roomID,
			Type:     action.VotedOut,
			TargetID: s.ID,
			Night:    night,
			State:    action.StateProcessed,
		}
		if err := e.actions.Save(ctx, &voted); err != nil {
			return PhaseReport{}, fmt.Errorf("recording vote: %w", err)
		}
	}

	AdvancePhase(&r)
	if err := e.rooms.Update(ctx, r); err != nil {
		return PhaseReport{}, fmt.Errorf("advancing phase: %w", err)
	}

	win, err := e.CheckWin(ctx, roomID)
	if err != nil {
		return PhaseReport{}, err
	}
	return PhaseReport{Night: r.CurrentNight, IsDay: r.IsDay, Win: win}, nil
}

// QueueRequest is a player's night-action submission.
type QueueRequest struct {
	RoomID string
	// ActorID is the submitting seat. Required for everything except the
	// shared werewolf kill, where any wolf drives the pack's single slot.
	ActorID  *int64
	Type     action.Type
	TargetID int64
}

// QueueAction inserts or replaces the submission's queued slot. A repeat
// submission for the same slot overwrites the existing entry in place; the
// werewolf kill slot is keyed by room, not actor.
//
// Precondition: the target must resolve to a roster member; system types
// (Suicide, VotedOut) are rejected.
func (e *Engine) QueueAction(ctx context.Context, req QueueRequest) (action.GameAction, error) {
	defer e.lockRoom(req.RoomID)()

	if req.Type == action.Suicide || req.Type == action.VotedOut {
		return action.GameAction{}, fmt.Errorf("queueing %s: %w", req.Type, ErrSystemActionType)
	}

	r, err := e.rooms.Get(ctx, req.RoomID)
	if err != nil {
		return action.GameAction{}, err
	}
	if _, err := e.seats.Get(ctx, req.RoomID, req.TargetID); err != nil {
		if errors.Is(err, ErrSeatNotFound) {
			return action.GameAction{}, fmt.Errorf("target %d: %w", req.TargetID, ErrTargetNotInRoster)
		}
		return action.GameAction{}, err
	}

	var existing action.GameAction
	if req.Type == action.WerewolfKill {
		existing, err = e.actions.QueuedWerewolfKill(ctx, req.RoomID)
	} else {
		if req.ActorID == nil {
			return action.GameAction{}, ErrMissingActor
		}
		existing, err = e.actions.QueuedForActor(ctx, req.RoomID, *req.ActorID)
	}

	switch {
	case err == nil:
		existing.Type = req.Type
		existing.TargetID = req.TargetID
		existing.Night = r.CurrentNight
		if err := e.actions.Save(ctx, &existing); err != nil {
			return action.GameAction{}, fmt.Errorf("replacing queued action: %w", err)
		}
		return existing, nil
	case errors.Is(err, ErrActionNotFound):
		a := action.GameAction{
			RoomID:   req.RoomID,
			ActorID:  req.ActorID,
			Type:     req.Type,
			TargetID: req.TargetID,
			Night:    r.CurrentNight,
			State:    action.StateQueued,
		}
		if err := e.actions.Save(ctx, &a); err != nil {
			return action.GameAction{}, fmt.Errorf("queueing action: %w", err)
		}
		return a, nil
	default:
		return action.GameAction{}, err
	}
}

// DequeueAction removes a queued entry by id. Dequeueing an absent id is not
// an error.
func (e *Engine) DequeueAction(ctx context.Context, roomID string, actionID int64) error {
	defer e.lockRoom(roomID)()
	return e.actions.Delete(ctx, actionID)
}
