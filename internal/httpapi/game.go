package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/moonhowl/werewolfd/internal/game/ability"
	"github.com/moonhowl/werewolfd/internal/game/action"
	"github.com/moonhowl/werewolfd/internal/game/engine"
	"github.com/moonhowl/werewolfd/internal/game/seat"
)

type phaseResponse struct {
	Night int    `json:"night"`
	IsDay bool   `json:"isDay"`
	Win   string `json:"win"`
}

func phasePayload(report engine.PhaseReport) phaseResponse {
	return phaseResponse{Night: report.Night, IsDay: report.IsDay, Win: string(report.Win)}
}

type seatResponse struct {
	ID          int64  `json:"id"`
	PlayerID    string `json:"playerId"`
	Nickname    string `json:"nickname"`
	AvatarIndex int    `json:"avatarIndex"`
	Role        string `json:"role,omitempty"`
	IsAlive     bool   `json:"isAlive"`
	NightKilled *int   `json:"nightKilled,omitempty"`
}

func seatPayload(s seat.Seat, revealRole bool) seatResponse {
	out := seatResponse{
		ID:          s.ID,
		PlayerID:    s.PlayerID.String(),
		Nickname:    s.Nickname,
		AvatarIndex: s.AvatarIndex,
		IsAlive:     s.IsAlive,
		NightKilled: s.NightKilled,
	}
	if revealRole {
		out.Role = string(s.Role)
	}
	return out
}

type actionResponse struct {
	ID       int64  `json:"id"`
	ActorID  *int64 `json:"actorId,omitempty"`
	Type     string `json:"type"`
	TargetID int64  `json:"targetId"`
	Night    int    `json:"night"`
	State    string `json:"state"`
}

func actionPayload(a action.GameAction) actionResponse {
	return actionResponse{
		ID:       a.ID,
		ActorID:  a.ActorID,
		Type:     string(a.Type),
		TargetID: a.TargetID,
		Night:    a.Night,
		State:    string(a.State),
	}
}

func actionPayloads(actions []action.GameAction) []actionResponse {
	out := make([]actionResponse, 0, len(actions))
	for _, a := range actions {
		out = append(out, actionPayload(a))
	}
	return out
}

type descriptorResponse struct {
	Label          string  `json:"label"`
	Type           string  `json:"type"`
	Enabled        bool    `json:"enabled"`
	DisabledReason string  `json:"disabledReason,omitempty"`
	ValidTargets   []int64 `json:"validTargets"`
}

func descriptorPayloads(descriptors []ability.Descriptor) []descriptorResponse {
	out := make([]descriptorResponse, 0, len(descriptors))
	for _, d := range descriptors {
		out = append(out, descriptorResponse{
			Label:          d.Label,
			Type:           string(d.Type),
			Enabled:        d.Enabled,
			DisabledReason: d.DisabledReason,
			ValidTargets:   d.ValidTargets,
		})
	}
	return out
}

// handleStartGame deals a new game. Moderator only.
func (s *Server) handleStartGame(c *gin.Context) {
	roomID := c.Param("roomID")
	if _, ok := s.moderatorOnly(c, roomID); !ok {
		return
	}
	if err := s.engine.StartGame(c.Request.Context(), roomID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleEndNight resolves the night and returns the resulting phase and win
// condition. Moderator only.
func (s *Server) handleEndNight(c *gin.Context) {
	roomID := c.Param("roomID")
	if _, ok := s.moderatorOnly(c, roomID); !ok {
		return
	}
	report, err := s.engine.EndNight(c.Request.Context(), roomID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, phasePayload(report))
}

type lynchRequest struct {
	// SeatID is the voted-out seat; null means the day ended with no lynch.
	SeatID *int64 `json:"seatId"`
}

// handleLynch records the day vote and advances to the next night.
// Moderator only.
func (s *Server) handleLynch(c *gin.Context) {
	roomID := c.Param("roomID")
	if _, ok := s.moderatorOnly(c, roomID); !ok {
		return
	}
	var req lynchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	report, err := s.engine.Lynch(c.Request.Context(), roomID, req.SeatID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, phasePayload(report))
}

func (s *Server) handlePhase(c *gin.Context) {
	night, isDay, err := s.engine.Phase(c.Request.Context(), c.Param("roomID"))
	if err != nil {
		writeError(c, err)
		return
	}
	win, err := s.engine.CheckWin(c.Request.Context(), c.Param("roomID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, phaseResponse{Night: night, IsDay: isDay, Win: string(win)})
}

// handleAssignedRole returns the caller's dealt role, if any.
func (s *Server) handleAssignedRole(c *gin.Context) {
	name, ok, err := s.engine.AssignedRole(c.Request.Context(), c.Param("roomID"), currentPlayer(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no role assigned"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": string(name)})
}

// handleLatestDeaths lists seats that died in the current round. Roles are
// revealed; the dead are public.
func (s *Server) handleLatestDeaths(c *gin.Context) {
	deaths, err := s.engine.LatestDeaths(c.Request.Context(), c.Param("roomID"))
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]seatResponse, 0, len(deaths))
	for _, d := range deaths {
		out = append(out, seatPayload(d, true))
	}
	c.JSON(http.StatusOK, out)
}

type roundHistoryResponse struct {
	Night        int              `json:"night"`
	NightActions []actionResponse `json:"nightActions"`
	DayActions   []actionResponse `json:"dayActions"`
}

func (s *Server) handleSummary(c *gin.Context) {
	rounds, err := s.engine.Summary(c.Request.Context(), c.Param("roomID"))
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]roundHistoryResponse, 0, len(rounds))
	for _, r := range rounds {
		out = append(out, roundHistoryResponse{
			Night:        r.Night,
			NightActions: actionPayloads(r.NightActions),
			DayActions:   actionPayloads(r.DayActions),
		})
	}
	c.JSON(http.StatusOK, out)
}

type seatActionsResponse struct {
	Seat    seatResponse         `json:"seat"`
	Actions []descriptorResponse `json:"actions"`
}

// handleRolesAndActions is the moderator's board view: every seat with its
// role and current capability list.
func (s *Server) handleRolesAndActions(c *gin.Context) {
	roomID := c.Param("roomID")
	if _, ok := s.moderatorOnly(c, roomID); !ok {
		return
	}
	all, err := s.engine.RolesAndActions(c.Request.Context(), roomID)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]seatActionsResponse, 0, len(all))
	for _, sa := range all {
		out = append(out, seatActionsResponse{
			Seat:    seatPayload(sa.Seat, true),
			Actions: descriptorPayloads(sa.Actions),
		})
	}
	c.JSON(http.StatusOK, out)
}

// handleListQueued lists the room's queued actions. Moderator only;
// resolver-internal entries are never included.
func (s *Server) handleListQueued(c *gin.Context) {
	roomID := c.Param("roomID")
	if _, ok := s.moderatorOnly(c, roomID); !ok {
		return
	}
	queued, err := s.engine.QueuedActions(c.Request.Context(), roomID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, actionPayloads(queued))
}

type queueRequest struct {
	ActorID  *int64 `json:"actorId"`
	Type     string `json:"type" binding:"required"`
	TargetID int64  `json:"targetId" binding:"required"`
}

func (s *Server) handleQueueAction(c *gin.Context) {
	var req queueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	queued, err := s.engine.QueueAction(c.Request.Context(), engine.QueueRequest{
		RoomID:   c.Param("roomID"),
		ActorID:  req.ActorID,
		Type:     action.Type(req.Type),
		TargetID: req.TargetID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, actionPayload(queued))
}

func (s *Server) handleDequeueAction(c *gin.Context) {
	actionID, err := strconv.ParseInt(c.Param("actionID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid action id"})
		return
	}
	if err := s.engine.DequeueAction(c.Request.Context(), c.Param("roomID"), actionID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleSeatActions returns the capability list for one seat.
func (s *Server) handleSeatActions(c *gin.Context) {
	seatID, err := strconv.ParseInt(c.Param("seatID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid seat id"})
		return
	}
	descriptors, err := s.engine.ActionsForSeat(c.Request.Context(), c.Param("roomID"), seatID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, descriptorPayloads(descriptors))
}

// handleSeatQueued returns the seat's queued action, or null.
func (s *Server) handleSeatQueued(c *gin.Context) {
	seatID, err := strconv.ParseInt(c.Param("seatID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid seat id"})
		return
	}
	queued, err := s.engine.QueuedActionFor(c.Request.Context(), c.Param("roomID"), seatID)
	if err != nil {
		writeError(c, err)
		return
	}
	if queued == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, actionPayload(*queued))
}
