package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/moonhowl/werewolfd/internal/game/role"
	"github.com/moonhowl/werewolfd/internal/game/room"
)

type guestTokenResponse struct {
	Token    string `json:"token"`
	PlayerID string `json:"playerId"`
}

// handleGuestToken mints an anonymous session. The only unauthenticated
// endpoint.
func (s *Server) handleGuestToken(c *gin.Context) {
	token, playerID, err := s.auth.Issue()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, guestTokenResponse{Token: token, PlayerID: playerID.String()})
}

type roomResponse struct {
	ID           string `json:"id"`
	State        string `json:"state"`
	CurrentNight int    `json:"currentNight"`
	IsDay        bool   `json:"isDay"`
	Win          string `json:"win"`
	IsModerator  bool   `json:"isModerator"`
}

func (s *Server) roomResponse(c *gin.Context, r room.Room) roomResponse {
	return roomResponse{
		ID:           r.ID,
		State:        string(r.State),
		CurrentNight: r.CurrentNight,
		IsDay:        r.IsDay,
		Win:          string(r.Win),
		IsModerator:  r.Moderator == currentPlayer(c),
	}
}

func (s *Server) handleCreateRoom(c *gin.Context) {
	playerID := currentPlayer(c)
	code, err := s.directory.Create(c.Request.Context(), playerID)
	if err != nil {
		writeError(c, err)
		return
	}
	s.logger.Info("room created",
		zap.String("room", code),
		zap.String("moderator", playerID.String()),
	)
	c.JSON(http.StatusCreated, gin.H{"roomId": code})
}

func (s *Server) handleGetRoom(c *gin.Context) {
	r, err := s.directory.Get(c.Request.Context(), c.Param("roomID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.roomResponse(c, r))
}

type joinRequest struct {
	Nickname    string `json:"nickname" binding:"required"`
	AvatarIndex int    `json:"avatarIndex"`
}

func (s *Server) handleJoinRoom(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	roomID := c.Param("roomID")
	if err := s.directory.Join(c.Request.Context(), roomID, currentPlayer(c), req.Nickname, req.AvatarIndex); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleLeaveRoom(c *gin.Context) {
	if err := s.directory.Leave(c.Request.Context(), c.Param("roomID"), currentPlayer(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleKickMember removes another player from the lobby. Moderator only.
func (s *Server) handleKickMember(c *gin.Context) {
	roomID := c.Param("roomID")
	if _, ok := s.moderatorOnly(c, roomID); !ok {
		return
	}
	playerID, err := uuid.Parse(c.Param("playerID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid player id"})
		return
	}
	if err := s.directory.Leave(c.Request.Context(), roomID, playerID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type memberResponse struct {
	PlayerID    string `json:"playerId"`
	Nickname    string `json:"nickname"`
	AvatarIndex int    `json:"avatarIndex"`
}

func memberResponses(members []room.Member) []memberResponse {
	out := make([]memberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, memberResponse{
			PlayerID:    m.PlayerID.String(),
			Nickname:    m.Nickname,
			AvatarIndex: m.AvatarIndex,
		})
	}
	return out
}

func (s *Server) handleListMembers(c *gin.Context) {
	includeModerator := c.Query("includeModerator") == "true"
	members, err := s.directory.Members(c.Request.Context(), c.Param("roomID"), includeModerator)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, memberResponses(members))
}

func (s *Server) handleGetModerator(c *gin.Context) {
	m, err := s.directory.Moderator(c.Request.Context(), c.Param("roomID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, memberResponse{
		PlayerID:    m.PlayerID.String(),
		Nickname:    m.Nickname,
		AvatarIndex: m.AvatarIndex,
	})
}

type settingsPayload struct {
	Werewolves             int      `json:"werewolves"`
	SelectedRoles          []string `json:"selectedRoles"`
	AllowMultipleSelfHeals bool     `json:"allowMultipleSelfHeals"`
	ShowGameSummary        bool     `json:"showGameSummary"`
}

func (s *Server) handleGetSettings(c *gin.Context) {
	cfg, err := s.settings.Get(c.Request.Context(), c.Param("roomID"))
	if err != nil {
		writeError(c, err)
		return
	}
	names := make([]string, 0, len(cfg.SelectedRoles))
	for _, n := range cfg.SelectedRoles {
		names = append(names, string(n))
	}
	c.JSON(http.StatusOK, settingsPayload{
		Werewolves:             cfg.Werewolves,
		SelectedRoles:          names,
		AllowMultipleSelfHeals: cfg.AllowMultipleSelfHeals,
		ShowGameSummary:        cfg.ShowGameSummary,
	})
}

// handleUpdateSettings rewrites the room's role settings. Moderator only;
// role names are validated against the closed role set.
func (s *Server) handleUpdateSettings(c *gin.Context) {
	roomID := c.Param("roomID")
	if _, ok := s.moderatorOnly(c, roomID); !ok {
		return
	}

	var req settingsPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Werewolves < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one werewolf is required"})
		return
	}
	selected := make([]role.Name, 0, len(req.SelectedRoles))
	for _, raw := range req.SelectedRoles {
		name, err := role.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		selected = append(selected, name)
	}

	cfg := role.Settings{
		RoomID:                 roomID,
		Werewolves:             req.Werewolves,
		SelectedRoles:          selected,
		AllowMultipleSelfHeals: req.AllowMultipleSelfHeals,
		ShowGameSummary:        req.ShowGameSummary,
	}
	if err := s.settings.Save(c.Request.Context(), cfg); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
