// Package httpapi exposes the game over a REST API: guest sessions, the room
// directory, role settings, the action queue, and moderator game control.
// The API is synchronous; clients poll or the caller layers its own push on
// top of the returned phase reports.
package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/moonhowl/werewolfd/internal/config"
	"github.com/moonhowl/werewolfd/internal/game/engine"
	"github.com/moonhowl/werewolfd/internal/game/room"
)

// Server holds the API's collaborators and the underlying HTTP server.
type Server struct {
	engine    *engine.Engine
	directory *room.Directory
	rooms     room.Store
	settings  room.SettingsStore
	auth      *TokenIssuer
	logger    *zap.Logger

	httpServer *http.Server
	grace      config.HTTPConfig
}

// New creates a Server and mounts all routes.
//
// Precondition: every collaborator must be non-nil.
func New(cfg config.HTTPConfig, eng *engine.Engine, dir *room.Directory, rooms room.Store, settings room.SettingsStore, auth *TokenIssuer, logger *zap.Logger) *Server {
	s := &Server{
		engine:    eng,
		directory: dir,
		rooms:     rooms,
		settings:  settings,
		auth:      auth,
		logger:    logger,
		grace:     cfg,
	}
	s.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Router builds the gin engine with all routes mounted. Exposed separately
// so tests can drive the API without a listener.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())

	r.POST("/api/auth/guest", s.handleGuestToken)

	authed := r.Group("/api", s.auth.RequireAuth())
	{
		authed.POST("/rooms", s.handleCreateRoom)
		authed.GET("/rooms/:roomID", s.handleGetRoom)
		authed.POST("/rooms/:roomID/join", s.handleJoinRoom)
		authed.POST("/rooms/:roomID/leave", s.handleLeaveRoom)
		authed.GET("/rooms/:roomID/members", s.handleListMembers)
		authed.DELETE("/rooms/:roomID/members/:playerID", s.handleKickMember)
		authed.GET("/rooms/:roomID/moderator", s.handleGetModerator)

		authed.GET("/rooms/:roomID/settings", s.handleGetSettings)
		authed.PUT("/rooms/:roomID/settings", s.handleUpdateSettings)

		authed.POST("/rooms/:roomID/game/start", s.handleStartGame)
		authed.POST("/rooms/:roomID/game/end-night", s.handleEndNight)
		authed.POST("/rooms/:roomID/game/lynch", s.handleLynch)
		authed.GET("/rooms/:roomID/game/phase", s.handlePhase)
		authed.GET("/rooms/:roomID/game/role", s.handleAssignedRole)
		authed.GET("/rooms/:roomID/game/deaths", s.handleLatestDeaths)
		authed.GET("/rooms/:roomID/game/summary", s.handleSummary)
		authed.GET("/rooms/:roomID/game/roles-and-actions", s.handleRolesAndActions)

		authed.GET("/rooms/:roomID/actions", s.handleListQueued)
		authed.POST("/rooms/:roomID/actions", s.handleQueueAction)
		authed.DELETE("/rooms/:roomID/actions/:actionID", s.handleDequeueAction)
		authed.GET("/rooms/:roomID/seats/:seatID/actions", s.handleSeatActions)
		authed.GET("/rooms/:roomID/seats/:seatID/queued", s.handleSeatQueued)
	}
	return r
}

// Start runs the HTTP listener, blocking until shutdown. Implements
// server.Service.
func (s *Server) Start() error {
	s.logger.Info("http listener starting", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the HTTP server down, allowing in-flight requests the
// configured grace period. Implements server.Service.
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), s.grace.ShutdownGracePeriod)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Warn("http shutdown incomplete", zap.Error(err))
	}
}

// requestLogger logs completed requests with method, path, and status.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
		)
	}
}

// moderatorOnly loads the room and rejects callers other than its moderator.
// Returns the room and false when the response has already been written.
func (s *Server) moderatorOnly(c *gin.Context, roomID string) (room.Room, bool) {
	r, err := s.rooms.Get(c.Request.Context(), roomID)
	if err != nil {
		writeError(c, err)
		return room.Room{}, false
	}
	if r.Moderator != currentPlayer(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "moderator only"})
		return room.Room{}, false
	}
	return r, true
}
