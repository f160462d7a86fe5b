package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moonhowl/werewolfd/internal/game/engine"
	"github.com/moonhowl/werewolfd/internal/game/room"
)

// writeError maps domain sentinel errors onto HTTP statuses. Anything
// unrecognised is a 500 with a generic body; the detail stays in the logs.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, room.ErrRoomNotFound),
		errors.Is(err, room.ErrMemberNotFound),
		errors.Is(err, engine.ErrSeatNotFound),
		errors.Is(err, engine.ErrActionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrNotEnoughPlayers),
		errors.Is(err, engine.ErrTargetNotInRoster),
		errors.Is(err, engine.ErrMissingActor),
		errors.Is(err, engine.ErrSystemActionType):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
