package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/apoll/apoll/internal/models"
	"github.com/apoll/apoll/internal/repository"
)

const contextKeyPoll = "poll"

// PollGate wraps every /poll/:poll_id route. It parses the path id and
// resolves the poll once, so downstream handlers never re-query it and
// never see an unknown poll.
//
// An unparsable id 404s before the database is touched. A database error
// here also surfaces as 404 — the caller asked for a page we cannot show.
func PollGate(repo repository.PollRepository, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		pollID, err := uuid.Parse(c.Param("poll_id"))
		if err != nil {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}

		poll, err := repo.GetByID(c.Request.Context(), pollID)
		if err != nil {
			logger.Error("failed to look up poll",
				zap.String("poll_id", pollID.String()),
				zap.Error(err),
			)
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		if poll == nil {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}

		c.Set(contextKeyPoll, *poll)
		c.Next()
	}
}

// GetPoll returns the gate-resolved poll for the current request.
func GetPoll(c *gin.Context) models.Poll {
	val, exists := c.Get(contextKeyPoll)
	if !exists {
		return models.Poll{}
	}
	poll, ok := val.(models.Poll)
	if !ok {
		return models.Poll{}
	}
	return poll
}
