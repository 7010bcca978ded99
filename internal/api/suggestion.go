package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/apoll/apoll/internal/domain"
	"github.com/apoll/apoll/internal/middleware"
	"github.com/apoll/apoll/internal/observ"
	"github.com/apoll/apoll/internal/repository"
	"github.com/apoll/apoll/internal/session"
)

const flashMustBeLoggedIn = "You must be logged in to suggest an answer"

// SuggestionHandler handles the suggestion workflow.
type SuggestionHandler struct {
	members     repository.MembershipRepository
	suggestions repository.SuggestionRepository
	sessions    *middleware.SessionManager
	logger      *zap.Logger
}

func NewSuggestionHandler(
	members repository.MembershipRepository,
	suggestions repository.SuggestionRepository,
	sessions *middleware.SessionManager,
	logger *zap.Logger,
) *SuggestionHandler {
	return &SuggestionHandler{
		members:     members,
		suggestions: suggestions,
		sessions:    sessions,
		logger:      logger,
	}
}

func (h *SuggestionHandler) flashRedirect(c *gin.Context, sess *session.Session, location string, msgs ...string) {
	for _, msg := range msgs {
		sess.AddFlash(msg)
	}
	if err := h.sessions.Save(c, sess); err != nil {
		h.logger.Error("failed to save flash messages", zap.Error(err))
	}
	c.Redirect(http.StatusSeeOther, location)
}

// Create handles POST /poll/:poll_id/suggest.
//
// Requires a logged-in session whose user has a membership in THIS poll:
// a session obtained by joining poll A cannot plant suggestions in poll
// B. Both failures look the same to the browser — a flash and a redirect
// back to the poll page, never a hard 401.
//
// The text itself is unvalidated and unbounded; it is stored as-is.
func (h *SuggestionHandler) Create(c *gin.Context) {
	poll := middleware.GetPoll(c)
	sess := middleware.GetSession(c)
	pollPage := "/poll/" + poll.ID.String()

	if !sess.Authenticated() {
		h.flashRedirect(c, sess, pollPage, flashMustBeLoggedIn)
		return
	}

	isMember, err := h.members.IsMember(c.Request.Context(), poll.ID, sess.UserID)
	if err != nil {
		h.logger.Error("failed to check membership", zap.Error(err))
		h.flashRedirect(c, sess, pollPage, flashUnexpected)
		return
	}
	if !isMember {
		h.flashRedirect(c, sess, pollPage, flashMustBeLoggedIn)
		return
	}

	var form domain.SuggestionForm
	if err := c.ShouldBind(&form); err != nil {
		h.logger.Error("failed to bind suggestion form", zap.Error(err))
		h.flashRedirect(c, sess, pollPage, flashUnexpected)
		return
	}

	if _, err := h.suggestions.Create(c.Request.Context(), poll.ID, sess.UserID, form.Suggestion); err != nil {
		h.logger.Error("failed to create suggestion",
			zap.String("poll_id", poll.ID.String()),
			zap.Error(err),
		)
		h.flashRedirect(c, sess, pollPage, flashUnexpected)
		return
	}

	observ.SuggestionsTotal.Inc()
	c.Redirect(http.StatusSeeOther, pollPage)
}
