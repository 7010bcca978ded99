package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/apoll/apoll/internal/domain"
	"github.com/apoll/apoll/internal/middleware"
	"github.com/apoll/apoll/internal/repository"
	"github.com/apoll/apoll/internal/session"
)

// MembershipHandler handles the join workflow.
type MembershipHandler struct {
	members  repository.MembershipRepository
	sessions *middleware.SessionManager
	logger   *zap.Logger
}

func NewMembershipHandler(
	members repository.MembershipRepository,
	sessions *middleware.SessionManager,
	logger *zap.Logger,
) *MembershipHandler {
	return &MembershipHandler{members: members, sessions: sessions, logger: logger}
}

func (h *MembershipHandler) flashRedirect(c *gin.Context, sess *session.Session, location string, msgs ...string) {
	for _, msg := range msgs {
		sess.AddFlash(msg)
	}
	if err := h.sessions.Save(c, sess); err != nil {
		h.logger.Error("failed to save flash messages", zap.Error(err))
	}
	c.Redirect(http.StatusSeeOther, location)
}

// Join handles POST /poll/:poll_id/join.
//
// A session that already carries a user id does not get a second
// membership — the request is answered with a plain redirect and the
// session is left untouched. Everyone else gets a new user + membership
// row (one transaction) and a renewed, logged-in session.
func (h *MembershipHandler) Join(c *gin.Context) {
	poll := middleware.GetPoll(c)
	sess := middleware.GetSession(c)
	pollPage := "/poll/" + poll.ID.String()

	if sess.Authenticated() {
		c.Redirect(http.StatusSeeOther, pollPage)
		return
	}

	var form domain.JoinForm
	if err := c.ShouldBind(&form); err != nil {
		h.logger.Error("failed to bind join form", zap.Error(err))
		h.flashRedirect(c, sess, pollPage, flashUnexpected)
		return
	}

	if ferrs := domain.Validate(form); ferrs != nil {
		msgs := make([]string, 0, len(ferrs))
		for _, fe := range ferrs {
			msgs = append(msgs, fe.Error())
		}
		h.flashRedirect(c, sess, pollPage, msgs...)
		return
	}

	userID, err := h.members.Join(c.Request.Context(), poll.ID, form.Username)
	if err != nil {
		h.logger.Error("failed to join poll",
			zap.String("poll_id", poll.ID.String()),
			zap.Error(err),
		)
		h.flashRedirect(c, sess, pollPage, flashUnexpected)
		return
	}

	sess.UserID = userID
	if err := h.sessions.Renew(c, sess); err != nil {
		h.logger.Error("failed to renew session", zap.Error(err))
		h.flashRedirect(c, sess, pollPage, flashUnexpected)
		return
	}

	c.Redirect(http.StatusSeeOther, pollPage)
}
