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

// flashUnexpected is the user-visible text for any store or session
// failure. The real error goes to the log, never to the page.
const flashUnexpected = "unexpected error"

// PollHandler serves the creation page, the creation workflow, and the
// poll page itself.
type PollHandler struct {
	polls       repository.PollRepository
	members     repository.MembershipRepository
	suggestions repository.SuggestionRepository
	sessions    *middleware.SessionManager
	logger      *zap.Logger
}

func NewPollHandler(
	polls repository.PollRepository,
	members repository.MembershipRepository,
	suggestions repository.SuggestionRepository,
	sessions *middleware.SessionManager,
	logger *zap.Logger,
) *PollHandler {
	return &PollHandler{
		polls:       polls,
		members:     members,
		suggestions: suggestions,
		sessions:    sessions,
		logger:      logger,
	}
}

// flashRedirect queues messages against the session, persists it so they
// survive the redirect, and sends a 303. Every user-visible failure in
// the form workflows funnels through here — the browser always lands on
// a page, never on a bare error status.
func (h *PollHandler) flashRedirect(c *gin.Context, sess *session.Session, location string, msgs ...string) {
	for _, msg := range msgs {
		sess.AddFlash(msg)
	}
	if err := h.sessions.Save(c, sess); err != nil {
		h.logger.Error("failed to save flash messages", zap.Error(err))
	}
	c.Redirect(http.StatusSeeOther, location)
}

// drainFlash empties the session's flash queue for rendering. One-shot
// semantics: the cleared state is persisted before the page goes out.
func (h *PollHandler) drainFlash(c *gin.Context, sess *session.Session) []string {
	msgs := sess.TakeFlash()
	if len(msgs) == 0 {
		return nil
	}
	if err := h.sessions.Save(c, sess); err != nil {
		h.logger.Error("failed to clear flash messages", zap.Error(err))
	}
	return msgs
}

// ShowNew handles GET /new.
func (h *PollHandler) ShowNew(c *gin.Context) {
	sess := middleware.GetSession(c)
	c.HTML(http.StatusOK, "new.tmpl", gin.H{
		"Flashes": h.drainFlash(c, sess),
	})
}

// Create handles POST /new.
//
// Validation runs before any database access. The three inserts (user,
// poll, membership) are one transaction inside the repository; on
// success the session is renewed and the creator is logged in.
func (h *PollHandler) Create(c *gin.Context) {
	sess := middleware.GetSession(c)

	var form domain.PollForm
	if err := c.ShouldBind(&form); err != nil {
		h.logger.Error("failed to bind poll form", zap.Error(err))
		h.flashRedirect(c, sess, "/new", flashUnexpected)
		return
	}

	if ferrs := domain.Validate(form); ferrs != nil {
		msgs := make([]string, 0, len(ferrs))
		for _, fe := range ferrs {
			msgs = append(msgs, fe.Error())
		}
		h.flashRedirect(c, sess, "/new", msgs...)
		return
	}

	poll, err := h.polls.CreatePoll(c.Request.Context(), form.Prompt, form.Username)
	if err != nil {
		h.logger.Error("failed to create poll", zap.Error(err))
		h.flashRedirect(c, sess, "/new", flashUnexpected)
		return
	}

	// Log the creator in under a fresh session id.
	sess.UserID = poll.CreatorID
	if err := h.sessions.Renew(c, sess); err != nil {
		h.logger.Error("failed to renew session", zap.Error(err))
		h.flashRedirect(c, sess, "/new", flashUnexpected)
		return
	}

	observ.PollsCreatedTotal.Inc()
	c.Redirect(http.StatusSeeOther, "/poll/"+poll.ID.String())
}

// Show handles GET /poll/:poll_id. The poll itself was resolved by the
// gate; this only fetches the member and suggestion lists.
func (h *PollHandler) Show(c *gin.Context) {
	poll := middleware.GetPoll(c)
	sess := middleware.GetSession(c)

	members, err := h.members.ListMembers(c.Request.Context(), poll.ID)
	if err != nil {
		h.logger.Error("failed to list members", zap.Error(err))
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	suggestions, err := h.suggestions.ListByPoll(c.Request.Context(), poll.ID)
	if err != nil {
		h.logger.Error("failed to list suggestions", zap.Error(err))
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	// The viewer gets the greeting and suggest form only when their
	// session user actually holds a membership in THIS poll; a session
	// from some other poll sees the join form. The member list is
	// already in hand, so this is a scan, not a query.
	viewer := ""
	if sess.Authenticated() {
		for _, m := range members {
			if m.UserID == sess.UserID {
				viewer = m.Username
				break
			}
		}
	}

	c.HTML(http.StatusOK, "poll.tmpl", gin.H{
		"PollID":      poll.ID.String(),
		"Prompt":      poll.Prompt,
		"Members":     members,
		"Suggestions": suggestions,
		"Viewer":      viewer,
		"Flashes":     h.drainFlash(c, sess),
	})
}
