package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/apoll/apoll/internal/middleware"
	"github.com/apoll/apoll/internal/observ"
	"github.com/apoll/apoll/internal/repository"
)

// Deps is everything the router needs. main assembles it once at
// startup; tests assemble it with stubs.
type Deps struct {
	Polls       repository.PollRepository
	Members     repository.MembershipRepository
	Suggestions repository.SuggestionRepository
	Sessions    *middleware.SessionManager
	Logger      *zap.Logger
}

// NewRouter wires middleware, templates, and routes into a gin engine.
func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observ.MetricsMiddleware())
	r.Use(deps.Sessions.Middleware())
	r.SetHTMLTemplate(loadTemplates())

	pollHandler := NewPollHandler(deps.Polls, deps.Members, deps.Suggestions, deps.Sessions, deps.Logger)
	membershipHandler := NewMembershipHandler(deps.Members, deps.Sessions, deps.Logger)
	suggestionHandler := NewSuggestionHandler(deps.Members, deps.Suggestions, deps.Sessions, deps.Logger)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// The creation page lives at /new; the root just points there.
	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusSeeOther, "/new")
	})
	r.GET("/new", pollHandler.ShowNew)
	r.POST("/new", pollHandler.Create)

	// Every poll-scoped route goes through the gate: the poll id is
	// parsed and resolved exactly once, before any handler runs.
	poll := r.Group("/poll/:poll_id")
	poll.Use(middleware.PollGate(deps.Polls, deps.Logger))
	poll.GET("", pollHandler.Show)
	poll.POST("/join", membershipHandler.Join)
	poll.POST("/suggest", suggestionHandler.Create)

	return r
}
