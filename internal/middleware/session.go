package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/apoll/apoll/internal/auth"
	"github.com/apoll/apoll/internal/session"
)

// CookieName is the session cookie. Its value is a signed token carrying
// the server-side session id, never the user id itself.
const CookieName = "apoll_session"

const contextKeySession = "session"

// SessionManager resolves the session cookie on the way in and persists
// session mutations (plus a refreshed cookie) on the way out. Handlers
// receive it as a dependency; they never touch the cookie directly.
type SessionManager struct {
	store  session.Store
	secret string
	ttl    time.Duration
	logger *zap.Logger
}

func NewSessionManager(store session.Store, secret string, ttl time.Duration, logger *zap.Logger) *SessionManager {
	return &SessionManager{store: store, secret: secret, ttl: ttl, logger: logger}
}

// Middleware attaches a session to every request. A missing, invalid, or
// expired cookie yields a fresh anonymous session rather than an error —
// a first-time visitor is not a failure case. The fresh session is not
// persisted until a handler has something to store in it.
func (m *SessionManager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := m.resolve(c)
		c.Set(contextKeySession, sess)
		c.Next()
	}
}

func (m *SessionManager) resolve(c *gin.Context) *session.Session {
	token, err := c.Cookie(CookieName)
	if err != nil {
		return session.New()
	}

	sid, err := auth.ParseCookieToken(token, m.secret)
	if err != nil {
		// Tampered or expired cookie. Treat as anonymous.
		return session.New()
	}

	sess, err := m.store.Load(c.Request.Context(), sid)
	if err != nil {
		m.logger.Error("failed to load session", zap.Error(err))
		return session.New()
	}
	if sess == nil {
		// Valid cookie, expired record.
		return session.New()
	}
	return sess
}

// GetSession returns the request's session. The session middleware always
// sets one, so a missing value is a wiring bug; returning a throwaway
// session keeps the handler from panicking while the bug is found.
func GetSession(c *gin.Context) *session.Session {
	val, exists := c.Get(contextKeySession)
	if !exists {
		return session.New()
	}
	sess, ok := val.(*session.Session)
	if !ok {
		return session.New()
	}
	return sess
}

// Save persists the session and refreshes the cookie.
func (m *SessionManager) Save(c *gin.Context, sess *session.Session) error {
	if err := m.store.Save(c.Request.Context(), sess); err != nil {
		return err
	}
	m.setCookie(c, sess)
	return nil
}

// Renew rotates the session id before persisting, then sets a cookie for
// the new id. Called when a session crosses the privilege boundary
// (create or join) so a pre-login token never names a logged-in session.
func (m *SessionManager) Renew(c *gin.Context, sess *session.Session) error {
	if err := m.store.Renew(c.Request.Context(), sess); err != nil {
		return err
	}
	m.setCookie(c, sess)
	return nil
}

func (m *SessionManager) setCookie(c *gin.Context, sess *session.Session) {
	token, err := auth.GenerateCookieToken(sess.ID, m.secret, m.ttl)
	if err != nil {
		m.logger.Error("failed to sign session cookie", zap.Error(err))
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, int(m.ttl.Seconds()), "/", "", false, true)
}
