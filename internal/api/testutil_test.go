package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/apoll/apoll/internal/middleware"
	"github.com/apoll/apoll/internal/models"
	"github.com/apoll/apoll/internal/session"
)

// memRepo backs all three repository interfaces with maps, so handler
// tests run against the real router without Postgres. Setting err makes
// every method fail, for exercising the unexpected-error paths.
type memRepo struct {
	mu          sync.Mutex
	polls       map[uuid.UUID]models.Poll
	members     map[uuid.UUID][]models.PollUser
	suggestions map[uuid.UUID][]models.Suggestion
	err         error
}

func newMemRepo() *memRepo {
	return &memRepo{
		polls:       make(map[uuid.UUID]models.Poll),
		members:     make(map[uuid.UUID][]models.PollUser),
		suggestions: make(map[uuid.UUID][]models.Suggestion),
	}
}

func (r *memRepo) CreatePoll(_ context.Context, prompt, username string) (*models.Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	poll := models.Poll{
		ID:        uuid.New(),
		CreatorID: uuid.New(),
		Prompt:    prompt,
		CreatedAt: time.Now(),
	}
	r.polls[poll.ID] = poll
	r.members[poll.ID] = append(r.members[poll.ID], models.PollUser{
		PollID:   poll.ID,
		UserID:   poll.CreatorID,
		Username: username,
	})
	return &poll, nil
}

func (r *memRepo) GetByID(_ context.Context, pollID uuid.UUID) (*models.Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	poll, ok := r.polls[pollID]
	if !ok {
		return nil, nil
	}
	return &poll, nil
}

func (r *memRepo) Join(_ context.Context, pollID uuid.UUID, username string) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return uuid.Nil, r.err
	}
	userID := uuid.New()
	r.members[pollID] = append(r.members[pollID], models.PollUser{
		PollID:   pollID,
		UserID:   userID,
		Username: username,
	})
	return userID, nil
}

func (r *memRepo) ListMembers(_ context.Context, pollID uuid.UUID) ([]models.PollUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]models.PollUser, len(r.members[pollID]))
	copy(out, r.members[pollID])
	return out, nil
}

func (r *memRepo) IsMember(_ context.Context, pollID uuid.UUID, userID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	for _, m := range r.members[pollID] {
		if m.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) Create(_ context.Context, pollID, creatorID uuid.UUID, text string) (*models.Suggestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	sg := models.Suggestion{
		ID:         uuid.New(),
		PollID:     pollID,
		CreatorID:  creatorID,
		Suggestion: text,
		CreatedAt:  time.Now(),
	}
	r.suggestions[pollID] = append(r.suggestions[pollID], sg)
	return &sg, nil
}

func (r *memRepo) ListByPoll(_ context.Context, pollID uuid.UUID) ([]models.Suggestion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]models.Suggestion, len(r.suggestions[pollID]))
	copy(out, r.suggestions[pollID])
	return out, nil
}

func (r *memRepo) memberCount(pollID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members[pollID])
}

func (r *memRepo) suggestionCount(pollID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.suggestions[pollID])
}

// memSessionStore is an in-memory session.Store. Production uses the
// Redis store; these tests only care about handler behavior.
type memSessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]session.Session
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[uuid.UUID]session.Session)}
}

func (s *memSessionStore) Load(_ context.Context, id uuid.UUID) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	out := stored
	out.Flash = append([]string(nil), stored.Flash...)
	return &out, nil
}

func (s *memSessionStore) Save(_ context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *sess
	stored.Flash = append([]string(nil), sess.Flash...)
	s.sessions[sess.ID] = stored
	return nil
}

func (s *memSessionStore) Renew(ctx context.Context, sess *session.Session) error {
	s.mu.Lock()
	delete(s.sessions, sess.ID)
	s.mu.Unlock()
	sess.ID = uuid.New()
	return s.Save(ctx, sess)
}

func (s *memSessionStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

const testSessionSecret = "test-session-secret"

func newTestRouter(t *testing.T) (*gin.Engine, *memRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := newMemRepo()
	manager := middleware.NewSessionManager(newMemSessionStore(), testSessionSecret, time.Hour, zap.NewNop())

	router := NewRouter(Deps{
		Polls:       repo,
		Members:     repo,
		Suggestions: repo,
		Sessions:    manager,
		Logger:      zap.NewNop(),
	})
	return router, repo
}

// testClient drives the router like a browser: it keeps cookies between
// requests and never follows redirects.
type testClient struct {
	router  *gin.Engine
	cookies map[string]*http.Cookie
}

func newTestClient(router *gin.Engine) *testClient {
	return &testClient{router: router, cookies: make(map[string]*http.Cookie)}
}

func (tc *testClient) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, cookie := range tc.cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	tc.router.ServeHTTP(w, req)

	for _, cookie := range w.Result().Cookies() {
		tc.cookies[cookie.Name] = cookie
	}
	return w
}

func (tc *testClient) get(path string) *httptest.ResponseRecorder {
	return tc.do(http.MethodGet, path, nil)
}

func (tc *testClient) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	return tc.do(http.MethodPost, path, form)
}
