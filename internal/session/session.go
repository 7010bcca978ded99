// Package session implements server-side sessions backed by Redis.
//
// The browser only ever holds an opaque session id (in a signed cookie);
// everything else — the logged-in user id and any pending flash messages
// — lives in a Redis record keyed by that id. Flash messages survive a
// redirect round trip because they are persisted here, not held in
// process memory.
package session

import "github.com/google/uuid"

// Session is one browser's server-side state.
//
// A session exists as soon as the server has something to remember about
// a visitor — a flash message counts, so anonymous sessions are normal.
// UserID is uuid.Nil until the visitor creates or joins a poll.
type Session struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Flash  []string
}

// New returns a fresh anonymous session with a random id. It is not
// persisted until Save.
func New() *Session {
	return &Session{ID: uuid.New()}
}

// Authenticated reports whether a user id has been stored in the session.
func (s *Session) Authenticated() bool {
	return s.UserID != uuid.Nil
}

// AddFlash queues a one-shot message for the next page render.
func (s *Session) AddFlash(msg string) {
	s.Flash = append(s.Flash, msg)
}

// TakeFlash returns the queued messages and clears them. The caller must
// Save afterwards or the messages will reappear on the next render.
func (s *Session) TakeFlash() []string {
	msgs := s.Flash
	s.Flash = nil
	return msgs
}
