package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an anonymous identity. There is no account: a row is created
// every time someone claims a username in a poll (at creation or join
// time), so one human may own many user rows.
type User struct {
	ID        uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Poll is the unit everything else attaches to: one prompt, one creator,
// never mutated after insert.
type Poll struct {
	ID        uuid.UUID `json:"poll_id"`
	CreatorID uuid.UUID `json:"creator_id"`
	Prompt    string    `json:"prompt"`
	CreatedAt time.Time `json:"created_at"`
}

// PollUser is the membership join table between polls and users.
//
// Username lives here, not on User, because a username only means
// something inside one poll. Nothing enforces uniqueness of
// (poll_id, username): two participants racing for the same name both
// win, and the page simply lists the name twice.
type PollUser struct {
	PollID   uuid.UUID `json:"poll_id"`
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
}

// Suggestion is one free-text answer proposed for a poll. Append-only;
// there is no edit or delete.
type Suggestion struct {
	ID         uuid.UUID `json:"suggestion_id"`
	PollID     uuid.UUID `json:"poll_id"`
	CreatorID  uuid.UUID `json:"creator_id"`
	Suggestion string    `json:"suggestion"`
	CreatedAt  time.Time `json:"created_at"`
}
