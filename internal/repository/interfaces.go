package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/apoll/apoll/internal/models"
)

// Every method takes a context so a cancelled HTTP request cancels its
// queries. All ids are generated application-side (uuid v4), matching the
// schema's uuid primary keys.

// PollRepository owns poll rows and the creation workflow.
type PollRepository interface {
	// CreatePoll runs the whole creation as one transaction: a new user
	// row, the poll row referencing it as creator, and the membership row
	// claiming the creator's username. Either all three commit or none do.
	CreatePoll(ctx context.Context, prompt, username string) (*models.Poll, error)

	// GetByID returns a single poll. Returns nil, nil if not found.
	GetByID(ctx context.Context, pollID uuid.UUID) (*models.Poll, error)
}

// MembershipRepository handles who has joined which poll.
type MembershipRepository interface {
	// Join creates a new user and their membership row in one
	// transaction and returns the new user id.
	Join(ctx context.Context, pollID uuid.UUID, username string) (uuid.UUID, error)

	// ListMembers returns all memberships of a poll.
	ListMembers(ctx context.Context, pollID uuid.UUID) ([]models.PollUser, error)

	// IsMember checks whether a user has joined a poll. Consulted before
	// every suggestion insert.
	IsMember(ctx context.Context, pollID uuid.UUID, userID uuid.UUID) (bool, error)
}

// SuggestionRepository handles the append-only suggestion rows.
type SuggestionRepository interface {
	// Create persists a suggestion and returns it with ID and CreatedAt
	// populated.
	Create(ctx context.Context, pollID, creatorID uuid.UUID, text string) (*models.Suggestion, error)

	// ListByPoll returns a poll's suggestions in insertion order.
	ListByPoll(ctx context.Context, pollID uuid.UUID) ([]models.Suggestion, error)
}
