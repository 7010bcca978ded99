package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/apoll/apoll/internal/models"
)

type PollStore struct {
	db DB
}

func NewPollStore(db DB) *PollStore {
	return &PollStore{db: db}
}

// CreatePoll inserts the creator's user row, the poll row, and the
// creator's membership row inside one transaction. A failure at any step
// rolls the whole thing back, so the store never shows a poll without its
// creator membership.
func (s *PollStore) CreatePoll(ctx context.Context, prompt, username string) (*models.Poll, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create poll: %w", err)
	}
	// Rollback after a successful commit is a no-op.
	defer tx.Rollback(ctx)

	userID := uuid.New()
	_, err = tx.Exec(ctx, `
		INSERT INTO users (user_id, created_at)
		VALUES ($1, now())`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	query := `
		INSERT INTO polls (poll_id, creator_id, prompt, created_at)
		VALUES ($1, $2, $3, now())
		RETURNING poll_id, creator_id, prompt, created_at`

	var poll models.Poll
	err = tx.QueryRow(ctx, query, uuid.New(), userID, prompt).Scan(
		&poll.ID,
		&poll.CreatorID,
		&poll.Prompt,
		&poll.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert poll: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO poll_users (poll_id, user_id, username)
		VALUES ($1, $2, $3)`,
		poll.ID, userID, username)
	if err != nil {
		return nil, fmt.Errorf("link poll creator: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create poll: %w", err)
	}
	return &poll, nil
}

func (s *PollStore) GetByID(ctx context.Context, pollID uuid.UUID) (*models.Poll, error) {
	query := `
		SELECT poll_id, creator_id, prompt, created_at
		FROM polls
		WHERE poll_id = $1`

	var poll models.Poll
	err := s.db.QueryRow(ctx, query, pollID).Scan(
		&poll.ID,
		&poll.CreatorID,
		&poll.Prompt,
		&poll.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get poll: %w", err)
	}
	return &poll, nil
}
