package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/apoll/apoll/internal/models"
)

type MembershipStore struct {
	db DB
}

func NewMembershipStore(db DB) *MembershipStore {
	return &MembershipStore{db: db}
}

// Join creates a fresh user row and its membership row in one
// transaction. A user row never exists without a membership, so there is
// no separate user repository — the insert lives here and in CreatePoll.
func (s *MembershipStore) Join(ctx context.Context, pollID uuid.UUID, username string) (uuid.UUID, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin join: %w", err)
	}
	defer tx.Rollback(ctx)

	userID := uuid.New()
	_, err = tx.Exec(ctx, `
		INSERT INTO users (user_id, created_at)
		VALUES ($1, now())`,
		userID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert user: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO poll_users (poll_id, user_id, username)
		VALUES ($1, $2, $3)`,
		pollID, userID, username)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert membership: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("commit join: %w", err)
	}
	return userID, nil
}

func (s *MembershipStore) ListMembers(ctx context.Context, pollID uuid.UUID) ([]models.PollUser, error) {
	query := `
		SELECT poll_id, user_id, username
		FROM poll_users
		WHERE poll_id = $1`

	rows, err := s.db.Query(ctx, query, pollID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	members := make([]models.PollUser, 0)
	for rows.Next() {
		var m models.PollUser
		if err := rows.Scan(&m.PollID, &m.UserID, &m.Username); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}

	return members, nil
}

func (s *MembershipStore) IsMember(ctx context.Context, pollID uuid.UUID, userID uuid.UUID) (bool, error) {
	// EXISTS stops at the first matching row; this runs before every
	// suggestion insert.
	query := `
		SELECT EXISTS (
			SELECT 1 FROM poll_users
			WHERE poll_id = $1 AND user_id = $2
		)`

	var exists bool
	err := s.db.QueryRow(ctx, query, pollID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return exists, nil
}
