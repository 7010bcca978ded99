package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/apoll/apoll/internal/models"
)

type SuggestionStore struct {
	db DB
}

func NewSuggestionStore(db DB) *SuggestionStore {
	return &SuggestionStore{db: db}
}

func (s *SuggestionStore) Create(ctx context.Context, pollID, creatorID uuid.UUID, text string) (*models.Suggestion, error) {
	query := `
		INSERT INTO suggestions (suggestion_id, poll_id, creator_id, suggestion, created_at)
		VALUES ($1, $2, $3, $4, now())
		RETURNING suggestion_id, poll_id, creator_id, suggestion, created_at`

	var sg models.Suggestion
	err := s.db.QueryRow(ctx, query, uuid.New(), pollID, creatorID, text).Scan(
		&sg.ID,
		&sg.PollID,
		&sg.CreatorID,
		&sg.Suggestion,
		&sg.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert suggestion: %w", err)
	}
	return &sg, nil
}

func (s *SuggestionStore) ListByPoll(ctx context.Context, pollID uuid.UUID) ([]models.Suggestion, error) {
	// suggestion_id breaks ties between rows inserted in the same
	// timestamp tick.
	query := `
		SELECT suggestion_id, poll_id, creator_id, suggestion, created_at
		FROM suggestions
		WHERE poll_id = $1
		ORDER BY created_at, suggestion_id`

	rows, err := s.db.Query(ctx, query, pollID)
	if err != nil {
		return nil, fmt.Errorf("list suggestions: %w", err)
	}
	defer rows.Close()

	suggestions := make([]models.Suggestion, 0)
	for rows.Next() {
		var sg models.Suggestion
		if err := rows.Scan(
			&sg.ID,
			&sg.PollID,
			&sg.CreatorID,
			&sg.Suggestion,
			&sg.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}
		suggestions = append(suggestions, sg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate suggestions: %w", err)
	}

	return suggestions, nil
}
