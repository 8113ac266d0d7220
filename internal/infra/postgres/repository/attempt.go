package repository

import (
	"context"
	"fmt"

	"github.com/hifzhub/quran-quiz-api/internal/domain/entities"
	"github.com/hifzhub/quran-quiz-api/internal/infra/postgres"
)

// AttemptRepository provides append-only access to per-question attempt records.
type AttemptRepository struct {
	db postgres.DBTX
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(db postgres.DBTX) *AttemptRepository {
	return &AttemptRepository{db: db}
}

// CreateBatch inserts one attempt per question answered in a session.
// The unique (session_id, question_id) constraint makes a re-run of the same
// completion a no-op instead of duplicating history.
func (r *AttemptRepository) CreateBatch(ctx context.Context, attempts []*entities.Attempt) error {
	query := `
		INSERT INTO attempts (user_id, session_id, question_id, is_correct, answered_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id, question_id) DO NOTHING
	`

	for _, a := range attempts {
		_, err := r.db.Exec(ctx, query, a.UserID, a.SessionID, a.QuestionID, a.IsCorrect, a.AnsweredAt)
		if err != nil {
			return fmt.Errorf("create attempt: %w", err)
		}
	}

	return nil
}

// CountCorrectByUser returns total and correct attempt counts for a user.
func (r *AttemptRepository) CountCorrectByUser(ctx context.Context, userID string) (total, correct int, err error) {
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE is_correct)
		FROM attempts
		WHERE user_id = $1
	`

	if err := r.db.QueryRow(ctx, query, userID).Scan(&total, &correct); err != nil {
		return 0, 0, fmt.Errorf("count attempts: %w", err)
	}

	return total, correct, nil
}
