package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hifzhub/quran-quiz-api/internal/domain/entities"
	"github.com/hifzhub/quran-quiz-api/internal/infra/postgres"
)

var ErrSessionNotInProgress = errors.New("quiz session is not in progress")

// CompletionStore finalizes a session and its attempt history in a single
// transaction. The status transition is conditional, so if two completions
// race only one of them writes.
type CompletionStore struct {
	transactor *postgres.Transactor
}

// NewCompletionStore creates a CompletionStore over the given transactor.
func NewCompletionStore(transactor *postgres.Transactor) *CompletionStore {
	return &CompletionStore{transactor: transactor}
}

// CompleteSession marks the session completed and inserts one attempt per
// question. Returns ErrSessionNotInProgress if the session already left the
// in_progress state, leaving the database untouched.
func (s *CompletionStore) CompleteSession(
	ctx context.Context, session *entities.QuizSession, attempts []*entities.Attempt,
) error {
	return s.transactor.WithinTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		answers, err := marshalAnswers(session.Answers)
		if err != nil {
			return err
		}

		query := `
			UPDATE quiz_sessions
			SET status = 'completed', answers = answers || $2::jsonb,
			    completed_at = $3, last_activity_at = $3
			WHERE id = $1 AND status = 'in_progress'
		`

		tag, err := tx.Exec(ctx, query, session.ID, answers, session.CompletedAt)
		if err != nil {
			return fmt.Errorf("complete session: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrSessionNotInProgress
		}

		attemptRepo := NewAttemptRepository(tx)
		return attemptRepo.CreateBatch(ctx, attempts)
	})
}
