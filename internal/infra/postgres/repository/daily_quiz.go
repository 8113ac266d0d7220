package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hifzhub/quran-quiz-api/internal/domain/entities"
	"github.com/hifzhub/quran-quiz-api/internal/infra/postgres"
)

var (
	ErrQuizNotFound      = errors.New("daily quiz not found")
	ErrDuplicateQuizDate = errors.New("daily quiz already exists for date")
)

// DailyQuizRepository provides access to daily quiz records in the database.
type DailyQuizRepository struct {
	db postgres.DBTX
}

// NewDailyQuizRepository creates a new DailyQuizRepository.
func NewDailyQuizRepository(db postgres.DBTX) *DailyQuizRepository {
	return &DailyQuizRepository{db: db}
}

// Create inserts a daily quiz. The unique constraint on quiz_date is the
// arbiter for concurrent generation: a losing insert returns
// ErrDuplicateQuizDate and the caller re-reads the winning row.
func (r *DailyQuizRepository) Create(ctx context.Context, dq *entities.DailyQuiz) (int64, error) {
	query := `
		INSERT INTO daily_quizzes (quiz_date, question_ids, created_at)
		VALUES ($1::date, $2, $3)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query, dq.QuizDate, dq.QuestionIDs, dq.CreatedAt).Scan(&id)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return 0, ErrDuplicateQuizDate
		}
		return 0, fmt.Errorf("create daily quiz: %w", err)
	}

	return id, nil
}

// GetByDate retrieves the daily quiz for a calendar date.
func (r *DailyQuizRepository) GetByDate(ctx context.Context, date string) (*entities.DailyQuiz, error) {
	query := `
		SELECT id, to_char(quiz_date, 'YYYY-MM-DD'), question_ids, created_at
		FROM daily_quizzes
		WHERE quiz_date = $1::date
	`

	var dq entities.DailyQuiz
	err := r.db.QueryRow(ctx, query, date).Scan(&dq.ID, &dq.QuizDate, &dq.QuestionIDs, &dq.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("get daily quiz by date: %w", err)
	}

	return &dq, nil
}

// GetByID retrieves a daily quiz by its identifier.
func (r *DailyQuizRepository) GetByID(ctx context.Context, id int64) (*entities.DailyQuiz, error) {
	query := `
		SELECT id, to_char(quiz_date, 'YYYY-MM-DD'), question_ids, created_at
		FROM daily_quizzes
		WHERE id = $1
	`

	var dq entities.DailyQuiz
	err := r.db.QueryRow(ctx, query, id).Scan(&dq.ID, &dq.QuizDate, &dq.QuestionIDs, &dq.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("get daily quiz by id: %w", err)
	}

	return &dq, nil
}
