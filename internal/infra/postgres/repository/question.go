package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hifzhub/quran-quiz-api/internal/domain/entities"
	"github.com/hifzhub/quran-quiz-api/internal/infra/postgres"
)

var ErrQuestionNotFound = errors.New("question not found")

// QuestionRepository provides access to quiz questions in the database.
type QuestionRepository struct {
	db postgres.DBTX
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(db postgres.DBTX) *QuestionRepository {
	return &QuestionRepository{db: db}
}

const questionColumns = `
	id, surah_number, ayah_number, prompt, choices, correct_choice,
	difficulty, approved_at, created_at, created_by
`

func scanQuestion(row pgx.Row) (*entities.Question, error) {
	var q entities.Question
	var difficulty string
	err := row.Scan(
		&q.ID,
		&q.SurahNumber,
		&q.AyahNumber,
		&q.Prompt,
		&q.Choices,
		&q.CorrectChoice,
		&difficulty,
		&q.ApprovedAt,
		&q.CreatedAt,
		&q.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	q.Difficulty = entities.Difficulty(difficulty)
	return &q, nil
}

// ApprovedByDifficulty retrieves up to limit approved questions of the given
// tier, in random order. Without the random ordering a LIMIT would always
// return the same prefix of the table, so questions beyond it would never
// reach the selector.
func (r *QuestionRepository) ApprovedByDifficulty(
	ctx context.Context, difficulty entities.Difficulty, limit int,
) ([]*entities.Question, error) {
	query := `
		SELECT ` + questionColumns + `
		FROM questions
		WHERE difficulty = $1 AND approved_at IS NOT NULL
		ORDER BY random()
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, string(difficulty), limit)
	if err != nil {
		return nil, fmt.Errorf("approved by difficulty: %w", err)
	}
	defer rows.Close()

	var questions []*entities.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
	}

	return questions, rows.Err()
}

// GetByIDs retrieves questions for the given IDs. The result preserves the
// order of ids so callers can rely on the daily quiz presentation order.
func (r *QuestionRepository) GetByIDs(ctx context.Context, ids []int64) ([]*entities.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + questionColumns + `
		FROM questions
		WHERE id = ANY($1::bigint[])
	`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get by ids: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]*entities.Question, len(ids))
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		byID[q.ID] = q
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	questions := make([]*entities.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			questions = append(questions, q)
		}
	}

	return questions, nil
}

// CreateStaged inserts a generated candidate question into the moderation
// queue. Staged questions stay out of the quiz pool until approved.
func (r *QuestionRepository) CreateStaged(ctx context.Context, gq *entities.GeneratedQuestion) (int64, error) {
	query := `
		INSERT INTO questions (
			surah_number, ayah_number, prompt, choices, correct_choice,
			difficulty, approved_at, created_at, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, NULL, $7, 'generator')
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(
		ctx,
		query,
		gq.SurahNumber,
		gq.AyahNumber,
		gq.Prompt,
		gq.Choices,
		gq.CorrectChoice,
		string(gq.Difficulty),
		time.Now(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create staged question: %w", err)
	}

	return id, nil
}

// ListPending retrieves unapproved questions for moderation, oldest first.
func (r *QuestionRepository) ListPending(ctx context.Context, limit int) ([]*entities.Question, error) {
	query := `
		SELECT ` + questionColumns + `
		FROM questions
		WHERE approved_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	defer rows.Close()

	var questions []*entities.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
	}

	return questions, rows.Err()
}

// Approve marks a pending question as approved, making it eligible for
// quiz selection. Approving an already approved question is a no-op.
func (r *QuestionRepository) Approve(ctx context.Context, id int64, approvedAt time.Time) error {
	query := `
		UPDATE questions
		SET approved_at = $2
		WHERE id = $1 AND approved_at IS NULL
	`

	tag, err := r.db.Exec(ctx, query, id, approvedAt)
	if err != nil {
		return fmt.Errorf("approve question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM questions WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("approve question: %w", err)
		}
		if !exists {
			return ErrQuestionNotFound
		}
	}

	return nil
}
