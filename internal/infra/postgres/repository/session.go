package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/hifzhub/quran-quiz-api/internal/domain/entities"
	"github.com/hifzhub/quran-quiz-api/internal/infra/postgres"
)

var (
	ErrSessionNotFound        = errors.New("quiz session not found")
	ErrDuplicateActiveSession = errors.New("user already has an in-progress session for this quiz")
	ErrNoCompletedSessions    = errors.New("user has no completed sessions")
)

// SessionRepository provides access to quiz session data in the database.
type SessionRepository struct {
	db postgres.DBTX
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db postgres.DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new session. A partial unique index over
// (user_id, daily_quiz_id) where status = 'in_progress' arbitrates concurrent
// starts: the loser gets ErrDuplicateActiveSession and re-reads the winner.
func (r *SessionRepository) Create(ctx context.Context, s *entities.QuizSession) (int64, error) {
	answers, err := marshalAnswers(s.Answers)
	if err != nil {
		return 0, err
	}

	query := `
		INSERT INTO quiz_sessions (
			user_id, daily_quiz_id, current_index, answers, status,
			started_at, completed_at, last_activity_at, timezone
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	var id int64
	err = r.db.QueryRow(
		ctx,
		query,
		s.UserID,
		s.DailyQuizID,
		s.CurrentIndex,
		answers,
		string(s.Status),
		s.StartedAt,
		s.CompletedAt,
		s.LastActivityAt,
		s.Timezone,
	).Scan(&id)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return 0, ErrDuplicateActiveSession
		}
		return 0, fmt.Errorf("create quiz session: %w", err)
	}

	return id, nil
}

const sessionColumns = `
	id, user_id, daily_quiz_id, current_index, answers, status,
	started_at, completed_at, last_activity_at, timezone
`

func scanSession(row pgx.Row) (*entities.QuizSession, error) {
	var s entities.QuizSession
	var status string
	var answers []byte
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.DailyQuizID,
		&s.CurrentIndex,
		&answers,
		&status,
		&s.StartedAt,
		&s.CompletedAt,
		&s.LastActivityAt,
		&s.Timezone,
	)
	if err != nil {
		return nil, err
	}
	s.Status = entities.SessionStatus(status)
	s.Answers, err = unmarshalAnswers(answers)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByID retrieves a session by its identifier.
func (r *SessionRepository) GetByID(ctx context.Context, id int64) (*entities.QuizSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM quiz_sessions WHERE id = $1`

	s, err := scanSession(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session by id: %w", err)
	}

	return s, nil
}

// GetInProgress retrieves the user's active session for a daily quiz, if any.
func (r *SessionRepository) GetInProgress(
	ctx context.Context, userID string, dailyQuizID int64,
) (*entities.QuizSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM quiz_sessions
		WHERE user_id = $1 AND daily_quiz_id = $2 AND status = 'in_progress'
	`

	s, err := scanSession(r.db.QueryRow(ctx, query, userID, dailyQuizID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get in-progress session: %w", err)
	}

	return s, nil
}

// Update persists the session's mutable fields: cursor, answers, status,
// completion and last-activity timestamps. Answers merge into the stored map
// per question key, so concurrent updates for different questions both land;
// last write wins only within a single key.
func (r *SessionRepository) Update(ctx context.Context, s *entities.QuizSession) error {
	answers, err := marshalAnswers(s.Answers)
	if err != nil {
		return err
	}

	query := `
		UPDATE quiz_sessions
		SET current_index = $2, answers = answers || $3::jsonb, status = $4,
		    completed_at = $5, last_activity_at = $6
		WHERE id = $1
	`

	tag, err := r.db.Exec(
		ctx, query,
		s.ID, s.CurrentIndex, answers, string(s.Status), s.CompletedAt, s.LastActivityAt,
	)
	if err != nil {
		return fmt.Errorf("update quiz session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// LastCompletedQuizDate returns the calendar date of the user's most recent
// completed session, derived from the session's daily quiz. The session
// identified by excludeSessionID is ignored so the streak updater can ask for
// the completion prior to the one it is currently applying.
func (r *SessionRepository) LastCompletedQuizDate(ctx context.Context, userID string, excludeSessionID int64) (string, error) {
	query := `
		SELECT to_char(MAX(dq.quiz_date), 'YYYY-MM-DD')
		FROM quiz_sessions s
		JOIN daily_quizzes dq ON dq.id = s.daily_quiz_id
		WHERE s.user_id = $1 AND s.status = 'completed' AND s.id <> $2
	`

	var date *string
	if err := r.db.QueryRow(ctx, query, userID, excludeSessionID).Scan(&date); err != nil {
		return "", fmt.Errorf("last completed quiz date: %w", err)
	}
	if date == nil {
		return "", ErrNoCompletedSessions
	}

	return *date, nil
}

// Answers are stored as a jsonb object keyed by question ID.

func marshalAnswers(answers map[int64]string) ([]byte, error) {
	m := make(map[string]string, len(answers))
	for id, choice := range answers {
		m[strconv.FormatInt(id, 10)] = choice
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal answers: %w", err)
	}
	return b, nil
}

func unmarshalAnswers(data []byte) (map[int64]string, error) {
	answers := make(map[int64]string)
	if len(data) == 0 {
		return answers, nil
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal answers: %w", err)
	}
	for key, choice := range m {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse answer key %q: %w", key, err)
		}
		answers[id] = choice
	}
	return answers, nil
}
