package service

import (
	"context"
	"time"

	"github.com/hifzhub/quran-quiz-api/internal/domain/entities"
)

type QuestionRepository interface {
	ApprovedByDifficulty(ctx context.Context, difficulty entities.Difficulty, limit int) ([]*entities.Question, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*entities.Question, error)
	CreateStaged(ctx context.Context, gq *entities.GeneratedQuestion) (int64, error)
	ListPending(ctx context.Context, limit int) ([]*entities.Question, error)
	Approve(ctx context.Context, id int64, approvedAt time.Time) error
}

type DailyQuizRepository interface {
	Create(ctx context.Context, dq *entities.DailyQuiz) (int64, error)
	GetByDate(ctx context.Context, date string) (*entities.DailyQuiz, error)
	GetByID(ctx context.Context, id int64) (*entities.DailyQuiz, error)
}

type SessionRepository interface {
	Create(ctx context.Context, s *entities.QuizSession) (int64, error)
	GetByID(ctx context.Context, id int64) (*entities.QuizSession, error)
	GetInProgress(ctx context.Context, userID string, dailyQuizID int64) (*entities.QuizSession, error)
	Update(ctx context.Context, s *entities.QuizSession) error
	LastCompletedQuizDate(ctx context.Context, userID string, excludeSessionID int64) (string, error)
}

// SessionCompleter atomically transitions a session to completed and writes
// its attempt records. The transition is conditional on the session still
// being in progress, so a racing second completion loses cleanly.
type SessionCompleter interface {
	CompleteSession(ctx context.Context, s *entities.QuizSession, attempts []*entities.Attempt) error
}

type AttemptRepository interface {
	CountCorrectByUser(ctx context.Context, userID string) (total, correct int, err error)
}

type StreakRepository interface {
	GetByUser(ctx context.Context, userID string) (*entities.Streak, error)
	UpsertPerfect(ctx context.Context, userID string, continues bool) (*entities.Streak, error)
	ResetCurrent(ctx context.Context, userID string) (*entities.Streak, error)
}

type VerseRepository interface {
	UnderCovered(ctx context.Context, target, limit int) ([]*entities.Verse, error)
}

type GenerationRunRepository interface {
	Create(ctx context.Context, run *entities.GenerationRun) (int64, error)
}

// QuestionGenerator is the external content provider used by the batch
// generation scheduler.
type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, verses []*entities.Verse, perVerse int) ([]*entities.GeneratedQuestion, error)
}
