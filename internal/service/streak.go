package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hifzhub/quran-quiz-api/internal/domain/entities"
	"github.com/hifzhub/quran-quiz-api/internal/infra/postgres/repository"
)

// StreakService maintains per-user consecutive-day perfect-completion counters.
type StreakService struct {
	sessionRepo SessionRepository
	streakRepo  StreakRepository
}

// NewStreakService creates a streak service.
func NewStreakService(sessionRepo SessionRepository, streakRepo StreakRepository) *StreakService {
	return &StreakService{
		sessionRepo: sessionRepo,
		streakRepo:  streakRepo,
	}
}

// ApplyPerfectCompletion applies a perfect completion of the given daily
// quiz. The streak continues (+1) if the prior completion was on the same day
// or the day before; otherwise it restarts at 1. The session being applied is
// excluded when deriving the prior completion date. The store performs the
// transition as one atomic upsert.
func (s *StreakService) ApplyPerfectCompletion(
	ctx context.Context, userID string, quiz *entities.DailyQuiz, sessionID int64,
) (*entities.Streak, error) {
	completed, err := quiz.Date()
	if err != nil {
		return nil, fmt.Errorf("parse quiz date: %w", err)
	}

	continues := false
	last, err := s.sessionRepo.LastCompletedQuizDate(ctx, userID, sessionID)
	if err != nil && !errors.Is(err, repository.ErrNoCompletedSessions) {
		return nil, err
	}
	if err == nil {
		continues, err = sameOrPreviousDay(last, completed)
		if err != nil {
			return nil, err
		}
	}

	return s.streakRepo.UpsertPerfect(ctx, userID, continues)
}

// ApplyImperfectCompletion forces the current streak to zero. The longest
// streak is untouched.
func (s *StreakService) ApplyImperfectCompletion(ctx context.Context, userID string) (*entities.Streak, error) {
	return s.streakRepo.ResetCurrent(ctx, userID)
}

// Get retrieves the user's streak, returning a zero streak for users who
// have never completed a quiz.
func (s *StreakService) Get(ctx context.Context, userID string) (*entities.Streak, error) {
	streak, err := s.streakRepo.GetByUser(ctx, userID)
	if errors.Is(err, repository.ErrStreakNotFound) {
		return &entities.Streak{UserID: userID}, nil
	}
	return streak, err
}

// sameOrPreviousDay reports whether prior is the same calendar day as the
// completion day or exactly one day before it.
func sameOrPreviousDay(prior string, completed time.Time) (bool, error) {
	priorT, err := time.Parse(entities.DateLayout, prior)
	if err != nil {
		return false, fmt.Errorf("parse prior completion date: %w", err)
	}

	diff := completed.Sub(priorT)
	return diff == 0 || diff == 24*time.Hour, nil
}
