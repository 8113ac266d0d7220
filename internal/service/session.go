package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/hifzhub/quran-quiz-api/internal/domain/entities"
	"github.com/hifzhub/quran-quiz-api/internal/infra/postgres/repository"
)

// ErrInvalidSessionState is returned when an operation requires an
// in-progress session and the session has already completed or expired.
var ErrInvalidSessionState = errors.New("quiz session is not in progress")

// SessionService drives a user's progress through a daily quiz: idempotent
// start, per-answer persistence, and completion with scoring.
type SessionService struct {
	sessionRepo  SessionRepository
	quizRepo     DailyQuizRepository
	questionRepo QuestionRepository
	completer    SessionCompleter
	streaks      *StreakService
	logger       *zap.Logger
}

// NewSessionService creates a session service.
func NewSessionService(
	sessionRepo SessionRepository,
	quizRepo DailyQuizRepository,
	questionRepo QuestionRepository,
	completer SessionCompleter,
	streaks *StreakService,
	logger *zap.Logger,
) *SessionService {
	return &SessionService{
		sessionRepo:  sessionRepo,
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		completer:    completer,
		streaks:      streaks,
		logger:       logger,
	}
}

// Start returns the user's in-progress session for the quiz, creating one if
// none exists. Starting twice without completing returns the same session.
func (s *SessionService) Start(
	ctx context.Context, userID string, dailyQuizID int64, timezone string,
) (*entities.QuizSession, error) {
	existing, err := s.sessionRepo.GetInProgress(ctx, userID, dailyQuizID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrSessionNotFound) {
		return nil, err
	}

	if _, err := s.quizRepo.GetByID(ctx, dailyQuizID); err != nil {
		return nil, err
	}

	session := entities.NewQuizSession(userID, dailyQuizID, timezone)
	id, err := s.sessionRepo.Create(ctx, session)
	if err == nil {
		session.ID = id
		return session, nil
	}
	if errors.Is(err, repository.ErrDuplicateActiveSession) {
		// Lost a concurrent start; the winner's session is the session.
		return s.sessionRepo.GetInProgress(ctx, userID, dailyQuizID)
	}

	return nil, err
}

// Get retrieves a session by ID.
func (s *SessionService) Get(ctx context.Context, sessionID int64) (*entities.QuizSession, error) {
	return s.sessionRepo.GetByID(ctx, sessionID)
}

// RecordAnswer upserts the selected choice for a question. Re-answering
// overwrites the prior choice; last write wins. When advance is set the
// progress cursor moves forward by one. The cursor does not gate which
// questions may be answered; clients are free to answer out of order.
func (s *SessionService) RecordAnswer(
	ctx context.Context, sessionID, questionID int64, choice string, advance bool,
) (*entities.QuizSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsInProgress() {
		return nil, ErrInvalidSessionState
	}

	session.RecordAnswer(questionID, choice, advance)

	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// Complete finalizes an in-progress session: every quiz question is scored
// against the recorded answer (unanswered counts as wrong), one attempt
// record is written per question, and the user's streak is updated. A session
// completes at most once; a second call gets ErrInvalidSessionState.
func (s *SessionService) Complete(ctx context.Context, sessionID int64) (*entities.QuizResult, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsInProgress() {
		return nil, ErrInvalidSessionState
	}

	quiz, err := s.quizRepo.GetByID(ctx, session.DailyQuizID)
	if err != nil {
		return nil, err
	}
	questions, err := s.questionRepo.GetByIDs(ctx, quiz.QuestionIDs)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	correct := 0
	answers := make([]entities.AnswerResult, 0, len(questions))
	attempts := make([]*entities.Attempt, 0, len(questions))

	for _, q := range questions {
		selected := session.Answers[q.ID]
		isCorrect := selected != "" && q.IsCorrect(selected)
		if isCorrect {
			correct++
		}
		answers = append(answers, entities.AnswerResult{
			QuestionID:     q.ID,
			SelectedAnswer: selected,
			IsCorrect:      isCorrect,
		})
		attempts = append(attempts, &entities.Attempt{
			UserID:     session.UserID,
			SessionID:  session.ID,
			QuestionID: q.ID,
			IsCorrect:  isCorrect,
			AnsweredAt: now,
		})
	}

	session.Complete(now)

	if err := s.completer.CompleteSession(ctx, session, attempts); err != nil {
		if errors.Is(err, repository.ErrSessionNotInProgress) {
			return nil, ErrInvalidSessionState
		}
		return nil, fmt.Errorf("finalize session: %w", err)
	}

	total := len(questions)
	perfect := total > 0 && correct == total

	// Streak failures do not fail the completion; the result just reports
	// that the streak was not updated.
	streakUpdated := true
	if perfect {
		_, err = s.streaks.ApplyPerfectCompletion(ctx, session.UserID, quiz, session.ID)
	} else {
		_, err = s.streaks.ApplyImperfectCompletion(ctx, session.UserID)
	}
	if err != nil {
		streakUpdated = false
		s.logger.Warn("streak update failed",
			zap.String("user_id", session.UserID),
			zap.Int64("session_id", session.ID),
			zap.Error(err),
		)
	}

	score := 0
	if total > 0 {
		score = int(math.Round(float64(correct) / float64(total) * 100))
	}

	return &entities.QuizResult{
		SessionID:      session.ID,
		Score:          score,
		TotalQuestions: total,
		CorrectAnswers: correct,
		TimeSpentMs:    now.Sub(session.StartedAt).Milliseconds(),
		Answers:        answers,
		StreakUpdated:  streakUpdated,
	}, nil
}
