package entities

import "time"

// SessionStatus represents the lifecycle state of a quiz session.
type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionExpired    SessionStatus = "expired" // set by an external timeout sweep
)

// QuizSession represents one user's attempt at a specific daily quiz.
// It tracks the progress cursor, recorded answers, status, and timestamps.
type QuizSession struct {
	ID             int64
	UserID         string
	DailyQuizID    int64
	CurrentIndex   int              // zero-based UI progress cursor, only ever increases
	Answers        map[int64]string // question ID -> selected choice
	Status         SessionStatus
	StartedAt      time.Time
	CompletedAt    *time.Time // nil until the session completes
	LastActivityAt time.Time
	Timezone       string // IANA timezone of the user at session start
}

// NewQuizSession creates a fresh in-progress session for a user and daily quiz.
func NewQuizSession(userID string, dailyQuizID int64, timezone string) *QuizSession {
	now := time.Now()
	return &QuizSession{
		UserID:         userID,
		DailyQuizID:    dailyQuizID,
		CurrentIndex:   0,
		Answers:        make(map[int64]string),
		Status:         SessionInProgress,
		StartedAt:      now,
		LastActivityAt: now,
		Timezone:       timezone,
	}
}

// IsInProgress reports whether the session still accepts answers.
func (s *QuizSession) IsInProgress() bool {
	return s.Status == SessionInProgress
}

// RecordAnswer upserts a selected choice for a question. Re-answering a question
// overwrites the previous choice. When advance is set, the progress cursor moves
// forward by one; the cursor never gates which questions may be answered.
func (s *QuizSession) RecordAnswer(questionID int64, choice string, advance bool) {
	if s.Answers == nil {
		s.Answers = make(map[int64]string)
	}
	s.Answers[questionID] = choice
	if advance {
		s.CurrentIndex++
	}
	s.LastActivityAt = time.Now()
}

// Complete marks the session as completed and sets the completion timestamp.
func (s *QuizSession) Complete(now time.Time) {
	s.Status = SessionCompleted
	s.CompletedAt = &now
	s.LastActivityAt = now
}
