package entities

import "time"

// Attempt is the permanent record of one answer to one question, written once
// at session completion and never updated afterward.
type Attempt struct {
	ID         int64
	UserID     string
	SessionID  int64
	QuestionID int64
	IsCorrect  bool
	AnsweredAt time.Time // completion time of the session; per-question timing is not tracked
}
