package entities

import "time"

// DateLayout is the calendar date format used for daily quiz keys.
const DateLayout = "2006-01-02"

// DailyQuiz represents the fixed set of questions assigned to one calendar date.
// The question list is immutable once the quiz is created: regenerating it would
// invalidate sessions already started against it.
type DailyQuiz struct {
	ID          int64
	QuizDate    string  // calendar date in DateLayout, unique per quiz
	QuestionIDs []int64 // presentation order
	CreatedAt   time.Time
}

// NewDailyQuiz creates a daily quiz for the given date with the selected questions.
func NewDailyQuiz(date string, questionIDs []int64) *DailyQuiz {
	return &DailyQuiz{
		QuizDate:    date,
		QuestionIDs: questionIDs,
		CreatedAt:   time.Now(),
	}
}

// Date parses the quiz date as a UTC midnight timestamp.
func (dq *DailyQuiz) Date() (time.Time, error) {
	return time.Parse(DateLayout, dq.QuizDate)
}
