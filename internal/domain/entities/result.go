package entities

// AnswerResult is the per-question breakdown included in a quiz result.
type AnswerResult struct {
	QuestionID     int64  `json:"questionId"`
	SelectedAnswer string `json:"selectedAnswer"` // empty if the question was never answered
	IsCorrect      bool   `json:"isCorrect"`
	TimeSpentMs    int64  `json:"timeSpent"` // always 0 at this layer, reserved for per-question timing
}

// QuizResult is the summary returned when a session completes.
type QuizResult struct {
	SessionID      int64          `json:"sessionId"`
	Score          int            `json:"score"` // percentage 0-100, rounded to nearest integer
	TotalQuestions int            `json:"totalQuestions"`
	CorrectAnswers int            `json:"correctAnswers"`
	TimeSpentMs    int64          `json:"timeSpentMs"` // wall clock, completion minus start
	Answers        []AnswerResult `json:"answers"`
	StreakUpdated  bool           `json:"streakUpdated"`
}
