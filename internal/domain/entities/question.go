package entities

import (
	"strings"
	"time"
)

// Difficulty represents the difficulty tier of a quiz question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Question represents a single multiple-choice quiz item tied to a verse.
type Question struct {
	ID            int64
	SurahNumber   int      // chapter number (1-114)
	AyahNumber    int      // verse number within the surah
	Prompt        string   // question text shown to the user
	Choices       []string // ordered answer choices
	CorrectChoice string   // the correct choice, must be one of Choices
	Difficulty    Difficulty
	ApprovedAt    *time.Time // nil until a moderator approves the question
	CreatedAt     time.Time
	CreatedBy     string // user ID of the author, or "generator" for AI-staged items
}

// IsApproved reports whether the question has passed moderation
// and is eligible for quiz selection.
func (q *Question) IsApproved() bool {
	return q.ApprovedAt != nil
}

// IsCorrect checks a selected choice against the correct answer.
func (q *Question) IsCorrect(choice string) bool {
	return strings.EqualFold(
		strings.TrimSpace(choice),
		strings.TrimSpace(q.CorrectChoice),
	)
}
