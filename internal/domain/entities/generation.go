package entities

import "time"

// GenerationRunStatus summarizes the outcome of one scheduled generation run.
type GenerationRunStatus string

const (
	RunSucceeded GenerationRunStatus = "succeeded"
	RunPartial   GenerationRunStatus = "partial" // some sub-batches failed
	RunFailed    GenerationRunStatus = "failed"  // nothing was staged
)

// GenerationRun records aggregate statistics for one batch generation run.
type GenerationRun struct {
	ID              int64
	StartedAt       time.Time
	FinishedAt      time.Time
	VersesScanned   int
	QuestionsStaged int
	BatchErrors     int
	Status          GenerationRunStatus
	ErrorText       string // concatenated sub-batch errors, empty on full success
}

// GeneratedQuestion is a candidate question produced by the content provider.
// It is staged unapproved and only enters the quiz pool after moderation.
type GeneratedQuestion struct {
	SurahNumber   int
	AyahNumber    int
	Prompt        string
	Choices       []string
	CorrectChoice string
	Difficulty    Difficulty
}
