package repository

import (
	"context"
	"fmt"

	"github.com/hifzhub/quran-quiz-api/internal/domain/entities"
	"github.com/hifzhub/quran-quiz-api/internal/infra/postgres"
)

// GenerationRunRepository records batch generation run statistics.
type GenerationRunRepository struct {
	db postgres.DBTX
}

// NewGenerationRunRepository creates a new GenerationRunRepository.
func NewGenerationRunRepository(db postgres.DBTX) *GenerationRunRepository {
	return &GenerationRunRepository{db: db}
}

// Create inserts a finished run record.
func (r *GenerationRunRepository) Create(ctx context.Context, run *entities.GenerationRun) (int64, error) {
	query := `
		INSERT INTO generation_runs (
			started_at, finished_at, verses_scanned, questions_staged,
			batch_errors, status, error_text
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(
		ctx,
		query,
		run.StartedAt,
		run.FinishedAt,
		run.VersesScanned,
		run.QuestionsStaged,
		run.BatchErrors,
		string(run.Status),
		run.ErrorText,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create generation run: %w", err)
	}

	return id, nil
}
