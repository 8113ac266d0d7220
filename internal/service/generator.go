package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hifzhub/quran-quiz-api/internal/domain/entities"
)

// GeneratorConfig tunes the batch generation scheduler.
type GeneratorConfig struct {
	TargetCoverage int           // minimum approved questions per verse
	ScanLimit      int           // max verses considered per run
	SubBatchSize   int           // verses sent to the provider per request
	PerVerse       int           // questions requested per verse
	BatchDelay     time.Duration // pause between provider requests
}

// DefaultGeneratorConfig mirrors the production defaults.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		TargetCoverage: 2,
		ScanLimit:      50,
		SubBatchSize:   5,
		PerVerse:       2,
		BatchDelay:     5 * time.Second,
	}
}

// GeneratorService is the periodic job that keeps question coverage up:
// it finds under-covered verses, requests candidates from the content
// provider in rate-limited sub-batches, and stages results unapproved for
// moderation. One failed sub-batch never aborts the run.
type GeneratorService struct {
	verseRepo    VerseRepository
	questionRepo QuestionRepository
	runRepo      GenerationRunRepository
	provider     QuestionGenerator
	cfg          GeneratorConfig
	logger       *zap.Logger
}

// NewGeneratorService creates a generator service.
func NewGeneratorService(
	verseRepo VerseRepository,
	questionRepo QuestionRepository,
	runRepo GenerationRunRepository,
	provider QuestionGenerator,
	cfg GeneratorConfig,
	logger *zap.Logger,
) *GeneratorService {
	return &GeneratorService{
		verseRepo:    verseRepo,
		questionRepo: questionRepo,
		runRepo:      runRepo,
		provider:     provider,
		cfg:          cfg,
		logger:       logger,
	}
}

// Run executes one generation pass and records its statistics.
func (s *GeneratorService) Run(ctx context.Context) (*entities.GenerationRun, error) {
	run := &entities.GenerationRun{StartedAt: time.Now()}

	verses, err := s.verseRepo.UnderCovered(ctx, s.cfg.TargetCoverage, s.cfg.ScanLimit)
	if err != nil {
		return nil, err
	}
	run.VersesScanned = len(verses)

	var errTexts []string
	for i := 0; i < len(verses); i += s.cfg.SubBatchSize {
		if i > 0 {
			select {
			case <-ctx.Done():
				errTexts = append(errTexts, ctx.Err().Error())
			case <-time.After(s.cfg.BatchDelay):
			}
			if ctx.Err() != nil {
				break // shutting down; still record what this run did
			}
		}

		end := i + s.cfg.SubBatchSize
		if end > len(verses) {
			end = len(verses)
		}
		batch := verses[i:end]

		generated, err := s.provider.GenerateQuestions(ctx, batch, s.cfg.PerVerse)
		if err != nil {
			run.BatchErrors++
			errTexts = append(errTexts, err.Error())
			s.logger.Error("generation sub-batch failed",
				zap.Int("batch_start", i),
				zap.Int("batch_size", len(batch)),
				zap.Error(err),
			)
			continue
		}

		for _, gq := range generated {
			if _, err := s.questionRepo.CreateStaged(ctx, gq); err != nil {
				run.BatchErrors++
				errTexts = append(errTexts, err.Error())
				s.logger.Error("failed to stage generated question",
					zap.Int("surah", gq.SurahNumber),
					zap.Int("ayah", gq.AyahNumber),
					zap.Error(err),
				)
				continue
			}
			run.QuestionsStaged++
		}
	}

	run.FinishedAt = time.Now()
	run.ErrorText = strings.Join(errTexts, "; ")
	switch {
	case run.BatchErrors == 0:
		run.Status = entities.RunSucceeded
	case run.QuestionsStaged > 0:
		run.Status = entities.RunPartial
	default:
		run.Status = entities.RunFailed
	}

	if id, err := s.runRepo.Create(ctx, run); err != nil {
		s.logger.Error("failed to record generation run", zap.Error(err))
	} else {
		run.ID = id
	}

	s.logger.Info("generation run finished",
		zap.String("status", string(run.Status)),
		zap.Int("verses_scanned", run.VersesScanned),
		zap.Int("questions_staged", run.QuestionsStaged),
		zap.Int("batch_errors", run.BatchErrors),
		zap.Duration("took", run.FinishedAt.Sub(run.StartedAt)),
	)

	return run, nil
}
