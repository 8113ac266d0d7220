package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hifzhub/quran-quiz-api/internal/cache"
	"github.com/hifzhub/quran-quiz-api/internal/domain/entities"
	"github.com/hifzhub/quran-quiz-api/internal/infra/postgres/repository"
)

// tierQuota is how many questions of one difficulty a daily quiz needs.
type tierQuota struct {
	difficulty entities.Difficulty
	count      int
}

// Fixed composition policy: 2 easy, 2 medium, 1 hard. Tiers are processed in
// this order so easier questions claim their surahs first.
var quizComposition = []tierQuota{
	{entities.DifficultyEasy, 2},
	{entities.DifficultyMedium, 2},
	{entities.DifficultyHard, 1},
}

const (
	// Candidate pools are oversampled to leave room for surah diversity filtering.
	oversampleFactor = 5

	// Bound on generate-insert-refetch cycles when racing another process.
	maxResolveAttempts = 3
)

// SelectorService resolves the daily quiz for a calendar date, generating and
// persisting it on first request. Creation is idempotent: the unique date
// constraint in the store arbitrates concurrent generation.
type SelectorService struct {
	quizRepo     DailyQuizRepository
	questionRepo QuestionRepository
	cache        cache.DailyQuizCache
	logger       *zap.Logger

	mu  sync.Mutex // guards rng, which is not safe for concurrent use
	rng *rand.Rand
}

// NewSelectorService creates a selector. The random source is injected so
// tests can make selection deterministic.
func NewSelectorService(
	quizRepo DailyQuizRepository,
	questionRepo QuestionRepository,
	quizCache cache.DailyQuizCache,
	rng *rand.Rand,
	logger *zap.Logger,
) *SelectorService {
	return &SelectorService{
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		cache:        quizCache,
		rng:          rng,
		logger:       logger,
	}
}

// Resolve returns the daily quiz for the given date, creating it if this is
// the first request for that date. Concurrent callers converge on the same
// persisted row: a losing insert re-reads the winner instead of erroring.
func (s *SelectorService) Resolve(ctx context.Context, date string) (*entities.DailyQuiz, error) {
	if _, err := time.Parse(entities.DateLayout, date); err != nil {
		return nil, fmt.Errorf("invalid quiz date %q: %w", date, err)
	}

	if dq, ok := s.cache.Get(date); ok {
		return dq, nil
	}

	dq, err := s.quizRepo.GetByDate(ctx, date)
	if err == nil {
		s.cache.Put(date, dq)
		return dq, nil
	}
	if !errors.Is(err, repository.ErrQuizNotFound) {
		return nil, err
	}

	for attempt := 0; attempt < maxResolveAttempts; attempt++ {
		generated, err := s.generate(ctx, date)
		if err != nil {
			return nil, err
		}

		id, err := s.quizRepo.Create(ctx, generated)
		if err == nil {
			generated.ID = id
			s.cache.Put(date, generated)
			return generated, nil
		}
		if !errors.Is(err, repository.ErrDuplicateQuizDate) {
			return nil, err
		}

		// Lost the creation race; the winner's row is authoritative.
		dq, err = s.quizRepo.GetByDate(ctx, date)
		if err == nil {
			s.cache.Put(date, dq)
			return dq, nil
		}
		if !errors.Is(err, repository.ErrQuizNotFound) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("resolve daily quiz for %s: retries exhausted", date)
}

// Questions loads the quiz's questions in presentation order.
func (s *SelectorService) Questions(ctx context.Context, dq *entities.DailyQuiz) ([]*entities.Question, error) {
	return s.questionRepo.GetByIDs(ctx, dq.QuestionIDs)
}

// generate builds a fresh selection for the date: per-tier candidate pools,
// surah diversity preference on every pick, then a final shuffle so tier
// boundaries are not visible in the presentation order.
func (s *SelectorService) generate(ctx context.Context, date string) (*entities.DailyQuiz, error) {
	usedSurahs := make(map[int]struct{})
	var selected []*entities.Question

	for _, tier := range quizComposition {
		pool, err := s.questionRepo.ApprovedByDifficulty(ctx, tier.difficulty, tier.count*oversampleFactor)
		if err != nil {
			return nil, fmt.Errorf("fetch %s candidates: %w", tier.difficulty, err)
		}

		if len(pool) < tier.count {
			// A degraded quiz is preferable to no quiz.
			s.logger.Warn("insufficient approved questions for tier",
				zap.String("date", date),
				zap.String("difficulty", string(tier.difficulty)),
				zap.Int("required", tier.count),
				zap.Int("available", len(pool)),
			)
		}

		selected = append(selected, s.pick(pool, tier.count, usedSurahs)...)
	}

	selected = s.shuffled(selected)

	ids := make([]int64, len(selected))
	for i, q := range selected {
		ids[i] = q.ID
	}

	return entities.NewDailyQuiz(date, ids), nil
}

// pick draws up to n questions from the pool at random, without replacement.
// Each draw prefers a surah no earlier pick has used, including picks made
// earlier in the same call; once the fresh surahs run out the remainder comes
// from the rest of the pool. used is updated with every pick.
func (s *SelectorService) pick(pool []*entities.Question, n int, used map[int]struct{}) []*entities.Question {
	shuffled := s.shuffled(pool)
	if n > len(shuffled) {
		n = len(shuffled)
	}

	picked := make(map[int64]struct{}, n)
	out := make([]*entities.Question, 0, n)
	for _, q := range shuffled {
		if len(out) == n {
			break
		}
		if _, seen := used[q.SurahNumber]; seen {
			continue
		}
		used[q.SurahNumber] = struct{}{}
		picked[q.ID] = struct{}{}
		out = append(out, q)
	}
	for _, q := range shuffled {
		if len(out) == n {
			break
		}
		if _, dup := picked[q.ID]; dup {
			continue
		}
		used[q.SurahNumber] = struct{}{}
		out = append(out, q)
	}
	return out
}

// shuffled returns a shuffled copy of qs.
func (s *SelectorService) shuffled(qs []*entities.Question) []*entities.Question {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*entities.Question, len(qs))
	copy(out, qs)
	s.rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
