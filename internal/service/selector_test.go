package service

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hifzhub/quran-quiz-api/internal/cache"
	"github.com/hifzhub/quran-quiz-api/internal/domain/entities"
)

const testDate = "2026-03-01"

func approvedQuestion(surah int, difficulty entities.Difficulty) *entities.Question {
	now := time.Now()
	return &entities.Question{
		SurahNumber:   surah,
		AyahNumber:    1,
		Prompt:        "prompt",
		Choices:       []string{"A", "B", "C", "D"},
		CorrectChoice: "A",
		Difficulty:    difficulty,
		ApprovedAt:    &now,
		CreatedAt:     now,
		CreatedBy:     "author",
	}
}

// seedQuestions fills the repo with approved questions: countPerTier per
// tier, every tier drawing on the same surah range so the diversity filter
// has real work to do.
func seedQuestions(repo *fakeQuestionRepo, countPerTier int) {
	tiers := []entities.Difficulty{entities.DifficultyEasy, entities.DifficultyMedium, entities.DifficultyHard}
	for _, tier := range tiers {
		for i := 0; i < countPerTier; i++ {
			repo.add(approvedQuestion(i+1, tier))
		}
	}
}

func newTestSelector(quizRepo *fakeQuizRepo, questionRepo *fakeQuestionRepo, c cache.DailyQuizCache) *SelectorService {
	return NewSelectorService(quizRepo, questionRepo, c, rand.New(rand.NewSource(1)), zap.NewNop())
}

func TestResolveComposition(t *testing.T) {
	questionRepo := &fakeQuestionRepo{}
	seedQuestions(questionRepo, 10)
	quizRepo := newFakeQuizRepo()
	selector := newTestSelector(quizRepo, questionRepo, cache.Noop{})

	quiz, err := selector.Resolve(context.Background(), testDate)
	require.NoError(t, err)
	require.Len(t, quiz.QuestionIDs, 5)

	questions, err := selector.Questions(context.Background(), quiz)
	require.NoError(t, err)

	counts := map[entities.Difficulty]int{}
	for _, q := range questions {
		counts[q.Difficulty]++
	}
	assert.Equal(t, 2, counts[entities.DifficultyEasy])
	assert.Equal(t, 2, counts[entities.DifficultyMedium])
	assert.Equal(t, 1, counts[entities.DifficultyHard])
}

func TestResolveSurahDiversity(t *testing.T) {
	questionRepo := &fakeQuestionRepo{}
	seedQuestions(questionRepo, 10) // tiers share surahs; within a tier each surah appears once
	quizRepo := newFakeQuizRepo()
	selector := newTestSelector(quizRepo, questionRepo, cache.Noop{})

	quiz, err := selector.Resolve(context.Background(), testDate)
	require.NoError(t, err)

	questions, err := selector.Questions(context.Background(), quiz)
	require.NoError(t, err)
	require.Len(t, questions, 5)

	surahs := map[int]struct{}{}
	for _, q := range questions {
		surahs[q.SurahNumber] = struct{}{}
	}
	assert.Len(t, surahs, 5, "each question should come from a distinct surah")
}

func TestResolveSurahDiversityWithDuplicateSurahPools(t *testing.T) {
	// Each tier's pool carries two questions per surah, so a draw that ignores
	// its own earlier picks can land on the same surah twice within one tier.
	tiers := []entities.Difficulty{entities.DifficultyEasy, entities.DifficultyMedium, entities.DifficultyHard}
	for seed := int64(0); seed < 50; seed++ {
		questionRepo := &fakeQuestionRepo{}
		for _, tier := range tiers {
			for round := 0; round < 2; round++ {
				for surah := 1; surah <= 5; surah++ {
					questionRepo.add(approvedQuestion(surah, tier))
				}
			}
		}
		quizRepo := newFakeQuizRepo()
		selector := NewSelectorService(
			quizRepo, questionRepo, cache.Noop{}, rand.New(rand.NewSource(seed)), zap.NewNop(),
		)

		quiz, err := selector.Resolve(context.Background(), testDate)
		require.NoError(t, err)

		questions, err := selector.Questions(context.Background(), quiz)
		require.NoError(t, err)
		require.Len(t, questions, 5)

		surahs := map[int]struct{}{}
		for _, q := range questions {
			surahs[q.SurahNumber] = struct{}{}
		}
		assert.Len(t, surahs, 5, "seed %d: the pool permits five distinct surahs", seed)
	}
}

func TestResolveGracefulUnderfill(t *testing.T) {
	questionRepo := &fakeQuestionRepo{}
	// Enough easy and medium questions, but no hard ones at all.
	for i := 0; i < 5; i++ {
		questionRepo.add(approvedQuestion(i+1, entities.DifficultyEasy))
		questionRepo.add(approvedQuestion(i+50, entities.DifficultyMedium))
	}
	quizRepo := newFakeQuizRepo()
	selector := newTestSelector(quizRepo, questionRepo, cache.Noop{})

	quiz, err := selector.Resolve(context.Background(), testDate)
	require.NoError(t, err, "a degraded quiz is preferable to no quiz")
	assert.Len(t, quiz.QuestionIDs, 4)
}

func TestResolveIdempotent(t *testing.T) {
	questionRepo := &fakeQuestionRepo{}
	seedQuestions(questionRepo, 10)
	quizRepo := newFakeQuizRepo()
	lru, err := cache.NewLRU(8)
	require.NoError(t, err)
	selector := newTestSelector(quizRepo, questionRepo, lru)

	first, err := selector.Resolve(context.Background(), testDate)
	require.NoError(t, err)
	second, err := selector.Resolve(context.Background(), testDate)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.QuestionIDs, second.QuestionIDs)
}

func TestResolveUnaffectedByStaleCache(t *testing.T) {
	questionRepo := &fakeQuestionRepo{}
	seedQuestions(questionRepo, 10)
	quizRepo := newFakeQuizRepo()

	// The quiz exists in the store but not in this process's cache.
	persisted := quizRepo.insert(entities.NewDailyQuiz(testDate, []int64{1, 2, 3, 4, 5}))

	selector := newTestSelector(quizRepo, questionRepo, cache.Noop{})
	resolved, err := selector.Resolve(context.Background(), testDate)
	require.NoError(t, err)
	assert.Equal(t, persisted.ID, resolved.ID)
}

func TestResolveLostCreationRace(t *testing.T) {
	questionRepo := &fakeQuestionRepo{}
	seedQuestions(questionRepo, 10)
	quizRepo := newFakeQuizRepo()

	// Another process wins the insert between our generate and create.
	var winner *entities.DailyQuiz
	quizRepo.onCreate = func(*entities.DailyQuiz) {
		if winner == nil {
			winner = quizRepo.insert(entities.NewDailyQuiz(testDate, []int64{1, 2, 3, 4, 5}))
		}
	}

	selector := newTestSelector(quizRepo, questionRepo, cache.Noop{})
	resolved, err := selector.Resolve(context.Background(), testDate)
	require.NoError(t, err, "losing the race must not surface an error")
	assert.Equal(t, winner.ID, resolved.ID)
	assert.Equal(t, winner.QuestionIDs, resolved.QuestionIDs)
}

func TestResolveRejectsInvalidDate(t *testing.T) {
	selector := newTestSelector(newFakeQuizRepo(), &fakeQuestionRepo{}, cache.Noop{})

	_, err := selector.Resolve(context.Background(), "01/03/2026")
	assert.Error(t, err)
}

func TestResolveDeterministicWithSeededRand(t *testing.T) {
	build := func() []int64 {
		questionRepo := &fakeQuestionRepo{}
		seedQuestions(questionRepo, 10)
		quizRepo := newFakeQuizRepo()
		selector := newTestSelector(quizRepo, questionRepo, cache.Noop{})
		quiz, err := selector.Resolve(context.Background(), testDate)
		require.NoError(t, err)
		return quiz.QuestionIDs
	}

	assert.Equal(t, build(), build(), "same seed and pool should select the same quiz")
}
