package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/hifzhub/quran-quiz-api/internal/domain/entities"
)

// DailyQuizCache caches resolved daily quizzes by calendar date. The cache is
// a read-through optimization only: entries are immutable once created, so
// process-local staleness is harmless and no cross-process invalidation exists.
type DailyQuizCache interface {
	Get(date string) (*entities.DailyQuiz, bool)
	Put(date string, quiz *entities.DailyQuiz)
}

// LRU is a bounded least-recently-used DailyQuizCache.
type LRU struct {
	inner *lru.Cache[string, *entities.DailyQuiz]
}

// NewLRU creates a bounded cache holding up to size dates.
func NewLRU(size int) (*LRU, error) {
	inner, err := lru.New[string, *entities.DailyQuiz](size)
	if err != nil {
		return nil, err
	}
	return &LRU{inner: inner}, nil
}

func (c *LRU) Get(date string) (*entities.DailyQuiz, bool) {
	return c.inner.Get(date)
}

func (c *LRU) Put(date string, quiz *entities.DailyQuiz) {
	c.inner.Add(date, quiz)
}

// Noop is a DailyQuizCache that stores nothing. Useful in tests and in
// deployments that want every resolve to hit the database.
type Noop struct{}

func (Noop) Get(string) (*entities.DailyQuiz, bool) { return nil, false }

func (Noop) Put(string, *entities.DailyQuiz) {}
