package service

import (
	"context"
	"fmt"
	"time"

	"github.com/hifzhub/quran-quiz-api/internal/domain/entities"
	"github.com/hifzhub/quran-quiz-api/internal/infra/postgres/repository"
)

// In-memory stand-ins for the postgres repositories, mimicking their
// sentinel errors and uniqueness constraints.

type fakeQuestionRepo struct {
	nextID    int64
	questions []*entities.Question
	stageErr  error
}

func (r *fakeQuestionRepo) add(q *entities.Question) *entities.Question {
	r.nextID++
	q.ID = r.nextID
	r.questions = append(r.questions, q)
	return q
}

func (r *fakeQuestionRepo) ApprovedByDifficulty(
	_ context.Context, difficulty entities.Difficulty, limit int,
) ([]*entities.Question, error) {
	var out []*entities.Question
	for _, q := range r.questions {
		if q.Difficulty == difficulty && q.IsApproved() {
			out = append(out, q)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeQuestionRepo) GetByIDs(_ context.Context, ids []int64) ([]*entities.Question, error) {
	var out []*entities.Question
	for _, id := range ids {
		for _, q := range r.questions {
			if q.ID == id {
				out = append(out, q)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeQuestionRepo) CreateStaged(_ context.Context, gq *entities.GeneratedQuestion) (int64, error) {
	if r.stageErr != nil {
		return 0, r.stageErr
	}
	q := r.add(&entities.Question{
		SurahNumber:   gq.SurahNumber,
		AyahNumber:    gq.AyahNumber,
		Prompt:        gq.Prompt,
		Choices:       gq.Choices,
		CorrectChoice: gq.CorrectChoice,
		Difficulty:    gq.Difficulty,
		CreatedAt:     time.Now(),
		CreatedBy:     "generator",
	})
	return q.ID, nil
}

func (r *fakeQuestionRepo) ListPending(_ context.Context, limit int) ([]*entities.Question, error) {
	var out []*entities.Question
	for _, q := range r.questions {
		if !q.IsApproved() {
			out = append(out, q)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeQuestionRepo) Approve(_ context.Context, id int64, approvedAt time.Time) error {
	for _, q := range r.questions {
		if q.ID == id {
			if !q.IsApproved() {
				q.ApprovedAt = &approvedAt
			}
			return nil
		}
	}
	return repository.ErrQuestionNotFound
}

type fakeQuizRepo struct {
	nextID   int64
	byDate   map[string]*entities.DailyQuiz
	onCreate func(dq *entities.DailyQuiz) // runs before the insert, to stage races
}

func newFakeQuizRepo() *fakeQuizRepo {
	return &fakeQuizRepo{byDate: make(map[string]*entities.DailyQuiz)}
}

func (r *fakeQuizRepo) insert(dq *entities.DailyQuiz) *entities.DailyQuiz {
	r.nextID++
	dq.ID = r.nextID
	r.byDate[dq.QuizDate] = dq
	return dq
}

func (r *fakeQuizRepo) Create(_ context.Context, dq *entities.DailyQuiz) (int64, error) {
	if r.onCreate != nil {
		r.onCreate(dq)
	}
	if _, exists := r.byDate[dq.QuizDate]; exists {
		return 0, repository.ErrDuplicateQuizDate
	}
	return r.insert(dq).ID, nil
}

func (r *fakeQuizRepo) GetByDate(_ context.Context, date string) (*entities.DailyQuiz, error) {
	dq, ok := r.byDate[date]
	if !ok {
		return nil, repository.ErrQuizNotFound
	}
	return dq, nil
}

func (r *fakeQuizRepo) GetByID(_ context.Context, id int64) (*entities.DailyQuiz, error) {
	for _, dq := range r.byDate {
		if dq.ID == id {
			return dq, nil
		}
	}
	return nil, repository.ErrQuizNotFound
}

type fakeSessionRepo struct {
	nextID   int64
	sessions map[int64]*entities.QuizSession

	// lastCompleted is the date reported by LastCompletedQuizDate, "" for none.
	lastCompleted string

	// onCreate runs before the insert, to stage creation races.
	onCreate func(s *entities.QuizSession)
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[int64]*entities.QuizSession)}
}

func cloneSession(s *entities.QuizSession) *entities.QuizSession {
	c := *s
	c.Answers = make(map[int64]string, len(s.Answers))
	for id, choice := range s.Answers {
		c.Answers[id] = choice
	}
	return &c
}

func (r *fakeSessionRepo) Create(_ context.Context, s *entities.QuizSession) (int64, error) {
	if r.onCreate != nil {
		r.onCreate(s)
	}
	for _, existing := range r.sessions {
		if existing.UserID == s.UserID &&
			existing.DailyQuizID == s.DailyQuizID &&
			existing.Status == entities.SessionInProgress {
			return 0, repository.ErrDuplicateActiveSession
		}
	}
	r.nextID++
	stored := cloneSession(s)
	stored.ID = r.nextID
	r.sessions[stored.ID] = stored
	return stored.ID, nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, id int64) (*entities.QuizSession, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	return cloneSession(s), nil
}

func (r *fakeSessionRepo) GetInProgress(
	_ context.Context, userID string, dailyQuizID int64,
) (*entities.QuizSession, error) {
	for _, s := range r.sessions {
		if s.UserID == userID && s.DailyQuizID == dailyQuizID && s.Status == entities.SessionInProgress {
			return cloneSession(s), nil
		}
	}
	return nil, repository.ErrSessionNotFound
}

// mergeSession applies an update the way the postgres UPDATE does: scalar
// fields overwrite, answers merge into the stored map per question key.
func mergeSession(stored, s *entities.QuizSession) *entities.QuizSession {
	merged := cloneSession(stored)
	merged.CurrentIndex = s.CurrentIndex
	merged.Status = s.Status
	merged.CompletedAt = s.CompletedAt
	merged.LastActivityAt = s.LastActivityAt
	for id, choice := range s.Answers {
		merged.Answers[id] = choice
	}
	return merged
}

func (r *fakeSessionRepo) Update(_ context.Context, s *entities.QuizSession) error {
	stored, ok := r.sessions[s.ID]
	if !ok {
		return repository.ErrSessionNotFound
	}
	r.sessions[s.ID] = mergeSession(stored, s)
	return nil
}

func (r *fakeSessionRepo) LastCompletedQuizDate(_ context.Context, _ string, _ int64) (string, error) {
	if r.lastCompleted == "" {
		return "", repository.ErrNoCompletedSessions
	}
	return r.lastCompleted, nil
}

// fakeCompleter applies the conditional completed-transition against the
// fake session repo, the way CompletionStore does against postgres.
type fakeCompleter struct {
	sessions *fakeSessionRepo
	attempts []*entities.Attempt
	failWith error
}

func (c *fakeCompleter) CompleteSession(
	_ context.Context, s *entities.QuizSession, attempts []*entities.Attempt,
) error {
	if c.failWith != nil {
		return c.failWith
	}
	stored, ok := c.sessions.sessions[s.ID]
	if !ok {
		return repository.ErrSessionNotFound
	}
	if stored.Status != entities.SessionInProgress {
		return repository.ErrSessionNotInProgress
	}
	c.sessions.sessions[s.ID] = mergeSession(stored, s)
	c.attempts = append(c.attempts, attempts...)
	return nil
}

type fakeStreakRepo struct {
	streaks   map[string]*entities.Streak
	upsertErr error
}

func newFakeStreakRepo() *fakeStreakRepo {
	return &fakeStreakRepo{streaks: make(map[string]*entities.Streak)}
}

func (r *fakeStreakRepo) GetByUser(_ context.Context, userID string) (*entities.Streak, error) {
	s, ok := r.streaks[userID]
	if !ok {
		return nil, repository.ErrStreakNotFound
	}
	return s, nil
}

func (r *fakeStreakRepo) UpsertPerfect(_ context.Context, userID string, continues bool) (*entities.Streak, error) {
	if r.upsertErr != nil {
		return nil, r.upsertErr
	}
	s, ok := r.streaks[userID]
	if !ok {
		s = &entities.Streak{UserID: userID, Current: 1, Longest: 1, UpdatedAt: time.Now()}
		r.streaks[userID] = s
		return s, nil
	}
	if continues {
		s.Current++
	} else {
		s.Current = 1
	}
	if s.Current > s.Longest {
		s.Longest = s.Current
	}
	s.UpdatedAt = time.Now()
	return s, nil
}

func (r *fakeStreakRepo) ResetCurrent(_ context.Context, userID string) (*entities.Streak, error) {
	if r.upsertErr != nil {
		return nil, r.upsertErr
	}
	s, ok := r.streaks[userID]
	if !ok {
		s = &entities.Streak{UserID: userID, UpdatedAt: time.Now()}
		r.streaks[userID] = s
		return s, nil
	}
	s.Current = 0
	s.UpdatedAt = time.Now()
	return s, nil
}

type fakeVerseRepo struct {
	verses []*entities.Verse
}

func (r *fakeVerseRepo) UnderCovered(_ context.Context, _, limit int) ([]*entities.Verse, error) {
	if len(r.verses) > limit {
		return r.verses[:limit], nil
	}
	return r.verses, nil
}

type fakeRunRepo struct {
	runs []*entities.GenerationRun
}

func (r *fakeRunRepo) Create(_ context.Context, run *entities.GenerationRun) (int64, error) {
	r.runs = append(r.runs, run)
	return int64(len(r.runs)), nil
}

// fakeGenerator returns canned questions, failing on call numbers listed in
// failCalls (1-based).
type fakeGenerator struct {
	calls     int
	failCalls map[int]bool
}

func (g *fakeGenerator) GenerateQuestions(
	_ context.Context, verses []*entities.Verse, perVerse int,
) ([]*entities.GeneratedQuestion, error) {
	g.calls++
	if g.failCalls[g.calls] {
		return nil, fmt.Errorf("provider unavailable")
	}
	var out []*entities.GeneratedQuestion
	for _, v := range verses {
		for i := 0; i < perVerse; i++ {
			out = append(out, &entities.GeneratedQuestion{
				SurahNumber:   v.SurahNumber,
				AyahNumber:    v.AyahNumber,
				Prompt:        fmt.Sprintf("Which surah contains ayah %d:%d?", v.SurahNumber, v.AyahNumber),
				Choices:       []string{"A", "B", "C", "D"},
				CorrectChoice: "A",
				Difficulty:    entities.DifficultyMedium,
			})
		}
	}
	return out, nil
}
