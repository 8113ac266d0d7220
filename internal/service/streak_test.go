package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hifzhub/quran-quiz-api/internal/domain/entities"
)

func newStreakFixture(current, longest int, lastCompleted string) (*StreakService, *fakeStreakRepo) {
	sessionRepo := newFakeSessionRepo()
	sessionRepo.lastCompleted = lastCompleted
	streakRepo := newFakeStreakRepo()
	if current > 0 || longest > 0 {
		streakRepo.streaks[testUser] = &entities.Streak{UserID: testUser, Current: current, Longest: longest}
	}
	return NewStreakService(sessionRepo, streakRepo), streakRepo
}

func TestPerfectCompletionFirstEver(t *testing.T) {
	svc, _ := newStreakFixture(0, 0, "")

	streak, err := svc.ApplyPerfectCompletion(context.Background(), testUser, entities.NewDailyQuiz("2026-03-01", nil), 1)
	require.NoError(t, err)

	assert.Equal(t, 1, streak.Current)
	assert.Equal(t, 1, streak.Longest)
}

func TestPerfectCompletionContinuesFromYesterday(t *testing.T) {
	svc, _ := newStreakFixture(4, 4, "2026-02-28")

	streak, err := svc.ApplyPerfectCompletion(context.Background(), testUser, entities.NewDailyQuiz("2026-03-01", nil), 1)
	require.NoError(t, err)

	assert.Equal(t, 5, streak.Current)
	assert.Equal(t, 5, streak.Longest)
}

func TestPerfectCompletionSameDay(t *testing.T) {
	svc, _ := newStreakFixture(3, 7, "2026-03-01")

	streak, err := svc.ApplyPerfectCompletion(context.Background(), testUser, entities.NewDailyQuiz("2026-03-01", nil), 2)
	require.NoError(t, err)

	assert.Equal(t, 4, streak.Current)
	assert.Equal(t, 7, streak.Longest)
}

func TestPerfectCompletionAfterGapRestartsAtOne(t *testing.T) {
	svc, _ := newStreakFixture(10, 10, "2026-02-26") // three days before

	streak, err := svc.ApplyPerfectCompletion(context.Background(), testUser, entities.NewDailyQuiz("2026-03-01", nil), 1)
	require.NoError(t, err)

	assert.Equal(t, 1, streak.Current)
	assert.Equal(t, 10, streak.Longest, "longest survives the restart")
}

func TestPerfectCompletionAcrossMonthBoundary(t *testing.T) {
	svc, _ := newStreakFixture(2, 2, "2026-02-28")

	// 2026 is not a leap year: Feb 28 -> Mar 1 is consecutive.
	streak, err := svc.ApplyPerfectCompletion(context.Background(), testUser, entities.NewDailyQuiz("2026-03-01", nil), 1)
	require.NoError(t, err)

	assert.Equal(t, 3, streak.Current)
}

func TestPerfectCompletionRejectsMalformedQuizDate(t *testing.T) {
	svc, _ := newStreakFixture(0, 0, "")

	_, err := svc.ApplyPerfectCompletion(context.Background(), testUser, &entities.DailyQuiz{QuizDate: "01/03/2026"}, 1)
	assert.Error(t, err)
}

func TestImperfectCompletionResetsCurrentOnly(t *testing.T) {
	svc, _ := newStreakFixture(10, 10, "2026-02-28")

	streak, err := svc.ApplyImperfectCompletion(context.Background(), testUser)
	require.NoError(t, err)

	assert.Equal(t, 0, streak.Current)
	assert.Equal(t, 10, streak.Longest)
}

func TestGetUnknownUserIsZeroStreak(t *testing.T) {
	svc, _ := newStreakFixture(0, 0, "")

	streak, err := svc.Get(context.Background(), "nobody")
	require.NoError(t, err)

	assert.Equal(t, "nobody", streak.UserID)
	assert.Zero(t, streak.Current)
	assert.Zero(t, streak.Longest)
}
