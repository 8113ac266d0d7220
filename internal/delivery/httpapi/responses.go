package httpapi

import (
	"strconv"
	"time"

	"github.com/hifzhub/quran-quiz-api/internal/domain/entities"
)

// questionView is a question as shown to quiz takers. The correct choice is
// deliberately absent: grading happens server-side at completion.
type questionView struct {
	ID          int64    `json:"id"`
	SurahNumber int      `json:"surahNumber"`
	AyahNumber  int      `json:"ayahNumber"`
	Prompt      string   `json:"prompt"`
	Choices     []string `json:"choices"`
	Difficulty  string   `json:"difficulty"`
}

type dailyQuizResponse struct {
	ID          int64          `json:"id"`
	Date        string         `json:"date"`
	QuestionIDs []int64        `json:"questionIds"`
	Questions   []questionView `json:"questions"`
}

func newDailyQuizResponse(dq *entities.DailyQuiz, questions []*entities.Question) dailyQuizResponse {
	views := make([]questionView, 0, len(questions))
	for _, q := range questions {
		views = append(views, questionView{
			ID:          q.ID,
			SurahNumber: q.SurahNumber,
			AyahNumber:  q.AyahNumber,
			Prompt:      q.Prompt,
			Choices:     q.Choices,
			Difficulty:  string(q.Difficulty),
		})
	}
	return dailyQuizResponse{
		ID:          dq.ID,
		Date:        dq.QuizDate,
		QuestionIDs: dq.QuestionIDs,
		Questions:   views,
	}
}

type sessionResponse struct {
	ID                   int64             `json:"id"`
	UserID               string            `json:"userId"`
	DailyQuizID          int64             `json:"dailyQuizId"`
	CurrentQuestionIndex int               `json:"currentQuestionIndex"`
	Answers              map[string]string `json:"answers"`
	Status               string            `json:"status"`
	StartedAt            time.Time         `json:"startedAt"`
	CompletedAt          *time.Time        `json:"completedAt,omitempty"`
	LastActivityAt       time.Time         `json:"lastActivityAt"`
	Timezone             string            `json:"timezone"`
}

func newSessionResponse(s *entities.QuizSession) sessionResponse {
	answers := make(map[string]string, len(s.Answers))
	for questionID, choice := range s.Answers {
		answers[strconv.FormatInt(questionID, 10)] = choice
	}
	return sessionResponse{
		ID:                   s.ID,
		UserID:               s.UserID,
		DailyQuizID:          s.DailyQuizID,
		CurrentQuestionIndex: s.CurrentIndex,
		Answers:              answers,
		Status:               string(s.Status),
		StartedAt:            s.StartedAt,
		CompletedAt:          s.CompletedAt,
		LastActivityAt:       s.LastActivityAt,
		Timezone:             s.Timezone,
	}
}

// moderationView includes the correct choice; these endpoints sit behind
// moderator auth at the gateway.
type moderationView struct {
	ID            int64      `json:"id"`
	SurahNumber   int        `json:"surahNumber"`
	AyahNumber    int        `json:"ayahNumber"`
	Prompt        string     `json:"prompt"`
	Choices       []string   `json:"choices"`
	CorrectChoice string     `json:"correctChoice"`
	Difficulty    string     `json:"difficulty"`
	CreatedAt     time.Time  `json:"createdAt"`
	CreatedBy     string     `json:"createdBy"`
	ApprovedAt    *time.Time `json:"approvedAt,omitempty"`
}

func newModerationView(q *entities.Question) moderationView {
	return moderationView{
		ID:            q.ID,
		SurahNumber:   q.SurahNumber,
		AyahNumber:    q.AyahNumber,
		Prompt:        q.Prompt,
		Choices:       q.Choices,
		CorrectChoice: q.CorrectChoice,
		Difficulty:    string(q.Difficulty),
		CreatedAt:     q.CreatedAt,
		CreatedBy:     q.CreatedBy,
		ApprovedAt:    q.ApprovedAt,
	}
}
