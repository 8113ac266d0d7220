package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hifzhub/quran-quiz-api/internal/domain/entities"
)

// getDailyQuiz resolves today's quiz (or the quiz for ?date=YYYY-MM-DD) and
// returns it with its questions, correct answers stripped.
func (h *Handler) getDailyQuiz(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = time.Now().UTC().Format(entities.DateLayout)
	}

	quiz, err := h.selector.Resolve(c.Request.Context(), date)
	if err != nil {
		h.respondError(c, err)
		return
	}

	questions, err := h.selector.Questions(c.Request.Context(), quiz)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newDailyQuizResponse(quiz, questions))
}

func (h *Handler) startSession(c *gin.Context) {
	user, ok := userID(c)
	if !ok {
		return
	}

	var req struct {
		DailyQuizID int64  `json:"dailyQuizId" binding:"required"`
		Timezone    string `json:"timezone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Timezone == "" {
		req.Timezone = "UTC"
	}

	session, err := h.sessions.Start(c.Request.Context(), user, req.DailyQuizID, req.Timezone)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newSessionResponse(session))
}

func (h *Handler) getSession(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	session, err := h.sessions.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newSessionResponse(session))
}

func (h *Handler) recordAnswer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req struct {
		QuestionID     int64  `json:"questionId" binding:"required"`
		SelectedAnswer string `json:"selectedAnswer" binding:"required"`
		Advance        bool   `json:"advance"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	session, err := h.sessions.RecordAnswer(c.Request.Context(), id, req.QuestionID, req.SelectedAnswer, req.Advance)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, newSessionResponse(session))
}

func (h *Handler) completeSession(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	result, err := h.sessions.Complete(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) getStreak(c *gin.Context) {
	user, ok := userID(c)
	if !ok {
		return
	}

	streak, err := h.streaks.Get(c.Request.Context(), user)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"userId":    streak.UserID,
		"current":   streak.Current,
		"longest":   streak.Longest,
		"updatedAt": streak.UpdatedAt,
	})
}

// getStats returns lifetime answer statistics for the user's dashboard.
func (h *Handler) getStats(c *gin.Context) {
	user, ok := userID(c)
	if !ok {
		return
	}

	total, correct, err := h.attempts.CountCorrectByUser(c.Request.Context(), user)
	if err != nil {
		h.respondError(c, err)
		return
	}

	accuracy := 0
	if total > 0 {
		accuracy = correct * 100 / total
	}

	c.JSON(http.StatusOK, gin.H{
		"totalAnswers":   total,
		"correctAnswers": correct,
		"accuracy":       accuracy,
	})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return 0, false
	}
	return id, true
}
