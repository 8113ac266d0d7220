package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const defaultPendingLimit = 50

// listPendingQuestions returns staged questions awaiting moderation.
func (h *Handler) listPendingQuestions(c *gin.Context) {
	limit := defaultPendingLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	questions, err := h.questions.ListPending(c.Request.Context(), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	views := make([]moderationView, 0, len(questions))
	for _, q := range questions {
		views = append(views, newModerationView(q))
	}

	c.JSON(http.StatusOK, gin.H{"questions": views})
}

// approveQuestion makes a staged question eligible for quiz selection.
func (h *Handler) approveQuestion(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid question id"})
		return
	}

	if err := h.questions.Approve(c.Request.Context(), id, time.Now()); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"approved": true})
}
