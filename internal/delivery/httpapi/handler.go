package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hifzhub/quran-quiz-api/internal/infra/postgres/repository"
	"github.com/hifzhub/quran-quiz-api/internal/service"
)

// Handler wires the quiz engine services to HTTP routes.
type Handler struct {
	selector  *service.SelectorService
	sessions  *service.SessionService
	streaks   *service.StreakService
	questions service.QuestionRepository
	attempts  service.AttemptRepository
	logger    *zap.Logger
}

// NewHandler creates an HTTP handler over the quiz services.
func NewHandler(
	selector *service.SelectorService,
	sessions *service.SessionService,
	streaks *service.StreakService,
	questions service.QuestionRepository,
	attempts service.AttemptRepository,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		selector:  selector,
		sessions:  sessions,
		streaks:   streaks,
		questions: questions,
		attempts:  attempts,
		logger:    logger,
	}
}

// Router builds the gin engine with all routes registered.
func (h *Handler) Router(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "X-User-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		v1.GET("/quiz/daily", h.getDailyQuiz)
		v1.POST("/quiz/sessions", h.startSession)
		v1.GET("/quiz/sessions/:id", h.getSession)
		v1.POST("/quiz/sessions/:id/answers", h.recordAnswer)
		v1.POST("/quiz/sessions/:id/complete", h.completeSession)
		v1.GET("/streak", h.getStreak)
		v1.GET("/stats", h.getStats)

		v1.GET("/moderation/questions", h.listPendingQuestions)
		v1.POST("/moderation/questions/:id/approve", h.approveQuestion)
	}

	return r
}

// userID extracts the authenticated user from the X-User-ID header, set by
// the auth middleware in front of this service.
func userID(c *gin.Context) (string, bool) {
	id := c.GetHeader("X-User-ID")
	if id == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user ID is required"})
		return "", false
	}
	return id, true
}

// respondError translates service and repository errors into HTTP statuses.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrQuizNotFound),
		errors.Is(err, repository.ErrSessionNotFound),
		errors.Is(err, repository.ErrQuestionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidSessionState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
