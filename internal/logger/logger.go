package logger

import (
	"go.uber.org/zap"

	"github.com/hifzhub/quran-quiz-api/internal/config"
)

// New builds a zap logger appropriate for the configured environment.
func New(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Env == "production" || cfg.Env == "prod" {
		return zap.NewProduction()
	}

	return zap.NewDevelopment()
}
