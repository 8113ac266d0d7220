package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hifzhub/quran-quiz-api/internal/domain/entities"
	"github.com/hifzhub/quran-quiz-api/internal/infra/postgres"
)

var ErrStreakNotFound = errors.New("streak not found")

// StreakRepository provides access to per-user streak counters.
type StreakRepository struct {
	db postgres.DBTX
}

// NewStreakRepository creates a new StreakRepository.
func NewStreakRepository(db postgres.DBTX) *StreakRepository {
	return &StreakRepository{db: db}
}

// GetByUser retrieves the streak record for a user.
func (r *StreakRepository) GetByUser(ctx context.Context, userID string) (*entities.Streak, error) {
	query := `
		SELECT user_id, current, longest, updated_at
		FROM streaks
		WHERE user_id = $1
	`

	var s entities.Streak
	err := r.db.QueryRow(ctx, query, userID).Scan(&s.UserID, &s.Current, &s.Longest, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStreakNotFound
		}
		return nil, fmt.Errorf("get streak: %w", err)
	}

	return &s, nil
}

// UpsertPerfect applies a perfect-completion transition as a single
// server-side upsert, so two devices completing simultaneously cannot lose
// an update. When continues is true the current streak increments, otherwise
// it restarts at 1. Longest never decreases.
func (r *StreakRepository) UpsertPerfect(ctx context.Context, userID string, continues bool) (*entities.Streak, error) {
	query := `
		INSERT INTO streaks (user_id, current, longest, updated_at)
		VALUES ($1, 1, 1, now())
		ON CONFLICT (user_id) DO UPDATE SET
			current = CASE WHEN $2 THEN streaks.current + 1 ELSE 1 END,
			longest = GREATEST(streaks.longest, CASE WHEN $2 THEN streaks.current + 1 ELSE 1 END),
			updated_at = now()
		RETURNING user_id, current, longest, updated_at
	`

	var s entities.Streak
	err := r.db.QueryRow(ctx, query, userID, continues).Scan(&s.UserID, &s.Current, &s.Longest, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert streak: %w", err)
	}

	return &s, nil
}

// ResetCurrent forces the current streak to zero, leaving longest untouched.
func (r *StreakRepository) ResetCurrent(ctx context.Context, userID string) (*entities.Streak, error) {
	query := `
		INSERT INTO streaks (user_id, current, longest, updated_at)
		VALUES ($1, 0, 0, now())
		ON CONFLICT (user_id) DO UPDATE SET
			current = 0,
			updated_at = now()
		RETURNING user_id, current, longest, updated_at
	`

	var s entities.Streak
	err := r.db.QueryRow(ctx, query, userID).Scan(&s.UserID, &s.Current, &s.Longest, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("reset streak: %w", err)
	}

	return &s, nil
}
