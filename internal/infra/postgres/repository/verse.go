package repository

import (
	"context"
	"fmt"

	"github.com/hifzhub/quran-quiz-api/internal/domain/entities"
	"github.com/hifzhub/quran-quiz-api/internal/infra/postgres"
)

// VerseRepository provides access to the verse catalog.
type VerseRepository struct {
	db postgres.DBTX
}

// NewVerseRepository creates a new VerseRepository.
func NewVerseRepository(db postgres.DBTX) *VerseRepository {
	return &VerseRepository{db: db}
}

// UnderCovered retrieves verses with fewer than target approved questions,
// least covered first. The generation scheduler uses this to decide where
// new content is needed.
func (r *VerseRepository) UnderCovered(ctx context.Context, target, limit int) ([]*entities.Verse, error) {
	query := `
		SELECT v.id, v.surah_number, v.ayah_number, v.text
		FROM verses v
		LEFT JOIN questions q
			ON q.surah_number = v.surah_number
			AND q.ayah_number = v.ayah_number
			AND q.approved_at IS NOT NULL
		GROUP BY v.id, v.surah_number, v.ayah_number, v.text
		HAVING COUNT(q.id) < $1
		ORDER BY COUNT(q.id), v.surah_number, v.ayah_number
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, target, limit)
	if err != nil {
		return nil, fmt.Errorf("under-covered verses: %w", err)
	}
	defer rows.Close()

	var verses []*entities.Verse
	for rows.Next() {
		var v entities.Verse
		if err := rows.Scan(&v.ID, &v.SurahNumber, &v.AyahNumber, &v.Text); err != nil {
			return nil, fmt.Errorf("scan verse: %w", err)
		}
		verses = append(verses, &v)
	}

	return verses, rows.Err()
}
