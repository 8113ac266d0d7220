package entities

// Verse is a single ayah of the Quran, used as the anchor for question
// generation and as the coverage unit for the generation scheduler.
type Verse struct {
	ID          int64
	SurahNumber int // 1-114
	AyahNumber  int
	Text        string
}
