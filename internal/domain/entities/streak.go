package entities

import "time"

// Streak is a per-user counter of consecutive days with a perfect quiz completion.
// Longest never drops below Current.
type Streak struct {
	UserID    string
	Current   int
	Longest   int
	UpdatedAt time.Time
}
