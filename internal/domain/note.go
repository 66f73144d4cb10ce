package domain

import "time"

// Note belongs to exactly one Profile.
type Note struct {
	ID        string
	ProfileID string
	Title     string
	Content   string
	Category  string
	CreatedAt time.Time
}
