package domain

// CalendarEntry maps a date key to a category for one Profile. The entire
// collection for a profile is replaced on each save, never merged.
type CalendarEntry struct {
	ProfileID string
	Date      string
	Category  string
}
