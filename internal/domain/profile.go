package domain

import "time"

// Profile is the mutable per-user aggregate, owned by exactly one User and
// created atomically with it at registration.
type Profile struct {
	ID        string
	UserID    string
	Name      string
	Avatar    string
	CreatedAt time.Time

	// Notes and Calendar are populated when the full graph is loaded,
	// ordered by creation and date respectively.
	Notes    []Note
	Calendar []CalendarEntry
}
