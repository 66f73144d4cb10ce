package domain

import "time"

// User represents a registered account. PasswordHash never leaves the
// service boundary; serialization of users is handled at the HTTP layer
// and omits it.
type User struct {
	ID             string
	Username       string
	Email          string
	PasswordHash   []byte
	ConfirmedEmail bool
	CreatedAt      time.Time

	// Profile is populated when the full graph is loaded.
	Profile *Profile
}
