package repository

import (
	"context"

	"github.com/iguajardo/serenity-api/internal/domain"
)

// UserRepository persists users and their owned profiles.
type UserRepository interface {
	// CreateWithProfile inserts the user and its profile in one transaction.
	// Returns ErrConflict when username or email is already taken.
	CreateWithProfile(ctx context.Context, user *domain.User, profile *domain.Profile) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetGraph loads the user with profile, notes and calendar attached.
	GetGraph(ctx context.Context, id string) (*domain.User, error)
	// ListGraphs returns every user with their full graphs attached.
	ListGraphs(ctx context.Context) ([]domain.User, error)
	SetConfirmedEmail(ctx context.Context, id string) error
	SetPasswordHash(ctx context.Context, id string, hash []byte) error
}

// ProfileRepository manages the per-user profile aggregate.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*domain.Profile, error)
	UpdateName(ctx context.Context, profileID, name string) error
}

// NoteRepository persists notes owned by profiles.
type NoteRepository interface {
	Create(ctx context.Context, note *domain.Note) error
	// DeleteOwned removes the note only when it belongs to the given
	// profile; unknown or foreign ids are a no-op.
	DeleteOwned(ctx context.Context, noteID, profileID string) error
}

// CalendarRepository persists calendar entries owned by profiles.
type CalendarRepository interface {
	// Replace atomically swaps the profile's whole collection for entries.
	Replace(ctx context.Context, profileID string, entries []domain.CalendarEntry) error
}
