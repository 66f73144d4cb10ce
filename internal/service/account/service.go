// Package account implements the authenticated resource operations over a
// user's profile, notes and calendar.
package account

import (
	"context"
	"errors"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/iguajardo/serenity-api/internal/domain"
	"github.com/iguajardo/serenity-api/internal/repository"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidInput = errors.New("missing required fields")
)

// Service orchestrates profile, note and calendar operations.
type Service struct {
	users    repository.UserRepository
	profiles repository.ProfileRepository
	notes    repository.NoteRepository
	calendar repository.CalendarRepository
	logger   *slog.Logger
}

// New returns an account service.
func New(users repository.UserRepository, profiles repository.ProfileRepository, notes repository.NoteRepository, calendar repository.CalendarRepository, logger *slog.Logger) Service {
	return Service{users: users, profiles: profiles, notes: notes, calendar: calendar, logger: logger}
}

// Get loads the caller's full user graph.
func (s Service) Get(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetGraph(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateName sets the caller's display name and returns the updated graph.
func (s Service) UpdateName(ctx context.Context, userID, name string) (*domain.User, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if err := s.profiles.UpdateName(ctx, profile.ID, name); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// NoteInput carries note creation attributes.
type NoteInput struct {
	Title    string
	Content  string
	Category string
}

// CreateNote attaches a new note to the caller's profile.
func (s Service) CreateNote(ctx context.Context, userID string, in NoteInput) (*domain.Note, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	note := &domain.Note{
		ID:        uuid.NewString(),
		ProfileID: profile.ID,
		Title:     in.Title,
		Content:   in.Content,
		Category:  in.Category,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.notes.Create(ctx, note); err != nil {
		return nil, err
	}
	s.logger.Info("note created", "user_id", userID, "note_id", note.ID)
	return note, nil
}

// DeleteNote removes a note from the caller's profile and returns the
// refreshed graph. Ids that do not belong to the caller's profile are a
// silent no-op; other users' notes are unreachable from here.
func (s Service) DeleteNote(ctx context.Context, userID, noteID string) (*domain.User, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if err := s.notes.DeleteOwned(ctx, noteID, profile.ID); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// SaveCalendar replaces the caller's whole calendar with entries built from
// the date → category mapping.
func (s Service) SaveCalendar(ctx context.Context, userID string, dates map[string]string) error {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	entries := make([]domain.CalendarEntry, 0, len(dates))
	for fecha, category := range dates {
		entries = append(entries, domain.CalendarEntry{
			ProfileID: profile.ID,
			Date:      fecha,
			Category:  category,
		})
	}
	if err := s.calendar.Replace(ctx, profile.ID, entries); err != nil {
		return err
	}
	s.logger.Info("calendar replaced", "user_id", userID, "entries", len(entries))
	return nil
}

// ListUsers returns every user with their graphs. No pagination; this is a
// coarse administrative listing.
func (s Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.ListGraphs(ctx)
}
