package httpx

import (
	"context"
	"sync"

	"github.com/iguajardo/serenity-api/internal/domain"
	"github.com/iguajardo/serenity-api/internal/repository"
)

// memRepo is an in-memory implementation of the repository interfaces used
// to exercise the full router without a database.
type memRepo struct {
	mu       sync.Mutex
	users    map[string]*domain.User           // keyed by user id
	profiles map[string]*domain.Profile        // keyed by user id
	notes    map[string][]domain.Note          // keyed by profile id
	calendar map[string][]domain.CalendarEntry // keyed by profile id
	order    []string
}

func newMemRepo() *memRepo {
	return &memRepo{
		users:    make(map[string]*domain.User),
		profiles: make(map[string]*domain.Profile),
		notes:    make(map[string][]domain.Note),
		calendar: make(map[string][]domain.CalendarEntry),
	}
}

func (m *memRepo) CreateWithProfile(_ context.Context, user *domain.User, profile *domain.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return repository.ErrConflict
		}
	}
	u := *user
	p := *profile
	m.users[u.ID] = &u
	m.profiles[u.ID] = &p
	m.order = append(m.order, u.ID)
	return nil
}

func (m *memRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *memRepo) GetGraph(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.graphLocked(id)
}

func (m *memRepo) graphLocked(id string) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p, ok := m.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	user := *u
	profile := *p
	profile.Notes = append([]domain.Note(nil), m.notes[profile.ID]...)
	profile.Calendar = append([]domain.CalendarEntry(nil), m.calendar[profile.ID]...)
	user.Profile = &profile
	return &user, nil
}

func (m *memRepo) ListGraphs(_ context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := make([]domain.User, 0, len(m.order))
	for _, id := range m.order {
		u, err := m.graphLocked(id)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, nil
}

func (m *memRepo) SetConfirmedEmail(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.ConfirmedEmail = true
	return nil
}

func (m *memRepo) SetPasswordHash(_ context.Context, id string, hash []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *memRepo) GetByUserID(_ context.Context, userID string) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *memRepo) UpdateName(_ context.Context, profileID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.profiles {
		if p.ID == profileID {
			p.Name = name
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memRepo) Create(_ context.Context, note *domain.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes[note.ProfileID] = append(m.notes[note.ProfileID], *note)
	return nil
}

func (m *memRepo) DeleteOwned(_ context.Context, noteID, profileID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.notes[profileID][:0]
	for _, n := range m.notes[profileID] {
		if n.ID != noteID {
			kept = append(kept, n)
		}
	}
	m.notes[profileID] = kept
	return nil
}

func (m *memRepo) Replace(_ context.Context, profileID string, entries []domain.CalendarEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calendar[profileID] = append([]domain.CalendarEntry(nil), entries...)
	return nil
}
