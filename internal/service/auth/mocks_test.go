package auth

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/iguajardo/serenity-api/internal/domain"
	"github.com/iguajardo/serenity-api/internal/repository"
	"github.com/iguajardo/serenity-api/pkg/config"
)

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() config.Config {
	return config.Config{
		JWTSecret:       "test-secret",
		SessionTokenTTL: 168 * time.Hour,
		EmailTokenTTL:   5 * time.Minute,
		PublicURL:       "http://api.test",
		ClientFrontURL:  "http://front.test",
	}
}

type userRepoMock struct {
	createFunc        func(ctx context.Context, user *domain.User, profile *domain.Profile) error
	getByUsernameFunc func(ctx context.Context, username string) (*domain.User, error)
	getByEmailFunc    func(ctx context.Context, email string) (*domain.User, error)
	getByIDFunc       func(ctx context.Context, id string) (*domain.User, error)
	getGraphFunc      func(ctx context.Context, id string) (*domain.User, error)
	listGraphsFunc    func(ctx context.Context) ([]domain.User, error)
	setConfirmedFunc  func(ctx context.Context, id string) error
	setPasswordFunc   func(ctx context.Context, id string, hash []byte) error
}

func (m *userRepoMock) CreateWithProfile(ctx context.Context, user *domain.User, profile *domain.Profile) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user, profile)
	}
	return nil
}

func (m *userRepoMock) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.getByUsernameFunc != nil {
		return m.getByUsernameFunc(ctx, username)
	}
	return nil, repository.ErrNotFound
}

func (m *userRepoMock) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getByEmailFunc != nil {
		return m.getByEmailFunc(ctx, email)
	}
	return nil, repository.ErrNotFound
}

func (m *userRepoMock) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *userRepoMock) GetGraph(ctx context.Context, id string) (*domain.User, error) {
	if m.getGraphFunc != nil {
		return m.getGraphFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *userRepoMock) ListGraphs(ctx context.Context) ([]domain.User, error) {
	if m.listGraphsFunc != nil {
		return m.listGraphsFunc(ctx)
	}
	return nil, nil
}

func (m *userRepoMock) SetConfirmedEmail(ctx context.Context, id string) error {
	if m.setConfirmedFunc != nil {
		return m.setConfirmedFunc(ctx, id)
	}
	return nil
}

func (m *userRepoMock) SetPasswordHash(ctx context.Context, id string, hash []byte) error {
	if m.setPasswordFunc != nil {
		return m.setPasswordFunc(ctx, id, hash)
	}
	return nil
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type mailerMock struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *mailerMock) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *mailerMock) last() (sentMail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMail{}, false
	}
	return m.sent[len(m.sent)-1], true
}
