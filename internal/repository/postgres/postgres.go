// Package postgres implements the repository interfaces on PostgreSQL
// through a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iguajardo/serenity-api/internal/domain"
	"github.com/iguajardo/serenity-api/internal/repository"
)

// Repository implements persistence interfaces on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// New constructs a Repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ensure Repository satisfies interfaces.
var (
	_ repository.UserRepository     = (*Repository)(nil)
	_ repository.ProfileRepository  = (*Repository)(nil)
	_ repository.NoteRepository     = (*Repository)(nil)
	_ repository.CalendarRepository = (*Repository)(nil)
)

const uniqueViolation = "23505"

func mapInsertErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return repository.ErrConflict
	}
	return err
}

// CreateWithProfile inserts a user and its profile in a single transaction.
func (r *Repository) CreateWithProfile(ctx context.Context, user *domain.User, profile *domain.Profile) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const insertUser = `INSERT INTO users (id, username, email, password_hash, confirmed_email, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := tx.Exec(ctx, insertUser, user.ID, user.Username, user.Email, user.PasswordHash, user.ConfirmedEmail, user.CreatedAt); err != nil {
		return mapInsertErr(err)
	}

	const insertProfile = `INSERT INTO profiles (id, user_id, display_name, avatar, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := tx.Exec(ctx, insertProfile, profile.ID, profile.UserID, profile.Name, profile.Avatar, profile.CreatedAt); err != nil {
		return mapInsertErr(err)
	}

	return tx.Commit(ctx)
}

const userColumns = `id, username, email, password_hash, confirmed_email, created_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.ConfirmedEmail, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByUsername fetches a user by username.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(r.pool.QueryRow(ctx, query, username))
}

// GetByEmail fetches a user by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

// GetByID retrieves a user by identifier.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

// GetGraph loads a user with profile, notes and calendar entries attached.
func (r *Repository) GetGraph(ctx context.Context, id string) (*domain.User, error) {
	user, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	profile, err := r.GetByUserID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.attachCollections(ctx, profile); err != nil {
		return nil, err
	}
	user.Profile = profile
	return user, nil
}

// ListGraphs returns all users with their graphs attached.
func (r *Repository) ListGraphs(ctx context.Context) ([]domain.User, error) {
	const query = `SELECT u.id, u.username, u.email, u.password_hash, u.confirmed_email, u.created_at,
			p.id, p.user_id, p.display_name, p.avatar, p.created_at
		FROM users u
		JOIN profiles p ON p.user_id = u.id
		ORDER BY u.created_at`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		var p domain.Profile
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.ConfirmedEmail, &u.CreatedAt,
			&p.ID, &p.UserID, &p.Name, &p.Avatar, &p.CreatedAt); err != nil {
			return nil, err
		}
		u.Profile = &p
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range users {
		if err := r.attachCollections(ctx, users[i].Profile); err != nil {
			return nil, err
		}
	}
	return users, nil
}

// SetConfirmedEmail marks the user's email address as verified.
func (r *Repository) SetConfirmedEmail(ctx context.Context, id string) error {
	const query = `UPDATE users SET confirmed_email = TRUE WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetPasswordHash stores a new password hash for the user.
func (r *Repository) SetPasswordHash(ctx context.Context, id string, hash []byte) error {
	const query = `UPDATE users SET password_hash = $2 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// GetByUserID fetches the profile owned by a user.
func (r *Repository) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	const query = `SELECT id, user_id, display_name, avatar, created_at FROM profiles WHERE user_id = $1`
	row := r.pool.QueryRow(ctx, query, userID)
	var p domain.Profile
	if err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Avatar, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// UpdateName sets the profile display name.
func (r *Repository) UpdateName(ctx context.Context, profileID, name string) error {
	const query = `UPDATE profiles SET display_name = $2 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, profileID, name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Create inserts a note.
func (r *Repository) Create(ctx context.Context, note *domain.Note) error {
	const query = `INSERT INTO notes (id, profile_id, title, content, category, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, query, note.ID, note.ProfileID, note.Title, note.Content, note.Category, note.CreatedAt)
	return err
}

// DeleteOwned removes a note scoped to the owning profile. Unknown or
// foreign note ids delete zero rows and return nil.
func (r *Repository) DeleteOwned(ctx context.Context, noteID, profileID string) error {
	const query = `DELETE FROM notes WHERE id = $1 AND profile_id = $2`
	_, err := r.pool.Exec(ctx, query, noteID, profileID)
	return err
}

// Replace swaps the profile's calendar collection inside one transaction.
func (r *Repository) Replace(ctx context.Context, profileID string, entries []domain.CalendarEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM calendar_entries WHERE profile_id = $1`, profileID); err != nil {
		return err
	}
	const insert = `INSERT INTO calendar_entries (profile_id, fecha, category) VALUES ($1, $2, $3)`
	for _, e := range entries {
		if _, err := tx.Exec(ctx, insert, profileID, e.Date, e.Category); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *Repository) attachCollections(ctx context.Context, profile *domain.Profile) error {
	const notesQuery = `SELECT id, profile_id, title, content, category, created_at
		FROM notes WHERE profile_id = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, notesQuery, profile.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	profile.Notes = nil
	for rows.Next() {
		var n domain.Note
		if err := rows.Scan(&n.ID, &n.ProfileID, &n.Title, &n.Content, &n.Category, &n.CreatedAt); err != nil {
			return err
		}
		profile.Notes = append(profile.Notes, n)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	const calendarQuery = `SELECT profile_id, fecha, category
		FROM calendar_entries WHERE profile_id = $1 ORDER BY fecha`
	calRows, err := r.pool.Query(ctx, calendarQuery, profile.ID)
	if err != nil {
		return err
	}
	defer calRows.Close()
	profile.Calendar = nil
	for calRows.Next() {
		var e domain.CalendarEntry
		if err := calRows.Scan(&e.ProfileID, &e.Date, &e.Category); err != nil {
			return err
		}
		profile.Calendar = append(profile.Calendar, e)
	}
	return calRows.Err()
}
