// Package sqlite is the embedded, file-backed user store. It is the default
// backend and the one used by tests.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/hongminglow/barbershop-users/internal/models"
	"github.com/hongminglow/barbershop-users/internal/storage"
	"github.com/hongminglow/barbershop-users/internal/storage/migrations"
)

var _ storage.UserStore = (*Store)(nil)

// Store persists users in a SQLite database file.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewUserStore opens (creating if needed) the database at path and applies
// pending migrations.
func NewUserStore(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && path != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection serialises writers and keeps :memory: databases alive.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

func (s *Store) migrate(ctx context.Context) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, s.db, migrations.SQLite())
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	query := `
		INSERT INTO users (email, username, first_name, last_name, phone_number, hashed_password, is_active, is_barber, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING ` + storage.UserColumns
	row := s.db.QueryRowContext(ctx, query,
		user.Email, user.Username, user.FirstName, user.LastName, user.PhoneNumber,
		user.PasswordHash, user.IsActive, user.IsBarber, s.now().UnixMicro())
	created, err := scanUser(row)
	if err != nil {
		return models.User{}, classify(err)
	}
	return created, nil
}

// FindByID fetches a user by primary key.
func (s *Store) FindByID(ctx context.Context, id int64) (models.User, error) {
	return s.findOne(ctx, "id", id)
}

// FindByEmail fetches a user by email address.
func (s *Store) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return s.findOne(ctx, "email", email)
}

// FindByUsername fetches a user by username.
func (s *Store) FindByUsername(ctx context.Context, username string) (models.User, error) {
	return s.findOne(ctx, "username", username)
}

func (s *Store) findOne(ctx context.Context, column string, value any) (models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s = ?`, storage.UserColumns, column)
	return scanUser(s.db.QueryRowContext(ctx, query, value))
}

// ListUsers returns a window of users in insertion order.
func (s *Store) ListUsers(ctx context.Context, page storage.Page) ([]models.User, error) {
	query := `SELECT ` + storage.UserColumns + ` FROM users ORDER BY id LIMIT ? OFFSET ?`
	return s.list(ctx, query, page.Limit, page.Offset)
}

// ListBarbers returns a window of users flagged as barbers.
func (s *Store) ListBarbers(ctx context.Context, page storage.Page) ([]models.User, error) {
	query := `SELECT ` + storage.UserColumns + ` FROM users WHERE is_barber = 1 ORDER BY id LIMIT ? OFFSET ?`
	return s.list(ctx, query, page.Limit, page.Offset)
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// UpdateUser assigns the present fields of patch and bumps updated_at.
func (s *Store) UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (models.User, error) {
	var (
		sets []string
		args []any
	)
	for _, a := range patch.Assignments() {
		sets = append(sets, a.Column+" = ?")
		args = append(args, a.Value)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, s.now().UnixMicro(), id)

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = ? RETURNING %s`,
		strings.Join(sets, ", "), storage.UserColumns)
	updated, err := scanUser(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return models.User{}, classify(err)
	}
	return updated, nil
}

// DeleteUser removes the row permanently.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

// Timestamps are stored as unix microseconds.
func scanUser(row scanner) (models.User, error) {
	var (
		user      models.User
		createdAt int64
		updatedAt sql.NullInt64
	)
	err := row.Scan(&user.ID, &user.Email, &user.Username, &user.FirstName, &user.LastName,
		&user.PhoneNumber, &user.PasswordHash, &user.IsActive, &user.IsBarber, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	user.CreatedAt = time.UnixMicro(createdAt).UTC()
	if updatedAt.Valid {
		t := time.UnixMicro(updatedAt.Int64).UTC()
		user.UpdatedAt = &t
	}
	return user, nil
}

// classify maps SQLite unique constraint failures onto the storage sentinels.
// The driver reports them as "UNIQUE constraint failed: users.<column>".
func classify(err error) error {
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return err
	}
	switch {
	case strings.Contains(msg, "users.email"):
		return storage.ErrDuplicateEmail
	case strings.Contains(msg, "users.username"):
		return storage.ErrDuplicateUsername
	default:
		return storage.ErrAlreadyExists
	}
}
