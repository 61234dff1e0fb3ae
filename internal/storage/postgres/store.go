package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/hongminglow/barbershop-users/internal/models"
	"github.com/hongminglow/barbershop-users/internal/storage"
	"github.com/hongminglow/barbershop-users/internal/storage/migrations"
)

// Ensure Store satisfies the storage.UserStore interface at compile time.
var _ storage.UserStore = (*Store)(nil)

const uniqueViolation = "23505"

// Store provides Postgres-backed persistence for users.
type Store struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewUserStore connects to databaseURL and applies pending migrations.
func NewUserStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool, now: func() time.Time { return time.Now().UTC() }}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) migrate(ctx context.Context) error {
	// The *sql.DB borrows connections from the pool and must not be closed.
	db := stdlib.OpenDBFromPool(s.pool)
	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.Postgres())
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
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + storage.UserColumns
	row := s.pool.QueryRow(ctx, query,
		user.Email, user.Username, user.FirstName, user.LastName, user.PhoneNumber,
		user.PasswordHash, user.IsActive, user.IsBarber, s.now())
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
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s = $1`, storage.UserColumns, column)
	return scanUser(s.pool.QueryRow(ctx, query, value))
}

// ListUsers returns a window of users in insertion order.
func (s *Store) ListUsers(ctx context.Context, page storage.Page) ([]models.User, error) {
	query := `SELECT ` + storage.UserColumns + ` FROM users ORDER BY id OFFSET $1 LIMIT $2`
	return s.list(ctx, query, page.Offset, page.Limit)
}

// ListBarbers returns a window of users flagged as barbers.
func (s *Store) ListBarbers(ctx context.Context, page storage.Page) ([]models.User, error) {
	query := `SELECT ` + storage.UserColumns + ` FROM users WHERE is_barber ORDER BY id OFFSET $1 LIMIT $2`
	return s.list(ctx, query, page.Offset, page.Limit)
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]models.User, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.User, error) {
		return scanUser(row)
	})
	if err != nil {
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
		args = append(args, a.Value)
		sets = append(sets, fmt.Sprintf("%s = $%d", a.Column, len(args)))
	}
	args = append(args, s.now())
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), storage.UserColumns)
	updated, err := scanUser(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return models.User{}, classify(err)
	}
	return updated, nil
}

// DeleteUser removes the row permanently.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Email, &user.Username, &user.FirstName, &user.LastName,
		&user.PhoneNumber, &user.PasswordHash, &user.IsActive, &user.IsBarber, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// classify maps unique violations onto the storage sentinels by constraint.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	switch {
	case strings.Contains(pgErr.ConstraintName, "email"):
		return storage.ErrDuplicateEmail
	case strings.Contains(pgErr.ConstraintName, "username"):
		return storage.ErrDuplicateUsername
	default:
		return storage.ErrAlreadyExists
	}
}
