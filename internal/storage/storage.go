package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/hongminglow/barbershop-users/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

var (
	// ErrDuplicateEmail is a uniqueness conflict on users.email.
	ErrDuplicateEmail = fmt.Errorf("email: %w", ErrAlreadyExists)
	// ErrDuplicateUsername is a uniqueness conflict on users.username.
	ErrDuplicateUsername = fmt.Errorf("username: %w", ErrAlreadyExists)
)

// Page bounds a listing query.
type Page struct {
	Offset int
	Limit  int
}

// UserStore captures persistence operations needed by the user service.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByID(ctx context.Context, id int64) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	ListUsers(ctx context.Context, page Page) ([]models.User, error)
	ListBarbers(ctx context.Context, page Page) ([]models.User, error)
	UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (models.User, error)
	DeleteUser(ctx context.Context, id int64) error
	Close()
}

// UserColumns is the column list every store selects, in scan order.
const UserColumns = `id, email, username, first_name, last_name, phone_number, hashed_password, is_active, is_barber, created_at, updated_at`
