// Package service implements the user account operations on top of the
// store, the password hasher and the token manager.
package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	emailaddress "github.com/mcnijman/go-emailaddress"

	"github.com/hongminglow/barbershop-users/internal/apperr"
	"github.com/hongminglow/barbershop-users/internal/auth"
	"github.com/hongminglow/barbershop-users/internal/logging"
	"github.com/hongminglow/barbershop-users/internal/models"
	"github.com/hongminglow/barbershop-users/internal/models/dto"
	"github.com/hongminglow/barbershop-users/internal/storage"
)

const (
	// MinPasswordLength is counted in characters, not bytes.
	MinPasswordLength = 6

	DefaultPageLimit = 100
)

// UserService registers, authenticates and manages user accounts.
type UserService struct {
	store     storage.UserStore
	hasher    *auth.PasswordHasher
	tokens    *auth.TokenManager
	log       logging.Logger
	dummyHash string
}

// NewUserService wires the service dependencies.
func NewUserService(store storage.UserStore, hasher *auth.PasswordHasher, tokens *auth.TokenManager, log logging.Logger) (*UserService, error) {
	// Compared against when the email is unknown so both login failures cost a bcrypt round.
	dummy, err := hasher.Hash("not-a-real-password")
	if err != nil {
		return nil, err
	}
	return &UserService{
		store:     store,
		hasher:    hasher,
		tokens:    tokens,
		log:       log.With("component", "user_service"),
		dummyHash: dummy,
	}, nil
}

// Register validates the payload and creates the account.
func (s *UserService) Register(ctx context.Context, req dto.RegisterRequest) (models.User, error) {
	email := strings.TrimSpace(req.Email)
	username := strings.TrimSpace(req.Username)
	s.log.Info(ctx, "creating new user", "email", email)

	if err := validateEmail(email); err != nil {
		return models.User{}, err
	}
	if username == "" {
		return models.User{}, apperr.Validation("username", "username is required")
	}
	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return models.User{}, err
	}

	created, err := s.store.CreateUser(ctx, models.User{
		Email:        email,
		Username:     username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: hash,
		IsActive:     true,
		IsBarber:     req.IsBarber,
	})
	if err != nil {
		if conflict := conflictError(err); conflict != nil {
			s.log.Warn(ctx, "registration conflict", "email", email, "username", username, "field", conflict.Field)
			return models.User{}, conflict
		}
		s.log.Error(ctx, "create user failed", "error", err)
		return models.User{}, apperr.Internal(err)
	}

	s.log.Info(ctx, "created user", "user_id", created.ID)
	return created, nil
}

// Login checks the credentials and returns a signed access token. Unknown
// emails and wrong passwords fail identically.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	s.log.Info(ctx, "login attempt", "email", email)

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			_, _ = s.hasher.Verify(password, s.dummyHash)
			s.log.Warn(ctx, "failed login attempt", "email", email)
			return "", apperr.InvalidCredentials()
		}
		s.log.Error(ctx, "login lookup failed", "error", err)
		return "", apperr.Internal(err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		s.log.Error(ctx, "stored password hash unreadable", "user_id", user.ID, "error", err)
		return "", apperr.Internal(err)
	}
	if !ok {
		s.log.Warn(ctx, "failed login attempt", "email", email)
		return "", apperr.InvalidCredentials()
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return "", apperr.Internal(err)
	}
	s.log.Info(ctx, "successful login", "user_id", user.ID)
	return token, nil
}

// ListUsers returns a page of all users.
func (s *UserService) ListUsers(ctx context.Context, page storage.Page) ([]models.User, error) {
	s.log.Info(ctx, "listing users", "skip", page.Offset, "limit", page.Limit)
	return s.list(ctx, page, s.store.ListUsers)
}

// ListBarbers returns a page of users flagged as barbers.
func (s *UserService) ListBarbers(ctx context.Context, page storage.Page) ([]models.User, error) {
	s.log.Info(ctx, "listing barbers", "skip", page.Offset, "limit", page.Limit)
	return s.list(ctx, page, s.store.ListBarbers)
}

func (s *UserService) list(ctx context.Context, page storage.Page, fetch func(context.Context, storage.Page) ([]models.User, error)) ([]models.User, error) {
	if err := validatePage(page); err != nil {
		return nil, err
	}
	users, err := fetch(ctx, page)
	if err != nil {
		s.log.Error(ctx, "list users failed", "error", err)
		return nil, apperr.Internal(err)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// GetUser returns the user with the given id.
func (s *UserService) GetUser(ctx context.Context, id int64) (models.User, error) {
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.log.Warn(ctx, "user not found", "user_id", id)
			return models.User{}, apperr.NotFound("User not found")
		}
		s.log.Error(ctx, "get user failed", "user_id", id, "error", err)
		return models.User{}, apperr.Internal(err)
	}
	return user, nil
}

// UpdateUser applies req to the target. A missing target is reported before
// the permission check.
func (s *UserService) UpdateUser(ctx context.Context, actor models.User, id int64, req dto.UpdateUserRequest) (models.User, error) {
	s.log.Info(ctx, "updating user", "user_id", id, "actor_id", actor.ID)

	if _, err := s.GetUser(ctx, id); err != nil {
		return models.User{}, err
	}
	if !models.CanModify(actor, id) {
		s.log.Warn(ctx, "update without permission", "user_id", id, "actor_id", actor.ID)
		return models.User{}, apperr.Forbidden()
	}

	patch, err := s.buildPatch(req)
	if err != nil {
		return models.User{}, err
	}

	updated, err := s.store.UpdateUser(ctx, id, patch)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, apperr.NotFound("User not found")
		}
		if conflict := conflictError(err); conflict != nil {
			return models.User{}, conflict
		}
		s.log.Error(ctx, "update user failed", "user_id", id, "error", err)
		return models.User{}, apperr.Internal(err)
	}

	s.log.Info(ctx, "updated user", "user_id", id)
	return updated, nil
}

// DeleteUser hard-deletes the target. Only barbers may delete.
func (s *UserService) DeleteUser(ctx context.Context, actor models.User, id int64) error {
	s.log.Info(ctx, "deleting user", "user_id", id, "actor_id", actor.ID)

	if !models.CanDelete(actor) {
		return apperr.Forbidden()
	}
	if err := s.store.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.log.Warn(ctx, "user not found for deletion", "user_id", id)
			return apperr.NotFound("User not found")
		}
		s.log.Error(ctx, "delete user failed", "user_id", id, "error", err)
		return apperr.Internal(err)
	}

	s.log.Info(ctx, "deleted user", "user_id", id)
	return nil
}

func (s *UserService) buildPatch(req dto.UpdateUserRequest) (models.UserPatch, error) {
	patch := models.UserPatch{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
	}

	if email, ok := req.Email.Get(); ok {
		if req.Email.IsNull() {
			return models.UserPatch{}, apperr.Validation("email", "email cannot be null")
		}
		email = strings.TrimSpace(email)
		if err := validateEmail(email); err != nil {
			return models.UserPatch{}, err
		}
		patch.Email = models.Some(email)
	}
	if username, ok := req.Username.Get(); ok {
		username = strings.TrimSpace(username)
		if username == "" {
			return models.UserPatch{}, apperr.Validation("username", "username is required")
		}
		patch.Username = models.Some(username)
	}
	if password, ok := req.Password.Get(); ok {
		if req.Password.IsNull() {
			return models.UserPatch{}, apperr.Validation("password", "password cannot be null")
		}
		hash, err := s.hashPassword(password)
		if err != nil {
			return models.UserPatch{}, err
		}
		patch.PasswordHash = models.Some(hash)
	}
	if req.IsActive.IsNull() {
		return models.UserPatch{}, apperr.Validation("is_active", "is_active cannot be null")
	}
	patch.IsActive = req.IsActive
	if req.IsBarber.IsNull() {
		return models.UserPatch{}, apperr.Validation("is_barber", "is_barber cannot be null")
	}
	patch.IsBarber = req.IsBarber

	return patch, nil
}

func (s *UserService) hashPassword(password string) (string, error) {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return "", apperr.Validation("password", "password must be at least 6 characters")
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return "", apperr.Validation("password", "password must be at most 72 bytes")
		}
		return "", apperr.Internal(err)
	}
	return hash, nil
}

func validateEmail(email string) error {
	if email == "" {
		return apperr.Validation("email", "email is required")
	}
	if _, err := emailaddress.Parse(email); err != nil {
		return apperr.Validation("email", "value is not a valid email address")
	}
	return nil
}

func validatePage(page storage.Page) error {
	if page.Offset < 0 {
		return apperr.Validation("skip", "skip must not be negative")
	}
	if page.Limit < 0 {
		return apperr.Validation("limit", "limit must not be negative")
	}
	return nil
}

func conflictError(err error) *apperr.Error {
	switch {
	case errors.Is(err, storage.ErrDuplicateEmail):
		return apperr.Conflict("email", "Email already registered", err)
	case errors.Is(err, storage.ErrDuplicateUsername):
		return apperr.Conflict("username", "Username already taken", err)
	case errors.Is(err, storage.ErrAlreadyExists):
		return apperr.Conflict("", "User already exists", err)
	default:
		return nil
	}
}
