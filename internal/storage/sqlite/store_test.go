package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/barbershop-users/internal/models"
	"github.com/hongminglow/barbershop-users/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewUserStore(context.Background(), filepath.Join(t.TempDir(), "data", "users.db"))
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func strPtr(s string) *string { return &s }

func newUser(name string, barber bool) models.User {
	return models.User{
		Email:        name + "@example.com",
		Username:     name,
		FirstName:    strPtr("First " + name),
		PasswordHash: "$2a$04$hash-" + name,
		IsActive:     true,
		IsBarber:     barber,
	}
}

func TestCreateAndFind(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateUser(ctx, newUser("alice", false))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "alice@example.com", created.Email)
	assert.Equal(t, "First alice", *created.FirstName)
	assert.Nil(t, created.LastName)
	assert.True(t, created.IsActive)
	assert.False(t, created.IsBarber)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Nil(t, created.UpdatedAt)

	byID, err := s.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, byID)

	byEmail, err := s.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byUsername, err := s.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byUsername.ID)
}

func TestFindMissing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.FindByID(ctx, 999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.FindByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCreateDuplicates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, newUser("alice", false))
	require.NoError(t, err)

	dupEmail := newUser("other", false)
	dupEmail.Email = "alice@example.com"
	_, err = s.CreateUser(ctx, dupEmail)
	assert.ErrorIs(t, err, storage.ErrDuplicateEmail)
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	dupUsername := newUser("alice", false)
	dupUsername.Email = "fresh@example.com"
	_, err = s.CreateUser(ctx, dupUsername)
	assert.ErrorIs(t, err, storage.ErrDuplicateUsername)
}

func TestConcurrentCreateSameEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	const workers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u := newUser(fmt.Sprintf("racer%d", i), false)
			u.Email = "race@example.com"
			_, err := s.CreateUser(ctx, u)
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, storage.ErrDuplicateEmail):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, conflicts)
}

func TestListAndListBarbers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := s.CreateUser(ctx, newUser(fmt.Sprintf("user%d", i), i%2 == 0))
		require.NoError(t, err)
	}

	all, err := s.ListUsers(ctx, storage.Page{Offset: 0, Limit: 100})
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID, all[i].ID)
	}

	window, err := s.ListUsers(ctx, storage.Page{Offset: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, window, 2)
	assert.Equal(t, "user1", window[0].Username)
	assert.Equal(t, "user2", window[1].Username)

	barbers, err := s.ListBarbers(ctx, storage.Page{Offset: 0, Limit: 100})
	require.NoError(t, err)
	require.Len(t, barbers, 3)
	for _, b := range barbers {
		assert.True(t, b.IsBarber)
	}

	limited, err := s.ListBarbers(ctx, storage.Page{Offset: 0, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	empty, err := s.ListBarbers(ctx, storage.Page{Offset: 10, Limit: 2})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestUpdatePartial(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateUser(ctx, newUser("alice", false))
	require.NoError(t, err)

	updated, err := s.UpdateUser(ctx, created.ID, models.UserPatch{
		LastName:  models.Some(strPtr("Liddell")),
		FirstName: models.Some[*string](nil),
	})
	require.NoError(t, err)

	assert.Equal(t, created.Email, updated.Email)
	assert.Equal(t, created.Username, updated.Username)
	assert.Equal(t, created.PasswordHash, updated.PasswordHash)
	assert.Nil(t, updated.FirstName)
	require.NotNil(t, updated.LastName)
	assert.Equal(t, "Liddell", *updated.LastName)
	require.NotNil(t, updated.UpdatedAt)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
}

func TestUpdateEmptyPatchBumpsTimestamp(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateUser(ctx, newUser("alice", false))
	require.NoError(t, err)

	updated, err := s.UpdateUser(ctx, created.ID, models.UserPatch{})
	require.NoError(t, err)
	assert.NotNil(t, updated.UpdatedAt)
	assert.Equal(t, created.Email, updated.Email)
}

func TestUpdateFlagsAndConflicts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice, err := s.CreateUser(ctx, newUser("alice", false))
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, newUser("bob", false))
	require.NoError(t, err)

	updated, err := s.UpdateUser(ctx, alice.ID, models.UserPatch{
		IsBarber: models.Some(true),
		IsActive: models.Some(false),
	})
	require.NoError(t, err)
	assert.True(t, updated.IsBarber)
	assert.False(t, updated.IsActive)

	_, err = s.UpdateUser(ctx, alice.ID, models.UserPatch{Email: models.Some("bob@example.com")})
	assert.ErrorIs(t, err, storage.ErrDuplicateEmail)

	_, err = s.UpdateUser(ctx, alice.ID, models.UserPatch{Username: models.Some("bob")})
	assert.ErrorIs(t, err, storage.ErrDuplicateUsername)

	_, err = s.UpdateUser(ctx, 999, models.UserPatch{Username: models.Some("ghost")})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateUser(ctx, newUser("alice", false))
	require.NoError(t, err)

	require.NoError(t, s.DeleteUser(ctx, created.ID))

	_, err = s.FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, s.DeleteUser(ctx, created.ID), storage.ErrNotFound)

	// hard delete frees the unique values
	_, err = s.CreateUser(ctx, newUser("alice", false))
	assert.NoError(t, err)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.db")
	ctx := context.Background()

	s, err := NewUserStore(ctx, path)
	require.NoError(t, err)
	created, err := s.CreateUser(ctx, newUser("alice", true))
	require.NoError(t, err)
	s.Close()

	s, err = NewUserStore(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Email, got.Email)
	assert.True(t, got.IsBarber)
}
