package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/barbershop-users/internal/apperr"
	"github.com/hongminglow/barbershop-users/internal/auth"
	"github.com/hongminglow/barbershop-users/internal/http/respond"
	"github.com/hongminglow/barbershop-users/internal/logging"
	"github.com/hongminglow/barbershop-users/internal/models"
	"github.com/hongminglow/barbershop-users/internal/storage"
)

type mapFinder map[int64]models.User

func (m mapFinder) FindByID(_ context.Context, id int64) (models.User, error) {
	u, ok := m[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return u, nil
}

type failingFinder struct{}

func (failingFinder) FindByID(context.Context, int64) (models.User, error) {
	return models.User{}, errors.New("db down")
}

type authFixture struct {
	tokens *auth.TokenManager
	authn  *Authenticator
}

func newAuthFixture(users UserFinder) authFixture {
	tokens := auth.NewTokenManager("secret", "test", time.Minute)
	log := logging.Nop()
	return authFixture{
		tokens: tokens,
		authn:  NewAuthenticator(tokens, users, respond.New(log), log),
	}
}

func (f authFixture) bearer(t *testing.T, id int64) string {
	t.Helper()
	token, err := f.tokens.Generate(id)
	require.NoError(t, err)
	return "Bearer " + token
}

var testUsers = mapFinder{
	1: {ID: 1, Email: "a@x.com", IsActive: true},
	2: {ID: 2, Email: "b@x.com", IsActive: true, IsBarber: true},
	3: {ID: 3, Email: "c@x.com", IsActive: false},
}

func TestResolve(t *testing.T) {
	f := newAuthFixture(testUsers)
	ctx := context.Background()

	user, err := f.authn.Resolve(ctx, f.bearer(t, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)

	lower, err := f.authn.Resolve(ctx, "bearer "+f.bearer(t, 2)[len("Bearer "):])
	require.NoError(t, err)
	assert.Equal(t, int64(2), lower.ID)

	tests := []struct {
		name   string
		header string
		kind   apperr.Kind
	}{
		{"missing header", "", apperr.KindUnauthenticated},
		{"wrong scheme", "Basic abc", apperr.KindUnauthenticated},
		{"empty token", "Bearer ", apperr.KindUnauthenticated},
		{"garbage token", "Bearer abc.def.ghi", apperr.KindUnauthenticated},
		{"unknown user", f.bearer(t, 99), apperr.KindUnauthenticated},
		{"inactive user", f.bearer(t, 3), apperr.KindInactiveUser},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.authn.Resolve(ctx, tc.header)
			assert.True(t, apperr.IsKind(err, tc.kind), "got %v", err)
		})
	}
}

func TestResolveStoreFailureIsInternal(t *testing.T) {
	f := newAuthFixture(failingFinder{})
	_, err := f.authn.Resolve(context.Background(), f.bearer(t, 1))
	assert.True(t, apperr.IsKind(err, apperr.KindInternal))
}

func TestRequire(t *testing.T) {
	f := newAuthFixture(testUsers)
	var seen models.User
	h := f.authn.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = CurrentUser(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid", f.bearer(t, 1), http.StatusTeapot},
		{"missing", "", http.StatusUnauthorized},
		{"inactive", f.bearer(t, 3), http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
	assert.Equal(t, int64(1), seen.ID)
}

func TestRequireUniformUnauthorizedBody(t *testing.T) {
	f := newAuthFixture(testUsers)
	h := f.authn.Require(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	bodies := map[string]string{}
	for name, header := range map[string]string{
		"missing": "",
		"garbage": "Bearer nope",
		"unknown": f.bearer(t, 99),
	} {
		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code, name)
		assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
		bodies[name] = rec.Body.String()
	}
	assert.Equal(t, bodies["missing"], bodies["garbage"])
	assert.Equal(t, bodies["missing"], bodies["unknown"])
}

func TestRequireBarber(t *testing.T) {
	f := newAuthFixture(testUsers)
	h := f.authn.RequireBarber(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for header, want := range map[string]int{
		f.bearer(t, 2): http.StatusNoContent,
		f.bearer(t, 1): http.StatusForbidden,
		f.bearer(t, 3): http.StatusBadRequest,
		"":             http.StatusUnauthorized,
	} {
		req := httptest.NewRequest(http.MethodDelete, "/users/1", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, header)
	}
}
