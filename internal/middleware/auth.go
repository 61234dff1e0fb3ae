package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/hongminglow/barbershop-users/internal/apperr"
	"github.com/hongminglow/barbershop-users/internal/http/respond"
	"github.com/hongminglow/barbershop-users/internal/logging"
	"github.com/hongminglow/barbershop-users/internal/models"
	"github.com/hongminglow/barbershop-users/internal/storage"
)

var errMissingToken = errors.New("missing bearer token")

// TokenVerifier turns a bearer token into a user id.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// UserFinder loads the user a token refers to.
type UserFinder interface {
	FindByID(ctx context.Context, id int64) (models.User, error)
}

type userCtxKey struct{}

// WithUser stores the authenticated user in ctx.
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, user)
}

// CurrentUser returns the user stored by the authentication middleware.
func CurrentUser(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userCtxKey{}).(models.User)
	return user, ok
}

// Authenticator resolves bearer tokens to active users and gates routes.
type Authenticator struct {
	tokens  TokenVerifier
	users   UserFinder
	respond *respond.Responder
	log     logging.Logger
}

// NewAuthenticator builds the access control middleware.
func NewAuthenticator(tokens TokenVerifier, users UserFinder, rs *respond.Responder, log logging.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, users: users, respond: rs, log: log}
}

// Resolve authenticates an Authorization header value. Token problems and
// unknown users are all reported as unauthenticated; a valid token for a
// deactivated account is reported as an inactive user.
func (a *Authenticator) Resolve(ctx context.Context, header string) (models.User, error) {
	token, ok := bearerToken(header)
	if !ok {
		return models.User{}, apperr.Unauthenticated(errMissingToken)
	}
	userID, err := a.tokens.Verify(token)
	if err != nil {
		a.log.Debug(ctx, "token rejected", "error", err)
		return models.User{}, apperr.Unauthenticated(err)
	}
	user, err := a.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, apperr.Unauthenticated(err)
		}
		return models.User{}, apperr.Internal(err)
	}
	if !user.IsActive {
		return models.User{}, apperr.InactiveUser()
	}
	return user, nil
}

// Require rejects requests without a valid token for an active user.
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := a.Resolve(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			a.respond.Error(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// RequireBarber is Require plus a barber role check.
func (a *Authenticator) RequireBarber(next http.Handler) http.Handler {
	return a.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ := CurrentUser(r.Context())
		if user.Role() != models.Barber {
			a.log.Warn(r.Context(), "barber role required", "user_id", user.ID, "path", r.URL.Path)
			a.respond.Error(w, r, apperr.Forbidden())
			return
		}
		next.ServeHTTP(w, r)
	}))
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
