package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{Validation("password", "too short"), http.StatusBadRequest},
		{Conflict("email", "Email already registered", nil), http.StatusBadRequest},
		{InactiveUser(), http.StatusBadRequest},
		{Unauthenticated(nil), http.StatusUnauthorized},
		{InvalidCredentials(), http.StatusUnauthorized},
		{Forbidden(), http.StatusForbidden},
		{NotFound("User not found"), http.StatusNotFound},
		{Internal(errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, tc.err.Status(), string(tc.err.Kind))
	}
}

func TestFromAndIsKind(t *testing.T) {
	wrapped := fmt.Errorf("service: %w", Forbidden())
	assert.Equal(t, KindForbidden, From(wrapped).Kind)
	assert.True(t, IsKind(wrapped, KindForbidden))
	assert.False(t, IsKind(wrapped, KindNotFound))

	cause := errors.New("db down")
	internal := From(cause)
	assert.Equal(t, KindInternal, internal.Kind)
	assert.ErrorIs(t, internal, cause)
	assert.NotContains(t, internal.Detail, "db down")
}
