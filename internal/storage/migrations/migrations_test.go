package migrations

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	for name, fsys := range map[string]fs.FS{"postgres": Postgres(), "sqlite": SQLite()} {
		entries, err := fs.Glob(fsys, "*.sql")
		require.NoError(t, err, name)
		require.NotEmpty(t, entries, name)

		body, err := fs.ReadFile(fsys, entries[0])
		require.NoError(t, err, name)
		assert.Contains(t, string(body), "-- +goose Up", name)
		assert.Contains(t, string(body), "CREATE TABLE IF NOT EXISTS users", name)
	}
}
