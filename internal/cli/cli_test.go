package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/feedbackboard/internal/storage/sqlstore"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func sqliteDSN(t *testing.T) string {
	return "file:" + filepath.Join(t.TempDir(), "cli.db") + "?_foreign_keys=on"
}

func TestMigrateCreatesSchema(t *testing.T) {
	dsn := sqliteDSN(t)

	_, err := run(t, "migrate", "--storage", "sqlite", "--database-url", dsn)
	require.NoError(t, err)

	store, err := sqlstore.New(sqlstore.Config{Driver: sqlstore.DriverSQLite, DSN: dsn})
	require.NoError(t, err)
	defer store.Close()

	users, err := store.ListUsers(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestMigrateRejectsMemoryStorage(t *testing.T) {
	_, err := run(t, "migrate")
	assert.Error(t, err)
}

func TestSeedPopulatesDatabase(t *testing.T) {
	dsn := sqliteDSN(t)

	out, err := run(t, "seed", "--storage", "sqlite", "--database-url", dsn,
		"--users", "2", "--feedback", "3", "--seed", "7", "--log-level", "error")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "\tpassword"))

	store, err := sqlstore.New(sqlstore.Config{Driver: sqlstore.DriverSQLite, DSN: dsn})
	require.NoError(t, err)
	defer store.Close()

	entries, err := store.ListFeedback(context.Background(), 100)
	require.NoError(t, err)
	assert.Len(t, entries, 6)
}

func TestHealthAgainstServer(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/healthz", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer healthy.Close()

	out, err := run(t, "health", "--server", healthy.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"down"}`))
	}))
	defer broken.Close()

	_, err = run(t, "health", "--server", broken.URL)
	assert.Error(t, err)
}

func TestInvalidConfigFailsBeforeRunning(t *testing.T) {
	_, err := run(t, "migrate", "--storage", "sqlite")
	assert.ErrorContains(t, err, "database_url")
}
