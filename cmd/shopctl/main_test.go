package main

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/BookCnk/sit-football-club/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, dsn string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--database-driver", "sqlite", "--database-dsn", dsn}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestShopctl(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", strings.ReplaceAll(t.Name(), "/", "_"))

	// Each command closes its own handle; this one keeps the shared
	// in-memory database alive between them.
	db, err := repositories.OpenDatabase("sqlite", dsn)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	out, err := run(t, dsn, "migrate")
	require.NoError(t, err)
	assert.Equal(t, "Schema is up to date.\n", out)

	out, err = run(t, dsn, "create-admin", "--email", "Admin@SIT.ac.th", "--password", "secret123", "--name", "Coach")
	require.NoError(t, err)
	assert.Contains(t, out, "Created admin admin@sit.ac.th")

	out, err = run(t, dsn, "create-admin", "--email", "admin@sit.ac.th", "--password", "secret456")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated admin admin@sit.ac.th")

	out, err = run(t, dsn, "seed")
	require.NoError(t, err)
	assert.Equal(t, "Seeded 3 shop items.\n", out)

	out, err = run(t, dsn, "seed")
	require.NoError(t, err)
	assert.Equal(t, "Seeded 0 shop items.\n", out)

	_, err = run(t, dsn, "create-admin", "--email", "admin@sit.ac.th")
	assert.Error(t, err)

	_, err = run(t, dsn, "create-admin", "--email", "admin@sit.ac.th", "--password", "123")
	assert.EqualError(t, err, "Admin password must be at least 6 characters.")
}
