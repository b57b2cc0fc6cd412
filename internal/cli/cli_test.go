package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/edificio/internal/domain"
	"github.com/josh-kwaku/edificio/internal/repository"
	"github.com/josh-kwaku/edificio/internal/testutil"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func setupEnv(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "edificio.db")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", path)
	t.Setenv("JWT_SECRET", "cli-test-secret")
	t.Setenv("LOG_LEVEL", "error")
	return path
}

func TestMigrate(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "migrate", "version")
	require.NoError(t, err)
	assert.Equal(t, "version 0\n", out)

	_, err = run(t, "migrate", "up")
	require.NoError(t, err)

	out, err = run(t, "migrate", "version")
	require.NoError(t, err)
	assert.Equal(t, "version 1\n", out)
}

func TestUserCreate(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "user", "create", "--email", "admin@edificio.test", "--password", "corta")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 8 characters")

	out, err := run(t, "user", "create", "--email", "Admin@Edificio.test", "--password", "larga-123")
	require.NoError(t, err)
	assert.Contains(t, out, "created user admin@edificio.test")

	_, err = run(t, "user", "create", "--email", "admin@edificio.test", "--password", "larga-123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestChargesGenerateAndReport(t *testing.T) {
	path := setupEnv(t)

	_, err := run(t, "charges", "generate", "--period", "2024-03")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoApartments)

	db, err := repository.Open(context.Background(), repository.DialectSQLite, path, repository.PoolConfig{})
	require.NoError(t, err)
	testutil.SeedApartment(t, db, "101", 400000, 100000)
	require.NoError(t, db.Conn().Close())

	out, err := run(t, "charges", "generate", "--period", "2024-03")
	require.NoError(t, err)
	assert.Contains(t, out, "2 charges generated")

	out, err = run(t, "charges", "generate", "--period", "2024-03")
	require.NoError(t, err)
	assert.Contains(t, out, "already generated")

	out, err = run(t, "report", "monthly", "--period", "2024-03", "--format", "csv", "--output", "-")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "\ufeff"))
	assert.Contains(t, out, "101")
}

func TestBadPeriod(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "charges", "generate", "--period", "marzo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected YYYY-MM")
}

func TestReportMonthly_UnsupportedFormat(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "report", "monthly", "--format", "xlsx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}
