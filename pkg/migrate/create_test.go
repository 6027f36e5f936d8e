package migrate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSQLMigrationWritesGooseSkeleton(t *testing.T) {
	dir := t.TempDir()

	path, err := CreateSQLMigration(dir, "Add Envelope Indexes!")
	require.NoError(t, err)
	assert.Regexp(t, `\d{14}_add_envelope_indexes\.sql$`, path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "-- +goose Up")
	assert.Contains(t, string(content), "-- +goose Down")
	assert.Contains(t, string(content), "add_envelope_indexes")
}

func TestCreateSQLMigrationRejectsBadInput(t *testing.T) {
	_, err := CreateSQLMigration("", "name")
	require.Error(t, err)

	_, err = CreateSQLMigration(t.TempDir(), "")
	require.Error(t, err)

	_, err = CreateSQLMigration(t.TempDir(), "!!!")
	require.Error(t, err)
}

func TestValidateDirAcceptsWellFormedMigrations(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"00001_init.sql", "20260825120000_add_outbox.sql"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("-- +goose Up\n"), 0o644))
	}
	require.NoError(t, ValidateDir(dir))
}

func TestValidateDirRejectsBadFilenames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "init.sql"), []byte("-- +goose Up\n"), 0o644))

	err := ValidateDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid migration filename")
}

func TestValidateDirRejectsDuplicateVersions(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"00002_first.sql", "00002_second.sql"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("-- +goose Up\n"), 0o644))
	}

	err := ValidateDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate migration version")
}

func TestValidateDirRequiresMigrations(t *testing.T) {
	err := ValidateDir(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no SQL migrations found")
}

func TestRepoMigrationsAreValid(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))
}
