package migrations

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLFiles_OrderAndFilter(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_forms.sql", "001_init.sql", "README.md", "010_later.sql"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("-- noop"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "003_dir.sql"), 0o700))

	files, err := SQLFiles(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "001_init.sql"),
		filepath.Join(dir, "002_forms.sql"),
		filepath.Join(dir, "010_later.sql"),
	}, files)
}

func TestVersionOf(t *testing.T) {
	assert.Equal(t, "001", versionOf("/x/migrations/001_init.sql"))
	assert.Equal(t, "002", versionOf("002_forms_and_counter.sql"))
}

func TestSQLFiles_RepositoryMigrations(t *testing.T) {
	files, err := SQLFiles(filepath.Join("..", "..", "..", "migrations"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "001", versionOf(files[0]))
}
