package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMigration(t *testing.T) {
	t.Run("creates up and down files", func(t *testing.T) {
		dir := t.TempDir()

		mf, err := CreateMigration(dir, "add item batches")
		require.NoError(t, err)

		assert.FileExists(t, mf.UpPath)
		assert.FileExists(t, mf.DownPath)
		assert.Contains(t, filepath.Base(mf.UpPath), "add_item_batches.up.sql")
		assert.Contains(t, filepath.Base(mf.DownPath), "add_item_batches.down.sql")
	})

	t.Run("creates the directory when missing", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "migrations")

		_, err := CreateMigration(dir, "initial schema")
		require.NoError(t, err)

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "add_item_batches", sanitizeName("Add Item Batches"))
	assert.Equal(t, "fix_counts", sanitizeName("fix-counts!"))
	assert.Equal(t, "v2_schema", sanitizeName("v2 schema "))
}

func TestListMigrations(t *testing.T) {
	t.Run("lists base names of up migrations", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "001_init.up.sql"), []byte("--"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "001_init.down.sql"), []byte("--"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "002_counts.up.sql"), []byte("--"), 0644))

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"001_init", "002_counts"}, migrations)
	})

	t.Run("missing directory yields empty list", func(t *testing.T) {
		migrations, err := ListMigrations(filepath.Join(t.TempDir(), "nope"))
		require.NoError(t, err)
		assert.Empty(t, migrations)
	})
}
