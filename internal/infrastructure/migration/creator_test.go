package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webstack/backend/migrations"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add books table", "add_books_table"},
		{"Add-Books-Table", "add_books_table"},
		{"add__books__table", "add_books_table"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "special_chars"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration_Sequential(t *testing.T) {
	dir := t.TempDir()

	first, err := CreateMigration(dir, "create customers")
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.Version)
	assert.Equal(t, filepath.Join(dir, "000001_create_customers.up.sql"), first.UpPath)

	second, err := CreateMigration(dir, "Add index")
	require.NoError(t, err)
	assert.Equal(t, uint(2), second.Version)

	content, err := os.ReadFile(second.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "add_index (down)")
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!")
	assert.Error(t, err)
}

func TestListMigrations_Ordered(t *testing.T) {
	fsys := fstest.MapFS{
		"000010_later.up.sql":   {},
		"000010_later.down.sql": {},
		"000002_early.up.sql":   {},
		"000002_early.down.sql": {},
		"README.md":             {},
	}

	files, err := ListMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, uint(2), files[0].Version)
	assert.Equal(t, "early", files[0].Name)
	assert.Equal(t, "000010_later.down.sql", files[1].DownPath)
}

func TestListMigrations_EmbeddedSchema(t *testing.T) {
	files, err := ListMigrations(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "create_sales_schema", files[0].Name)

	_, err = migrations.FS.ReadFile(files[0].DownPath)
	assert.NoError(t, err)
}
