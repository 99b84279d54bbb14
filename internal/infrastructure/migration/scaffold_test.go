package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScaffoldMigration_CreatesPair(t *testing.T) {
	dir := t.TempDir()

	s, err := ScaffoldMigration(dir, "Add PMB columns", "per-workspace mailbox numbers")
	require.NoError(t, err)

	assert.Equal(t, "add_pmb_columns", s.Slug)
	assert.Len(t, s.Version, 14)

	up, err := os.ReadFile(s.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "add_pmb_columns (up)")
	assert.Contains(t, string(up), "per-workspace mailbox numbers")

	down, err := os.ReadFile(s.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "add_pmb_columns (down)")
}

func TestScaffoldMigration_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "migrations")

	_, err := ScaffoldMigration(dir, "initial", "")
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestScaffoldMigration_EmptySlug(t *testing.T) {
	_, err := ScaffoldMigration(t.TempDir(), "!!!", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty file name")
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Add Users Table", "add_users_table"},
		{"add-scan-storage", "add_scan_storage"},
		{"  spaced  out  ", "spaced_out"},
		{"Drop fee_overrides!", "drop_fee_overrides"},
		{"UPPER", "upper"},
		{"v2 schema", "v2_schema"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, slugify(tt.in))
		})
	}
}

func TestListMigrations_SortedPairs(t *testing.T) {
	dir := t.TempDir()

	for _, base := range []string{
		"20250903100001_create_catalog_tables",
		"20250903100000_create_identity_tables",
	} {
		for _, suffix := range []string{".up.sql", ".down.sql"} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, base+suffix), []byte("-- sql\n"), 0644))
		}
	}
	// Stray files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("notes"), 0644))

	names, err := ListMigrations(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"20250903100000_create_identity_tables",
		"20250903100001_create_catalog_tables",
	}, names)
	for _, name := range names {
		assert.False(t, strings.HasSuffix(name, ".sql"))
	}
}

func TestListMigrations_MissingDirectory(t *testing.T) {
	names, err := ListMigrations(filepath.Join(t.TempDir(), "does-not-exist"))

	require.NoError(t, err)
	assert.Empty(t, names)
}
