package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/hortifruti/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add breakage photo", "add_breakage_photo"},
		{"Add-Sale-Items", "add_sale_items"},
		{"ADD_BATCH_INDEX", "add_batch_index"},
		{"add__po__status", "add_po_status"},
		{"Batches 2", "batches_2"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "add breakage photo", "Store the photo object key")
	require.NoError(t, err)
	assert.Equal(t, "000001", mf.Version)

	upBase := strings.TrimSuffix(filepath.Base(mf.UpPath), upSuffix)
	downBase := strings.TrimSuffix(filepath.Base(mf.DownPath), downSuffix)
	assert.Equal(t, "000001_add_breakage_photo", upBase)
	assert.Equal(t, upBase, downBase)

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "add breakage photo")
	assert.Contains(t, string(up), "Store the photo object key")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "Rollback")

	t.Run("numbers after the highest version", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "000007_manual.up.sql"), nil, 0o644))

		next, err := CreateMigration(dir, "next", "")
		require.NoError(t, err)
		assert.Equal(t, "000008", next.Version)
	})

	t.Run("rejects empty names", func(t *testing.T) {
		_, err := CreateMigration(dir, "!!!", "")
		assert.Error(t, err)
	})
}

func TestListMigrations(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		entries, err := ListMigrations(filepath.Join(t.TempDir(), "nope"))
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("orders by version and pairs down files", func(t *testing.T) {
		fsys := fstest.MapFS{
			"000010_late.up.sql":     {},
			"000002_second.up.sql":   {},
			"000002_second.down.sql": {},
			"README.md":              {},
		}

		entries, err := ListMigrationsFS(fsys)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, Entry{Version: 2, Name: "second", HasDown: true}, entries[0])
		assert.Equal(t, Entry{Version: 10, Name: "late", HasDown: false}, entries[1])
	})

	t.Run("rejects non numeric versions", func(t *testing.T) {
		_, err := ListMigrationsFS(fstest.MapFS{"init.up.sql": {}})
		assert.Error(t, err)
	})
}

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := ListMigrationsFS(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for i, e := range entries {
		assert.Equal(t, uint64(i+1), e.Version, "migrations must be numbered without gaps")
		assert.True(t, e.HasDown, "migration %d has no rollback", e.Version)
	}

	up, err := migrations.FS.ReadFile("000001_init_schema.up.sql")
	require.NoError(t, err)
	for _, table := range []string{"products", "stock_batches", "breakages", "sales", "sale_items", "purchase_orders", "purchase_order_items"} {
		assert.Contains(t, string(up), "CREATE TABLE IF NOT EXISTS "+table+" ")
	}
}
