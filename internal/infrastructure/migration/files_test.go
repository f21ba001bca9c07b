package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"create invoices table", "create_invoices_table"},
		{"Add-Payment-Index", "add_payment_index"},
		{"weird!!chars##here", "weird_chars_here"},
		{"trailing space ", "trailing_space"},
		{"v2", "v2"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, sanitizeName(tt.input))
	}
}

func TestCreate(t *testing.T) {
	dir := t.TempDir()

	fp, err := Create(dir, "create invoices table")
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(fp.UpPath, "_create_invoices_table.up.sql"))
	assert.True(t, strings.HasSuffix(fp.DownPath, "_create_invoices_table.down.sql"))

	for _, path := range []string{fp.UpPath, fp.DownPath} {
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "create invoices table")
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_first.up.sql"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_first.down.sql"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "002_second.up.sql"), nil, 0644))

	names, err := List(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_first", "002_second"}, names)
}

func TestList_MissingDirectory(t *testing.T) {
	names, err := List(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, names)
}
