package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := map[string]string{
		"Add Items Table":   "add_items_table",
		"  bast -- scans ":  "bast_scans",
		"opname_v2":         "opname_v2",
		"Nomor/Dokumen!":    "nomordokumen",
		"":                  "",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeName(in), in)
	}
}

func TestList(t *testing.T) {
	fsys := fstest.MapFS{
		"000002_b.up.sql":   {},
		"000002_b.down.sql": {},
		"000001_a.up.sql":   {},
		"000001_a.down.sql": {},
		"README.md":         {},
	}
	names, err := List(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_a", "000002_b"}, names)
}

func TestEmbedded(t *testing.T) {
	names, err := Embedded()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "000001_identity", names[0])
	assert.Contains(t, names, "000004_documents")
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "000007_old.up.sql"), nil, 0o644))

	mf, err := CreateMigration(dir, "Add Attachment Size", "track scan size")
	require.NoError(t, err)
	assert.Equal(t, 8, mf.Sequence)
	assert.Equal(t, "000008_add_attachment_size", mf.Name)

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "(up)")
	assert.Contains(t, string(up), "track scan size")
	assert.FileExists(t, mf.DownPath)

	_, err = CreateMigration(dir, "!!!", "")
	assert.Error(t, err)
}
