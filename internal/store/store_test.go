package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	return &Store{Root: t.TempDir(), Dir: "Formula", Logger: zerolog.Nop()}
}

func TestDeclaredVersionAbsent(t *testing.T) {
	s := newStore(t)

	version, ok, err := s.DeclaredVersion("tool")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, version)
}

func TestWriteThenDeclaredVersion(t *testing.T) {
	s := newStore(t)

	doc := "class Tool < Formula\n  desc \"x\"\n  version \"1.2.0\"\nend\n"
	path, err := s.Write("tool", doc)
	require.NoError(t, err)

	realRoot, err := filepath.EvalSymlinks(s.Root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(realRoot, "Formula", "tool.rb"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, doc, string(data))

	version, ok, err := s.DeclaredVersion("tool")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1.2.0", version)
}

func TestWriteOverwrites(t *testing.T) {
	s := newStore(t)

	_, err := s.Write("tool", "  version \"1.0.0\"\n")
	require.NoError(t, err)
	_, err = s.Write("tool", "  version \"2.0.0\"\n")
	require.NoError(t, err)

	version, ok, err := s.DeclaredVersion("tool")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2.0.0", version)

	entries, err := os.ReadDir(filepath.Join(s.Root, "Formula"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestDeclaredVersionWithoutVersionLine(t *testing.T) {
	s := newStore(t)
	_, err := s.Write("tool", "class Tool < Formula\nend\n")
	require.NoError(t, err)

	_, ok, err := s.DeclaredVersion("tool")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		want   string
		wantOK bool
	}{
		{name: "indented", doc: "  desc \"d\"\n  version \"1.3.0\"\n", want: "1.3.0", wantOK: true},
		{name: "first match wins", doc: "version \"1\"\nversion \"2\"\n", want: "1", wantOK: true},
		{name: "second quoted token ignored", doc: "version \"1.0\" \"other\"\n", want: "1.0", wantOK: true},
		{name: "empty value", doc: "version \"\"\n", want: "", wantOK: true},
		{name: "no version line", doc: "class X\nend\n", wantOK: false},
		{name: "unquoted", doc: "version 1.0\n", wantOK: false},
		{name: "mid-line token ignored", doc: "  # bump version \"9\"\n", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseVersion([]byte(tt.doc))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPathRejectsBadNames(t *testing.T) {
	s := newStore(t)
	for _, name := range []string{"", ".", "..", "../escape", "a/b", `a\b`} {
		_, err := s.Path(name)
		assert.Error(t, err, name)
	}
}

func TestPathRejectsDirEscape(t *testing.T) {
	s := newStore(t)
	s.Dir = "../outside"

	_, err := s.Path("tool")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside the tap root")
}

func TestPathRejectsSymlinkEscape(t *testing.T) {
	s := newStore(t)
	outside := t.TempDir()
	require.NoError(t, os.Symlink(outside, filepath.Join(s.Root, "Formula")))

	_, err := s.Path("tool")
	require.Error(t, err)

	_, err = s.Write("tool", "x")
	assert.Error(t, err)
	_, statErr := os.Stat(filepath.Join(outside, "tool.rb"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestPathAllowsInternalSymlink(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.MkdirAll(filepath.Join(s.Root, "real"), 0755))
	require.NoError(t, os.Symlink(filepath.Join(s.Root, "real"), filepath.Join(s.Root, "Formula")))

	path, err := s.Path("tool")
	require.NoError(t, err)

	realRoot, err := filepath.EvalSymlinks(s.Root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(realRoot, "real", "tool.rb"), path)
}

func TestPathInvalidRoot(t *testing.T) {
	s := &Store{Root: "/nonexistent/tap/root", Dir: "Formula"}
	_, err := s.Path("tool")
	assert.Error(t, err)
}
