package vault

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func tempVault(t *testing.T) *FS {
	t.Helper()
	fs, err := NewFS(t.TempDir())
	require.NoError(t, err)
	return fs
}

// touch creates a file directly on disk, bypassing FS.Write.
func touch(t *testing.T, fs *FS, rel, body string) {
	t.Helper()
	abs := filepath.Join(fs.Root(), filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, []byte(body), 0o644))
}

func listedPaths(t *testing.T, fs *FS, dir string) []string {
	t.Helper()
	files, err := fs.List(dir)
	require.NoError(t, err)
	out := make([]string, 0, len(files))
	for _, f := range files {
		require.False(t, f.ModTime.IsZero(), "mod time of %s", f.Path)
		out = append(out, f.Path)
	}
	sort.Strings(out)
	return out
}

func TestIsNoteFile(t *testing.T) {
	cases := map[string]bool{
		"note.md":              true,
		"/vault/deep/Plan.md":  true,
		"readme.txt":           false,
		"note.md.bak":          false,
		".hidden.md":           false,
		tempPrefix + "1234.md": false,
		"/vault/.obsidian":     false,
	}
	for name, want := range cases {
		if got := isNoteFile(name); got != want {
			t.Errorf("isNoteFile(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestList_SkipsHiddenAndNonMarkdown(t *testing.T) {
	fs := tempVault(t)
	touch(t, fs, "a.md", "a")
	touch(t, fs, "projects/2024/plan.md", "plan")
	touch(t, fs, "projects/notes.txt", "no")
	touch(t, fs, ".hidden.md", "no")
	touch(t, fs, ".obsidian/workspace.md", "no")
	touch(t, fs, "projects/.trash/old.md", "no")

	require.Equal(t, []string{"a.md", "projects/2024/plan.md"}, listedPaths(t, fs, ""))
	require.Equal(t, []string{"projects/2024/plan.md"}, listedPaths(t, fs, "projects"))
}

func TestList_PathsAreSlashSeparated(t *testing.T) {
	fs := tempVault(t)
	touch(t, fs, "a/b/c.md", "deep")

	paths := listedPaths(t, fs, "")
	require.Equal(t, []string{"a/b/c.md"}, paths)

	data, err := fs.Read(paths[0])
	require.NoError(t, err)
	require.Equal(t, "deep", string(data))

	rel, err := fs.rel(filepath.Join(fs.Root(), "a", "b", "c.md"))
	require.NoError(t, err)
	require.Equal(t, "a/b/c.md", rel)
}

func TestWrite_ReplacesWithoutLeavingTempFiles(t *testing.T) {
	fs := tempVault(t)
	require.NoError(t, fs.Write("topics/go.md", []byte("v1")))
	require.NoError(t, fs.Write("topics/go.md", []byte("v2")))

	data, err := fs.Read("topics/go.md")
	require.NoError(t, err)
	require.Equal(t, "v2", string(data))

	leftovers, _ := filepath.Glob(filepath.Join(fs.Root(), "topics", tempPrefix+"*"))
	require.Empty(t, leftovers)
	require.Equal(t, []string{"topics/go.md"}, listedPaths(t, fs, ""))
}

func TestSafePath_RejectsEscapes(t *testing.T) {
	fs := tempVault(t)
	for _, p := range []string{"../outside.md", "sub/../../x.md", "/etc/passwd"} {
		_, err := fs.Read(p)
		require.Error(t, err, "read %q", p)
		require.Error(t, fs.Write(p, []byte("x")), "write %q", p)
	}
	_, err := fs.List("../")
	require.Error(t, err)
}

func TestNewFS_RootMustBeDirectory(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)

	file := filepath.Join(t.TempDir(), "vault.md")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = NewFS(file)
	require.Error(t, err)
}
