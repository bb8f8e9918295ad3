package mirror

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string, mod time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestReplace_ClearsDestination(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "static")
	now := time.Now().Truncate(time.Second)
	writeFile(t, filepath.Join(src, "style.css"), "body{}", now)
	writeFile(t, filepath.Join(src, "img", "logo.svg"), "<svg/>", now)
	writeFile(t, filepath.Join(dst, "old.js"), "x", now)

	stats, err := Replace(os.DirFS(src), dst)
	require.NoError(t, err)
	require.Equal(t, Stats{Copied: 2}, stats)
	require.Equal(t, "body{}", readFile(t, filepath.Join(dst, "style.css")))
	require.Equal(t, "<svg/>", readFile(t, filepath.Join(dst, "img", "logo.svg")))
	require.NoFileExists(t, filepath.Join(dst, "old.js"))
}

func TestUpdate_CopiesOnlyNewerFiles(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "static")
	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	writeFile(t, filepath.Join(src, "a.css"), "a1", base)
	writeFile(t, filepath.Join(src, "b.css"), "b1", base)

	stats, err := Update(os.DirFS(src), dst)
	require.NoError(t, err)
	require.Equal(t, Stats{Copied: 2}, stats)

	stats, err = Update(os.DirFS(src), dst)
	require.NoError(t, err)
	require.Equal(t, Stats{Skipped: 2}, stats)

	// Within tolerance: not copied.
	writeFile(t, filepath.Join(src, "a.css"), "a2", base.Add(500*time.Millisecond))
	// Beyond tolerance: copied.
	writeFile(t, filepath.Join(src, "b.css"), "b2", base.Add(2*time.Second))

	stats, err = Update(os.DirFS(src), dst)
	require.NoError(t, err)
	require.Equal(t, Stats{Copied: 1, Skipped: 1}, stats)
	require.Equal(t, "a1", readFile(t, filepath.Join(dst, "a.css")))
	require.Equal(t, "b2", readFile(t, filepath.Join(dst, "b.css")))
}

func TestUpdate_KeepsExtraFiles(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	now := time.Now().Truncate(time.Second)
	writeFile(t, filepath.Join(src, "a.css"), "a", now)
	writeFile(t, filepath.Join(dst, "extra.txt"), "keep", now)

	_, err := Update(os.DirFS(src), dst)
	require.NoError(t, err)
	require.Equal(t, "keep", readFile(t, filepath.Join(dst, "extra.txt")))
	require.Equal(t, "a", readFile(t, filepath.Join(dst, "a.css")))
}

func TestUpdate_EmbeddedSourceComparesSize(t *testing.T) {
	dst := t.TempDir()
	src := fstest.MapFS{
		"same.css":    {Data: []byte("1234")},
		"changed.css": {Data: []byte("longer content")},
		"sub/new.css": {Data: []byte("n")},
	}
	now := time.Now()
	writeFile(t, filepath.Join(dst, "same.css"), "abcd", now)
	writeFile(t, filepath.Join(dst, "changed.css"), "short", now)

	stats, err := Update(src, dst)
	require.NoError(t, err)
	require.Equal(t, Stats{Copied: 2, Skipped: 1}, stats)
	require.Equal(t, "abcd", readFile(t, filepath.Join(dst, "same.css")))
	require.Equal(t, "longer content", readFile(t, filepath.Join(dst, "changed.css")))
	require.Equal(t, "n", readFile(t, filepath.Join(dst, "sub", "new.css")))
}
