package frontmatter

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse_NoDetails_ReturnsWholeBody(t *testing.T) {
	input := []byte("# Title\n\nHello\n")

	body, details, err := Parse("a.md", input)
	require.NoError(t, err)
	require.Empty(t, details)
	require.Equal(t, string(input), string(body))
}

func TestParse_TOMLBlock_SplitsDetailsAndBody(t *testing.T) {
	input := []byte("+++\ntitle = \"About\"\nordering-priority = 1\n+++\n# About\n")

	body, details, err := Parse("about.md", input)
	require.NoError(t, err)
	require.Equal(t, "About", details["title"])
	require.Equal(t, int64(1), details["ordering-priority"])
	require.Equal(t, "# About\n", string(body))
}

func TestParse_LeadingBlankLinesAllowed(t *testing.T) {
	body, details, err := Parse("a.md", []byte("\n\n+++\ntitle = \"A\"\n+++\nbody"))
	require.NoError(t, err)
	require.Equal(t, "A", details["title"])
	require.Equal(t, "body", string(body))
}

func TestParse_EmptyBlock(t *testing.T) {
	body, details, err := Parse("a.md", []byte("+++\n+++\ntext\n"))
	require.NoError(t, err)
	require.NotNil(t, details)
	require.Empty(t, details)
	require.Equal(t, "text\n", string(body))
}

func TestParse_UnterminatedBlock_IsBody(t *testing.T) {
	input := []byte("+++\ntitle = \"x\"\nno closing line\n")

	body, details, err := Parse("a.md", input)
	require.NoError(t, err)
	require.Empty(t, details)
	require.Equal(t, string(input), string(body))
}

func TestParse_MalformedTOML_ReturnsDetailsError(t *testing.T) {
	_, _, err := Parse("content/bad.md", []byte("+++\ntitle = = \n+++\nbody\n"))
	require.Error(t, err)

	var de *DetailsError
	require.True(t, errors.As(err, &de))
	require.Equal(t, "content/bad.md", de.Path)
	require.Contains(t, err.Error(), "content/bad.md")
}

func TestLoadDetailsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blog.toml")
	require.NoError(t, os.WriteFile(path, []byte("title = \"Blog\"\n"), 0o600))

	details, found, err := LoadDetailsFile(path)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "Blog", details["title"])

	details, found, err = LoadDetailsFile(filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)
	require.False(t, found)
	require.Nil(t, details)
}

func TestLoadDetailsFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.toml")
	require.NoError(t, os.WriteFile(path, []byte("title = [\n"), 0o600))

	_, found, err := LoadDetailsFile(path)
	require.True(t, found)
	var de *DetailsError
	require.True(t, errors.As(err, &de))
	require.Equal(t, path, de.Path)
}
