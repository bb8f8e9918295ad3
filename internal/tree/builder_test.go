package tree

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/yassg/internal/frontmatter"
	"git.home.luguber.info/inful/yassg/internal/page"
)

// writeTree creates files under dir; keys are slash-separated relative paths.
func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o600))
	}
}

func buildRoot(t *testing.T, dir string, recursive bool) *page.Page {
	t.Helper()
	pages, err := Build(dir, Options{Recursive: recursive})
	require.NoError(t, err)
	root, err := page.NewRoot(pages...)
	require.NoError(t, err)
	return root
}

func allPaths(root *page.Page) []string {
	var paths []string
	_ = root.Walk(func(p *page.Page) error {
		if !p.IsRoot() {
			paths = append(paths, p.Path())
		}
		return nil
	})
	sort.Strings(paths)
	return paths
}

func TestBuild_SiteScenario(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"index.md":      "+++\ntitle = \"Home\"\n+++\nWelcome",
		"about.md":      "+++\ntitle = \"About\"\nordering-priority = 1\n+++\nAbout us",
		"blog/index.md": "+++\ntitle = \"Blog\"\n+++\nPosts",
		"blog/post1.md": "+++\ntitle = \"Post 1\"\n+++\nFirst",
	})

	root := buildRoot(t, dir, true)

	require.Equal(t, []string{"about", "blog", "blog/post1", "index"}, allPaths(root))

	blog := root.Find("blog")
	require.NotNil(t, blog)
	require.Equal(t, "Blog", blog.Title())
	require.True(t, blog.HasContent())
	require.Equal(t, "Posts", blog.Content())
	require.Len(t, blog.Children, 1)
	require.Equal(t, filepath.Join(dir, "blog", "index.md"), blog.SourcePath)

	require.Equal(t, "Home", root.Find("index").Title())
	require.Equal(t, 1.0, root.Find("about").Priority())
}

func TestBuild_PathsMatchAncestorChainAndAreUnique(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"a.md":           "a",
		"a/b.md":         "b",
		"a/c/index.md":   "c",
		"a/c/d.md":       "d",
		"e/f/g.md":       "g",
		"e/f/notes.txt":  "ignored",
		"e/f/index.toml": "title = \"F\"",
	})

	root := buildRoot(t, dir, true)

	require.NoError(t, root.Walk(func(p *page.Page) error {
		var names []string
		for _, a := range p.Ancestors() {
			names = append(names, a.Name)
		}
		if !p.IsRoot() {
			names = append(names, p.Name)
		}
		require.Equal(t, strings.Join(names, "/"), p.Path())

		seen := map[string]bool{}
		for _, c := range p.Children {
			require.False(t, seen[c.Name], "duplicate sibling %s under %q", c.Name, p.Path())
			seen[c.Name] = true
		}
		return nil
	}))
	require.Equal(t, []string{"a", "a/b", "a/c", "a/c/d", "e", "e/f", "e/f/g"}, allPaths(root))
	require.Equal(t, "F", root.Find("e/f").Title())
	require.False(t, root.Find("e").HasContent())
}

func TestBuild_IndexDocumentAbsorbsSiblings(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"docs/index.md":   "+++\ntitle = \"Docs\"\n+++\nOverview",
		"docs/install.md": "install",
		"docs/usage.md":   "usage",
		"docs/faq/q1.md":  "q1",
	})

	root := buildRoot(t, dir, true)
	docs := root.Find("docs")
	require.NotNil(t, docs)
	require.Len(t, root.Children, 1)

	var names []string
	for _, c := range docs.Children {
		names = append(names, c.Name)
	}
	sort.Strings(names)
	require.Equal(t, []string{"faq", "install", "usage"}, names)
	require.Nil(t, docs.Child("index"))
}

func TestBuild_IndexOnlyDirectoryIsLeaf(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"solo/index.md": "only"})

	root := buildRoot(t, dir, true)
	solo := root.Find("solo")
	require.NotNil(t, solo)
	require.Empty(t, solo.Children)
	require.Equal(t, "only", solo.Content())
}

func TestBuild_EmptyDirectoryContributesNothing(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"x.md": "x", "assets/logo.svg": "<svg/>"})
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "empty"), 0o750))

	root := buildRoot(t, dir, true)
	require.Equal(t, []string{"x"}, allPaths(root))
}

func TestBuild_FileAndDirectoryMerge_FileDetailsWin(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"guide.md":         "+++\ntitle = \"From file\"\n+++\nGuide body",
		"guide.toml":       "title = \"From sidecar\"",
		"guide/index.md":   "+++\ntitle = \"From index\"\n+++\nIndex body",
		"guide/chapter.md": "chapter",
	})

	root := buildRoot(t, dir, true)
	require.Len(t, root.Children, 1)

	guide := root.Find("guide")
	require.Equal(t, "From file", guide.Title())
	require.Equal(t, "Guide body", guide.Content())
	require.NotNil(t, guide.Child("chapter"))
}

func TestBuild_SidecarOrder(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"one.toml":       "title = \"Outer\"",
		"one/index.toml": "title = \"Inner\"",
		"one/page.md":    "p",
		"two/index.toml": "title = \"Two\"\nordering-priority = 4",
		"two/page.md":    "p",
		"three/page.md":  "p",
	})

	root := buildRoot(t, dir, true)
	require.Equal(t, "Outer", root.Find("one").Title())
	require.Equal(t, "Two", root.Find("two").Title())
	require.Equal(t, 4.0, root.Find("two").Priority())
	require.Equal(t, "three", root.Find("three").Title())
	require.False(t, root.Find("three").HasContent())
}

func TestBuild_ContentFrom(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"docs/readme.md":         "+++\ntitle = \"Readme\"\ncontent-from = \"shared/README.txt\"\n+++\nignored body",
		"docs/shared/README.txt": "Shared text",
	})

	root := buildRoot(t, dir, true)
	readme := root.Find("docs/readme")
	require.NotNil(t, readme)
	require.Equal(t, "Shared text", readme.Content())
	require.Equal(t, "Readme", readme.Title())
	require.Equal(t, "shared/README.txt", readme.Detail(page.DetailContentFrom))
}

func TestBuild_ContentFromMissingFile(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"a.md": "+++\ncontent-from = \"nope.txt\"\n+++\n",
	})

	_, err := Build(dir, Options{Recursive: true})
	require.Error(t, err)
	require.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestBuild_ContentFromEmptyKeepsBody(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"a.md": "+++\ncontent-from = \"\"\n+++\nown body",
		"b.md": "+++\ncontent-from = 3\n+++\n",
	})

	_, err := Build(dir, Options{Recursive: true})
	var de *frontmatter.DetailsError
	require.True(t, errors.As(err, &de))
	require.Equal(t, filepath.Join(dir, "b.md"), de.Path)

	require.NoError(t, os.Remove(filepath.Join(dir, "b.md")))
	root := buildRoot(t, dir, true)
	require.Equal(t, "own body", root.Find("a").Content())
}

func TestBuild_MalformedDetails(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"bad.md": "+++\ntitle = \n+++\nbody"})

	_, err := Build(dir, Options{Recursive: true})
	var de *frontmatter.DetailsError
	require.True(t, errors.As(err, &de))
	require.Equal(t, filepath.Join(dir, "bad.md"), de.Path)
}

func TestBuild_MalformedSidecar(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"blog.toml": "title = [",
		"blog/p.md": "p",
	})

	_, err := Build(dir, Options{Recursive: true})
	var de *frontmatter.DetailsError
	require.True(t, errors.As(err, &de))
}

func TestBuild_NonRecursive(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		"top.md":         "top",
		"sub/index.md":   "sub",
		"sub/nested.md":  "nested",
		"other/child.md": "child",
	})

	root := buildRoot(t, dir, false)
	require.Equal(t, []string{"sub", "top"}, allPaths(root))
}

func TestBuild_MissingDirectory(t *testing.T) {
	_, err := Build(filepath.Join(t.TempDir(), "missing"), Options{})
	require.Error(t, err)
	require.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestBuild_SymlinkCycleVisitedOnce(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a/page.md": "p"})
	if err := os.Symlink(dir, filepath.Join(dir, "a", "loop")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	root := buildRoot(t, dir, true)
	require.Equal(t, []string{"a", "a/page"}, allPaths(root))
}
