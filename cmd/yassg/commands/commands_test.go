package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/yassg/internal/errors"
)

// run parses args and executes the selected command with output captured.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("yassg"), kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)

	var out bytes.Buffer
	err = kctx.Run(&Global{Ctx: t.Context(), Out: &out}, &cli)
	return out.String(), err
}

func initSite(t *testing.T) string {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "yassg.toml")
	out, err := run(t, "-C", cfgPath, "init")
	require.NoError(t, err)
	require.Contains(t, out, "Wrote configuration to "+cfgPath)
	return cfgPath
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	require.Contains(t, out, "yassg ")
}

func TestInit_RefusesToOverwrite(t *testing.T) {
	cfgPath := initSite(t)
	require.FileExists(t, filepath.Join(filepath.Dir(cfgPath), "content", "index.md"))

	_, err := run(t, "-C", cfgPath, "init")
	require.True(t, errors.IsCategory(err, errors.CategoryConfig))

	_, err = run(t, "-C", cfgPath, "init", "--force")
	require.NoError(t, err)
}

func TestInit_CopiesThemeForEditing(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "yassg.toml")
	out, err := run(t, "-C", cfgPath, "init", "--theme")
	require.NoError(t, err)
	require.Contains(t, out, "theme files to")

	local := filepath.Join(filepath.Dir(cfgPath), "theme")
	require.FileExists(t, filepath.Join(local, "page.html"))
	require.FileExists(t, filepath.Join(local, "static", "style.css"))

	require.NoError(t, os.WriteFile(filepath.Join(local, "static", "style.css"), []byte("/* edited */"), 0o600))
	_, err = run(t, "-C", cfgPath, "build")
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(filepath.Dir(cfgPath), "build", "static", "style.css"))
	require.NoError(t, err)
	require.Equal(t, "/* edited */", string(data))

	_, err = run(t, "-C", cfgPath, "init", "--theme", "--force")
	require.NoError(t, err)
}

func TestBuild_InitializedSite(t *testing.T) {
	cfgPath := initSite(t)
	dir := filepath.Dir(cfgPath)
	metricsFile := filepath.Join(dir, "yassg.prom")

	out, err := run(t, "-C", cfgPath, "build", "--check", "--metrics-file", metricsFile)
	require.NoError(t, err)
	require.Contains(t, out, ": success in ")
	require.FileExists(t, filepath.Join(dir, "build", "index.html"))
	require.FileExists(t, filepath.Join(dir, "build", "static", "style.css"))

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	require.Contains(t, string(data), "yassg_build_duration_seconds")

	out, err = run(t, "-C", cfgPath, "check")
	require.NoError(t, err)
	require.Contains(t, out, "0 broken")
}

func TestBuild_BuildDirArgument(t *testing.T) {
	cfgPath := initSite(t)
	target := filepath.Join(t.TempDir(), "public")

	_, err := run(t, "-C", cfgPath, "build", target, "--incremental-static")
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(target, "index.html"))
}

func TestTree(t *testing.T) {
	cfgPath := initSite(t)
	about := filepath.Join(filepath.Dir(cfgPath), "content", "about.md")
	require.NoError(t, os.WriteFile(about, []byte("+++\ntitle = \"About\"\n+++\n"), 0o600))

	out, err := run(t, "-C", cfgPath, "tree")
	require.NoError(t, err)
	require.Contains(t, out, "* Home\n")
	require.Contains(t, out, "* About\n")
}

func TestCheck_BrokenLinks(t *testing.T) {
	cfgPath := initSite(t)
	site := filepath.Join(t.TempDir(), "site")
	require.NoError(t, os.MkdirAll(site, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(site, "index.html"), []byte(`<a href="missing/">x</a>`), 0o600))

	out, err := run(t, "-C", cfgPath, "check", site)
	require.Error(t, err)
	require.Contains(t, out, "missing/")
	require.Equal(t, 2, errors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := run(t, "-C", filepath.Join(t.TempDir(), "nope.toml"), "tree")
	require.Error(t, err)
	require.Equal(t, 7, errors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestParseLogLevel(t *testing.T) {
	t.Setenv(LogLevelEnv, "warn")
	require.Equal(t, "WARN", parseLogLevel(false).String())
	require.Equal(t, "DEBUG", parseLogLevel(true).String())
	t.Setenv(LogLevelEnv, "")
	require.Equal(t, "INFO", parseLogLevel(false).String())
}

func TestLoadConfig_InvalidValueIsConfigError(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "yassg.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("static-mode = \"sometimes\"\n"), 0o600))

	_, err := run(t, "-C", cfgPath, "tree")
	require.True(t, errors.IsCategory(err, errors.CategoryConfig), "got %v", err)
	require.Equal(t, 7, errors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}
