package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned by Load when the configuration file does not exist.
var ErrNotFound = errors.New("configuration file not found")

// Recognized keys.
const (
	keyDocsDir            = "docs-dir"
	keyBuildDir           = "build-dir"
	keyRecursive          = "recursive"
	keyTheme              = "theme"
	keyLocalTheme         = "local-theme"
	keyTrailingSlashes    = "trailing-slashes"
	keyMarkdownExtensions = "markdown-extensions"
	keyPageExtension      = "page-extension"
	keyStaticMode         = "static-mode"
	keyStateFile          = "state-file"
	keyTitle              = "title"
	keyPublish            = "publish"
)

// EnvFiles are loaded before the configuration is read. Variables already
// present in the environment are not overwritten.
var EnvFiles = []string{".env", ".env.local"}

// LoadEnv loads every existing file of EnvFiles from dir.
func LoadEnv(dir string) error {
	for _, name := range EnvFiles {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
		slog.Debug("Loaded environment file", slog.String("path", p))
	}
	return nil
}

// Load reads the configuration at path. The format follows the extension:
// .yaml and .yml are YAML, anything else TOML. ${VAR} references are
// expanded from the environment after the .env files of the config's
// directory are loaded. Relative directories in the file are resolved
// against the file's directory.
func Load(path string) (*Config, error) {
	dir := filepath.Dir(path)
	if err := LoadEnv(dir); err != nil {
		return nil, err
	}

	// #nosec G304 -- path is the user-selected configuration file
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	raw, err := decode(path, []byte(os.ExpandEnv(string(data))))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg, err := FromMap(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	cfg.resolvePaths(dir)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func decode(path string, data []byte) (map[string]any, error) {
	raw := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	default:
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// FromMap maps the known keys of raw onto the defaults.
func FromMap(raw map[string]any) (*Config, error) {
	cfg := Defaults()
	cfg.Params = raw
	v := values(raw)

	var err error
	set := func(e error) {
		if err == nil {
			err = e
		}
	}
	set(v.str(keyDocsDir, &cfg.DocsDir))
	set(v.str(keyBuildDir, &cfg.BuildDir))
	set(v.boolean(keyRecursive, &cfg.Recursive))
	set(v.str(keyTheme, &cfg.Theme))
	set(v.str(keyLocalTheme, &cfg.LocalTheme))
	set(v.boolean(keyTrailingSlashes, &cfg.TrailingSlashes))
	set(v.strings(keyMarkdownExtensions, &cfg.MarkdownExtensions))
	set(v.str(keyPageExtension, &cfg.PageExtension))
	set(v.str(keyStaticMode, &cfg.StaticMode))
	set(v.str(keyStateFile, &cfg.StateFile))
	set(v.str(keyTitle, &cfg.Title))
	if err != nil {
		return nil, err
	}

	cfg.PageExtension = strings.TrimPrefix(cfg.PageExtension, ".")
	cfg.StaticMode = strings.ToLower(strings.TrimSpace(cfg.StaticMode))

	if pub, ok := raw[keyPublish]; ok {
		table, ok := pub.(map[string]any)
		if !ok {
			return nil, &ValueError{Key: keyPublish, Reason: "must be a table"}
		}
		if err := cfg.Publish.fromMap(table); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func (p *Publish) fromMap(raw map[string]any) error {
	v := values(raw)
	v.prefix = keyPublish + "."
	for _, e := range []error{
		v.str("remote", &p.Remote),
		v.str("branch", &p.Branch),
		v.str("message", &p.Message),
		v.str("author-name", &p.AuthorName),
		v.str("author-email", &p.AuthorEmail),
		v.str("auth-type", &p.Auth.Type),
		v.str("username", &p.Auth.Username),
		v.str("password", &p.Auth.Password),
		v.str("token", &p.Auth.Token),
		v.str("key-path", &p.Auth.KeyPath),
	} {
		if e != nil {
			return e
		}
	}
	return nil
}

func (c *Config) resolvePaths(dir string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	c.DocsDir = abs(c.DocsDir)
	c.BuildDir = abs(c.BuildDir)
	c.Theme = abs(c.Theme)
	c.LocalTheme = abs(c.LocalTheme)
	c.StateFile = abs(c.StateFile)
}
