// Package config loads yassg configuration from TOML or YAML files.
//
// Files are decoded into a plain map first; known keys are then mapped onto
// Config and the full map stays available to templates as .Site.Config.
package config

import (
	"fmt"
	"slices"
)

// DefaultFile is the configuration file looked up when none is named.
const DefaultFile = "yassg.toml"

// DefaultLocalTheme is the project theme directory, next to the configuration file.
const DefaultLocalTheme = "theme"

// Static asset modes.
const (
	StaticReplace     = "replace"
	StaticIncremental = "incremental"
)

// Config is the typed view of a configuration file.
type Config struct {
	// Path is the file the configuration was read from; empty for defaults.
	Path string

	DocsDir   string
	BuildDir  string
	Recursive bool
	Theme     string
	// LocalTheme is a project theme directory layered over Theme when it exists.
	LocalTheme         string
	TrailingSlashes    bool
	MarkdownExtensions []string
	PageExtension      string
	StaticMode         string
	StateFile          string
	Title              string
	Publish            Publish

	// Params is the raw decoded file.
	Params map[string]any
}

// Publish configures commit and push of the build directory.
type Publish struct {
	Remote      string
	Branch      string
	Message     string
	AuthorName  string
	AuthorEmail string
	Auth        Auth
}

// Auth holds push credentials. Type is none, token, basic or ssh.
type Auth struct {
	Type     string
	Username string
	Password string
	Token    string
	KeyPath  string
}

// Defaults returns the configuration used when no file exists.
func Defaults() *Config {
	return &Config{
		DocsDir:            "content",
		BuildDir:           "build",
		Recursive:          true,
		LocalTheme:         DefaultLocalTheme,
		TrailingSlashes:    true,
		MarkdownExtensions: []string{"toc", "extra"},
		PageExtension:      "html",
		StaticMode:         StaticReplace,
		Publish: Publish{
			Remote:  "origin",
			Message: "Update site",
		},
		Params: map[string]any{},
	}
}

// Validate checks values that have a closed set of choices.
func (c *Config) Validate() error {
	if !slices.Contains([]string{StaticReplace, StaticIncremental}, c.StaticMode) {
		return &ValueError{Key: keyStaticMode, Reason: fmt.Sprintf("must be %q or %q, got %q", StaticReplace, StaticIncremental, c.StaticMode)}
	}
	if c.PageExtension == "" {
		return &ValueError{Key: keyPageExtension, Reason: "must not be empty"}
	}
	if c.DocsDir == "" {
		return &ValueError{Key: keyDocsDir, Reason: "must not be empty"}
	}
	if c.BuildDir == "" {
		return &ValueError{Key: keyBuildDir, Reason: "must not be empty"}
	}
	switch c.Publish.Auth.Type {
	case "", "none", "token", "basic", "ssh":
	default:
		return &ValueError{Key: "publish.auth-type", Reason: fmt.Sprintf("unsupported type %q", c.Publish.Auth.Type)}
	}
	return nil
}

// ValueError reports a key whose value cannot be used.
type ValueError struct {
	Key    string
	Reason string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("config key %s: %s", e.Key, e.Reason)
}
