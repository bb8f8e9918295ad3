package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const exampleTOML = `# yassg configuration
title = "My Site"

# Source documents and output location, relative to this file.
docs-dir = "content"
build-dir = "build"
recursive = true

# Theme directory; leave empty for the built-in theme.
theme = ""
# Project theme files layered over the theme above, when the directory exists.
local-theme = "theme"

# true: about/index.html, linked as about/ ; false: about.html
trailing-slashes = true
page-extension = "html"
markdown-extensions = ["toc", "extra"]

# replace: recreate build/static on every build; incremental: copy newer files only
static-mode = "replace"

# Build state database; defaults to <build-dir>/.yassg/state.db
# state-file = ".yassg/state.db"

[publish]
remote = "origin"
message = "Update site"
# auth-type = "token"
# token = "${YASSG_GIT_TOKEN}"
`

const exampleYAML = `# yassg configuration
title: My Site
docs-dir: content
build-dir: build
recursive: true
theme: ""
local-theme: theme
trailing-slashes: true
page-extension: html
markdown-extensions: [toc, extra]
static-mode: replace
publish:
  remote: origin
  message: Update site
`

// Init writes an example configuration file, in YAML when path ends in
// .yaml or .yml and TOML otherwise.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
	}
	content := exampleTOML
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		content = exampleYAML
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
