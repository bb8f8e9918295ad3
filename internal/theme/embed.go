package theme

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed all:default
var defaultFS embed.FS

// DefaultName is the name of the theme compiled into the binary.
const DefaultName = "default"

// Default loads the built-in theme.
func Default() (*Theme, error) {
	sub, err := fs.Sub(defaultFS, DefaultName)
	if err != nil {
		return nil, fmt.Errorf("default theme: %w", err)
	}
	return Load(sub, DefaultName)
}

// DefaultFS exposes the built-in theme files.
func DefaultFS() fs.FS {
	sub, _ := fs.Sub(defaultFS, DefaultName)
	return sub
}
