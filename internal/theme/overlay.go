package theme

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Overlay layers upper over lower. A file in upper hides the file with the
// same path in lower; directory listings are merged.
func Overlay(upper, lower fs.FS) fs.FS {
	return overlayFS{upper: upper, lower: lower}
}

type overlayFS struct {
	upper fs.FS
	lower fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	f, err := o.upper.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return o.lower.Open(name)
	}
	return f, err
}

func (o overlayFS) ReadDir(name string) ([]fs.DirEntry, error) {
	upper, uerr := fs.ReadDir(o.upper, name)
	lower, lerr := fs.ReadDir(o.lower, name)
	switch {
	case uerr != nil && !errors.Is(uerr, fs.ErrNotExist):
		return nil, uerr
	case lerr != nil && !errors.Is(lerr, fs.ErrNotExist):
		return nil, lerr
	case uerr != nil && lerr != nil:
		return nil, uerr
	}

	merged := make(map[string]fs.DirEntry, len(upper)+len(lower))
	for _, e := range lower {
		merged[e.Name()] = e
	}
	for _, e := range upper {
		merged[e.Name()] = e
	}
	out := make([]fs.DirEntry, 0, len(merged))
	for _, e := range merged {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}

// LoadLayered loads the theme in dir, or the built-in theme when dir is
// empty, with the files of localDir layered on top when that directory
// exists. Local page templates, partials, shortcodes/ and static/ files
// replace the base theme's files of the same name.
func LoadLayered(dir, localDir string) (*Theme, error) {
	base, name := DefaultFS(), DefaultName
	if dir != "" {
		if err := checkDir(dir); err != nil {
			return nil, err
		}
		base, name = os.DirFS(dir), filepath.Base(dir)
	}

	local, err := localTheme(dir, localDir)
	if err != nil {
		return nil, err
	}
	if local == nil {
		return Load(base, name)
	}
	return Load(Overlay(local, base), name)
}

func localTheme(dir, localDir string) (fs.FS, error) {
	if localDir == "" {
		return nil, nil
	}
	info, err := os.Stat(localDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("local theme %s: %w", localDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("local theme %s: not a directory", localDir)
	}
	if dir != "" && sameDir(dir, localDir) {
		return nil, nil
	}
	return os.DirFS(localDir), nil
}

func sameDir(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
