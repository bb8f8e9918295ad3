// Package mirror copies a theme's static asset tree into the build directory.
package mirror

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Tolerance is how much newer a source file must be before Update copies it
// over an existing destination.
const Tolerance = time.Second

// Stats counts what a mirror run did.
type Stats struct {
	Copied  int
	Skipped int
}

// Replace removes dst and copies the whole of src into it.
func Replace(src fs.FS, dst string) (Stats, error) {
	if err := os.RemoveAll(dst); err != nil {
		return Stats{}, fmt.Errorf("clear %s: %w", dst, err)
	}
	return walk(src, dst, func(fs.FileInfo, string) (bool, error) { return true, nil })
}

// Update copies the files of src that are missing from dst or newer than
// their copy by more than Tolerance. Files only present in dst are kept.
// Sources without modification times (embedded trees) are compared by size.
func Update(src fs.FS, dst string) (Stats, error) {
	return walk(src, dst, stale)
}

func stale(info fs.FileInfo, target string) (bool, error) {
	existing, err := os.Stat(target)
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	if info.ModTime().IsZero() {
		return existing.Size() != info.Size(), nil
	}
	return info.ModTime().Sub(existing.ModTime()) > Tolerance, nil
}

func walk(src fs.FS, dst string, needsCopy func(fs.FileInfo, string) (bool, error)) (Stats, error) {
	var stats Stats
	err := fs.WalkDir(src, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		target := filepath.Join(dst, filepath.FromSlash(p))
		if d.IsDir() {
			return os.MkdirAll(target, 0o750)
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		ok, err := needsCopy(info, target)
		if err != nil {
			return err
		}
		if !ok {
			stats.Skipped++
			return nil
		}
		if err := copyFile(src, p, target, info.ModTime()); err != nil {
			return err
		}
		stats.Copied++
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("mirror to %s: %w", dst, err)
	}
	return stats, nil
}

// copyFile copies one file and carries its modification time over.
func copyFile(src fs.FS, name, dst string, modTime time.Time) error {
	in, err := src.Open(name)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	// #nosec G304 -- dst is derived from the build directory and a walked relative path
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	if modTime.IsZero() {
		return nil
	}
	return os.Chtimes(dst, modTime, modTime)
}
