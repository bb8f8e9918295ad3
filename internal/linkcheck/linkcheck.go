// Package linkcheck verifies the relative links of a rendered site: every
// local href or src must name a file that exists in the build directory.
package linkcheck

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"

	"git.home.luguber.info/inful/yassg/internal/logfields"
)

// Options configures Check.
type Options struct {
	// Ext is the page extension; a link to a directory resolves to index.<Ext>.
	Ext    string
	Logger *slog.Logger
}

// Broken is a link whose target does not exist.
type Broken struct {
	// File is the slash-separated document path relative to the build directory.
	File string
	URL  string
	Tag  string
	// Target is the slash-separated path the link resolved to.
	Target string
}

func (b Broken) String() string {
	return fmt.Sprintf("%s: <%s> %s -> %s", b.File, b.Tag, b.URL, b.Target)
}

// Report summarizes a check.
type Report struct {
	Files  int
	Links  int
	Broken []Broken
}

// OK reports whether no broken links were found.
func (r Report) OK() bool { return len(r.Broken) == 0 }

// Check walks outDir, parses every document with the page extension and
// resolves its local links. Hidden directories are not scanned.
func Check(ctx context.Context, outDir string, opts Options) (Report, error) {
	if opts.Ext == "" {
		opts.Ext = "html"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var report Report
	root := os.DirFS(outDir)
	err := fs.WalkDir(root, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if p != "." && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if path.Ext(p) != "."+opts.Ext {
			return nil
		}
		broken, links, err := checkFile(root, p, opts.Ext)
		if err != nil {
			return fmt.Errorf("check %s: %w", p, err)
		}
		report.Files++
		report.Links += links
		for _, b := range broken {
			logger.Debug("Broken link", logfields.Path(b.File), "url", b.URL, "target", b.Target)
		}
		report.Broken = append(report.Broken, broken...)
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("link check %s: %w", outDir, err)
	}
	return report, nil
}

func checkFile(root fs.FS, name, ext string) ([]Broken, int, error) {
	f, err := root.Open(name)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = f.Close() }()

	links, err := Extract(f)
	if err != nil {
		return nil, 0, err
	}

	var broken []Broken
	checked := 0
	for _, l := range links {
		p, ok := localPath(l.URL)
		if !ok {
			continue
		}
		checked++
		target := resolve(name, p)
		if !exists(root, target, strings.HasSuffix(p, "/"), ext) {
			broken = append(broken, Broken{File: name, URL: l.URL, Tag: l.Tag, Target: target})
		}
	}
	return broken, checked, nil
}

// resolve joins a link path onto the directory of the document it was found
// in. Absolute paths are taken relative to the build directory.
func resolve(doc, link string) string {
	var joined string
	if strings.HasPrefix(link, "/") {
		joined = path.Clean(strings.TrimPrefix(link, "/"))
	} else {
		joined = path.Join(path.Dir(doc), link)
	}
	if joined == "" {
		return "."
	}
	return joined
}

func exists(root fs.FS, target string, dirOnly bool, ext string) bool {
	if target == ".." || strings.HasPrefix(target, "../") {
		return false
	}
	info, err := fs.Stat(root, target)
	if err != nil {
		return false
	}
	if !info.IsDir() {
		return !dirOnly
	}
	_, err = fs.Stat(root, path.Join(target, "index."+ext))
	return err == nil
}
