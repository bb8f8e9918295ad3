// Package urls computes output locations and page-relative links for the two
// output layouts: trailing-slash (every page is a directory holding an index
// file) and flat (every page is a single file).
package urls

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/yassg/internal/page"
)

const (
	DefaultExt = "html"
	indexName  = "index"
)

// Resolver maps logical page paths onto the output layout.
type Resolver struct {
	TrailingSlashes bool
	// Ext is the output file extension without the dot.
	Ext string
}

// New returns a resolver for the given layout; an empty ext means DefaultExt.
func New(trailingSlashes bool, ext string) Resolver {
	return Resolver{TrailingSlashes: trailingSlashes, Ext: ext}
}

func (r Resolver) ext() string {
	if r.Ext == "" {
		return DefaultExt
	}
	return strings.TrimPrefix(r.Ext, ".")
}

// Address returns the canonical site-relative address of a logical path.
// With file set, the result names the output file rather than the page.
func (r Resolver) Address(logical string, file bool) string {
	parts := segments(logical)
	if r.TrailingSlashes {
		if n := len(parts); n > 0 && parts[n-1] == indexName {
			parts = parts[:n-1]
		}
		if file {
			parts = append(parts, indexName+"."+r.ext())
		}
		return strings.Join(parts, "/")
	}

	if len(parts) == 0 {
		if file {
			return indexName + "." + r.ext()
		}
		return ""
	}
	parts[len(parts)-1] += "." + r.ext()
	return strings.Join(parts, "/")
}

// OutputFile is the file a page is written to below outDir.
func (r Resolver) OutputFile(outDir string, p *page.Page) string {
	return filepath.Join(outDir, filepath.FromSlash(r.Address(p.Path(), true)))
}

// Base is the directory, relative to the site root, that links on the active
// page are resolved against.
func (r Resolver) Base(active *page.Page) string {
	if active == nil {
		return ""
	}
	ref := r.Address(active.Path(), false)
	if !r.TrailingSlashes {
		ref = path.Dir(ref)
		if ref == "." {
			ref = ""
		}
	}
	return ref
}

// Rel returns the reference to target as seen from the active page. An empty
// target refers to the site root. In trailing-slash mode page references end in "/".
func (r Resolver) Rel(active *page.Page, target string, isPage bool) string {
	ref := r.Base(active)
	target = strings.Trim(target, "/")

	var rel string
	switch {
	case target == "" && ref == "":
		return ""
	case target == "":
		rel = strings.Repeat("../", strings.Count(ref, "/")+1)
	default:
		rel = relative(ref, target)
	}

	if r.TrailingSlashes && isPage && !strings.HasSuffix(rel, "/") {
		rel += "/"
	}
	return rel
}

// URLFor resolves a page or a site-relative path string against the active page.
func (r Resolver) URLFor(active *page.Page, target any) (string, error) {
	switch t := target.(type) {
	case *page.Page:
		if t == nil {
			return "", fmt.Errorf("url_for: nil page")
		}
		return r.Rel(active, r.Address(t.Path(), false), true), nil
	case string:
		return r.Rel(active, t, false), nil
	default:
		return "", fmt.Errorf("url_for: unsupported target type %T", target)
	}
}

func segments(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// relative is a slash-only equivalent of filepath.Rel for clean, root-relative paths.
func relative(base, target string) string {
	from, to := segments(base), segments(target)
	common := 0
	for common < len(from) && common < len(to) && from[common] == to[common] {
		common++
	}

	parts := make([]string, 0, len(from)-common+len(to)-common)
	for range from[common:] {
		parts = append(parts, "..")
	}
	parts = append(parts, to[common:]...)
	if len(parts) == 0 {
		return "."
	}
	return strings.Join(parts, "/")
}
