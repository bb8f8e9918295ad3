// Package tree assembles the page tree from a content directory.
package tree

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/yassg/internal/frontmatter"
	"git.home.luguber.info/inful/yassg/internal/logfields"
	"git.home.luguber.info/inful/yassg/internal/page"
)

const (
	DefaultIndexName   = "index"
	DefaultMarkdownExt = ".md"
	sidecarExt         = ".toml"
)

// Options controls how a content directory is scanned.
type Options struct {
	// Recursive expands sub-directories into child pages.
	Recursive bool
	// IndexName is the basename of the document that defines a directory's own page.
	IndexName string
	// MarkdownExt is the extension, including the dot, of source documents.
	MarkdownExt string
	Logger      *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.IndexName == "" {
		o.IndexName = DefaultIndexName
	}
	if o.MarkdownExt == "" {
		o.MarkdownExt = DefaultMarkdownExt
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Build scans dir and returns its top-level pages, unattached and in no
// particular order. The index document of the top-level directory is an
// ordinary page named after IndexName; inside sub-directories it defines the
// directory's own page instead.
func Build(dir string, opts Options) ([]*page.Page, error) {
	b := &builder{
		opts:    opts.withDefaults(),
		visited: map[string]struct{}{},
	}
	return b.build(dir, false)
}

type builder struct {
	opts    Options
	visited map[string]struct{}
}

type listing struct {
	pages []*page.Page
	names map[string]*page.Page
}

func (l *listing) add(p *page.Page) {
	l.pages = append(l.pages, p)
	l.names[p.Name] = p
}

func (b *builder) build(dir string, skipIndex bool) ([]*page.Page, error) {
	real, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	if _, seen := b.visited[real]; seen {
		b.opts.Logger.Warn("Skipping already visited directory", logfields.Path(dir), slog.String("real_path", real))
		return nil, nil
	}
	b.visited[real] = struct{}{}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	out := &listing{names: map[string]*page.Page{}}
	var dirs []string

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		full := filepath.Join(dir, name)

		isDir, err := isDirectory(full, entry)
		if err != nil {
			b.opts.Logger.Warn("Skipping unresolvable entry", logfields.Path(full), logfields.Error(err))
			continue
		}
		if isDir {
			dirs = append(dirs, name)
			continue
		}

		if !strings.HasSuffix(name, b.opts.MarkdownExt) {
			continue
		}
		base := strings.TrimSuffix(name, b.opts.MarkdownExt)
		if skipIndex && base == b.opts.IndexName {
			continue
		}
		p, err := b.readPage(full, base)
		if err != nil {
			return nil, err
		}
		out.add(p)
	}

	// Directory index documents only claim names not already taken by a
	// same-named file, so file details win over everything the directory carries.
	for _, name := range dirs {
		indexPath := filepath.Join(dir, name, b.opts.IndexName+b.opts.MarkdownExt)
		if _, err := os.Stat(indexPath); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("stat %s: %w", indexPath, err)
		}
		if existing, ok := out.names[name]; ok {
			b.opts.Logger.Warn("Index document shadowed by same-named page",
				logfields.Path(indexPath), logfields.Source(existing.SourcePath))
			continue
		}
		p, err := b.readPage(indexPath, name)
		if err != nil {
			return nil, err
		}
		out.add(p)
	}

	if !b.opts.Recursive {
		return out.pages, nil
	}

	for _, name := range dirs {
		sub := filepath.Join(dir, name)
		children, err := b.build(sub, true)
		if err != nil {
			return nil, err
		}
		if len(children) == 0 {
			continue
		}

		parent, ok := out.names[name]
		if !ok {
			details, err := b.loadSidecar(dir, name)
			if err != nil {
				return nil, err
			}
			parent = page.NewFolder(name, details)
			out.add(parent)
		}
		if err := parent.AddChild(children...); err != nil {
			return nil, err
		}
	}

	return out.pages, nil
}

// readPage reads a source document into a detached page named name.
func (b *builder) readPage(path, name string) (*page.Page, error) {
	source, err := os.ReadFile(path) // #nosec G304 -- path comes from the content directory listing
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	body, details, err := frontmatter.Parse(path, source)
	if err != nil {
		return nil, err
	}

	// An empty content-from keeps the document's own body.
	if ref, ok := details[page.DetailContentFrom]; ok && ref != "" {
		rel, isString := ref.(string)
		if !isString {
			return nil, &frontmatter.DetailsError{
				Path: path,
				Err:  fmt.Errorf("%s must be a string, got %T", page.DetailContentFrom, ref),
			}
		}
		from := filepath.Join(filepath.Dir(path), filepath.FromSlash(rel))
		data, err := os.ReadFile(from) // #nosec G304 -- content-from is resolved inside the content tree
		if err != nil {
			return nil, fmt.Errorf("read content-from of %s: %w", path, err)
		}
		body = data
		b.opts.Logger.Debug("Loaded content from sibling file", logfields.Source(path), logfields.Path(from))
	}

	p := page.New(name, string(body), details)
	p.SourcePath = path
	return p, nil
}

// loadSidecar looks for <name>.toml next to the directory, then index.toml inside it.
func (b *builder) loadSidecar(dir, name string) (map[string]any, error) {
	candidates := []string{
		filepath.Join(dir, name+sidecarExt),
		filepath.Join(dir, name, b.opts.IndexName+sidecarExt),
	}
	for _, candidate := range candidates {
		details, found, err := frontmatter.LoadDetailsFile(candidate)
		if err != nil {
			return nil, err
		}
		if found {
			return details, nil
		}
	}
	return nil, nil
}

// isDirectory follows symlinks so linked directories are expanded too.
func isDirectory(path string, entry fs.DirEntry) (bool, error) {
	if entry.Type()&fs.ModeSymlink == 0 {
		return entry.IsDir(), nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.IsDir(), nil
}
