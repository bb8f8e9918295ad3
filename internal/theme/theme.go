// Package theme loads site themes: the page template, shortcode fragments,
// static assets and the manifest naming the extensions to activate.
package theme

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// Reserved names inside a theme.
const (
	PageTemplate = "page.html"
	ShortcodeDir = "shortcodes"
	StaticDir    = "static"
	ManifestFile = "theme.yaml"
)

// ErrMissingTemplate is returned when a page is rendered with a theme that has no page template.
var ErrMissingTemplate = errors.New("theme: page template missing")

// Manifest is the optional theme.yaml at the theme root.
type Manifest struct {
	Name       string         `yaml:"name"`
	Template   string         `yaml:"template"`
	Extensions []string       `yaml:"extensions"`
	Params     map[string]any `yaml:"params"`
}

// Theme is a loaded theme. Templates are parsed once and cloned for every
// execution, so the parsed set itself is never executed.
type Theme struct {
	Manifest Manifest
	fsys     fs.FS
	page     *template.Template
	frags    map[string]*template.Template
}

func checkDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("theme %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("theme %s: not a directory", dir)
	}
	return nil
}

// Load reads a theme from fsys. name is used when the manifest does not set one.
func Load(fsys fs.FS, name string) (*Theme, error) {
	t := &Theme{fsys: fsys, frags: map[string]*template.Template{}}

	if err := t.loadManifest(); err != nil {
		return nil, err
	}
	if t.Manifest.Name == "" {
		t.Manifest.Name = name
	}
	if t.Manifest.Template == "" {
		t.Manifest.Template = PageTemplate
	}

	if err := t.parsePage(); err != nil {
		return nil, err
	}
	if err := t.parseFragments(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Theme) loadManifest() error {
	data, err := fs.ReadFile(t.fsys, ManifestFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", ManifestFile, err)
	}
	if err := yaml.Unmarshal(data, &t.Manifest); err != nil {
		return fmt.Errorf("parse %s: %w", ManifestFile, err)
	}
	return nil
}

// parsePage parses every *.html at the theme root into one set so the page
// template can include the others as partials.
func (t *Theme) parsePage() error {
	matches, err := fs.Glob(t.fsys, "*.html")
	if err != nil {
		return fmt.Errorf("list templates: %w", err)
	}
	if len(matches) == 0 {
		return nil
	}
	set, err := template.New(t.Manifest.Template).Funcs(FuncMap(Bindings{})).ParseFS(t.fsys, "*.html")
	if err != nil {
		return fmt.Errorf("parse theme templates: %w", err)
	}
	if set.Lookup(t.Manifest.Template) == nil {
		return nil
	}
	t.page = set
	return nil
}

func (t *Theme) parseFragments() error {
	matches, err := fs.Glob(t.fsys, ShortcodeDir+"/*.html")
	if err != nil {
		return fmt.Errorf("list shortcodes: %w", err)
	}
	for _, match := range matches {
		name := strings.TrimSuffix(path.Base(match), path.Ext(match))
		src, err := fs.ReadFile(t.fsys, match)
		if err != nil {
			return fmt.Errorf("read shortcode %s: %w", match, err)
		}
		tpl, err := template.New(name).Funcs(FuncMap(Bindings{})).Parse(string(src))
		if err != nil {
			return fmt.Errorf("parse shortcode %s: %w", match, err)
		}
		t.frags[name] = tpl
	}
	return nil
}

// Name is the manifest name, or the directory name it was loaded from.
func (t *Theme) Name() string { return t.Manifest.Name }

// HasPageTemplate reports whether pages can be rendered.
func (t *Theme) HasPageTemplate() bool { return t.page != nil }

// ExecutePage renders the page template with data and per-page bindings.
func (t *Theme) ExecutePage(w io.Writer, data any, b Bindings) error {
	if t.page == nil {
		return fmt.Errorf("%w: %s in theme %s", ErrMissingTemplate, t.Manifest.Template, t.Manifest.Name)
	}
	tpl, err := t.page.Clone()
	if err != nil {
		return fmt.Errorf("clone page template: %w", err)
	}
	tpl.Funcs(FuncMap(b))
	if err := tpl.ExecuteTemplate(w, t.Manifest.Template, data); err != nil {
		return fmt.Errorf("execute %s: %w", t.Manifest.Template, err)
	}
	return nil
}

// Fragments lists the shortcode fragment names.
func (t *Theme) Fragments() []string {
	names := make([]string, 0, len(t.frags))
	for name := range t.frags {
		names = append(names, name)
	}
	return sortedCopy(names)
}

func (t *Theme) executeFragment(name string, data FragmentData, b Bindings) (string, error) {
	base, ok := t.frags[name]
	if !ok {
		return "", fmt.Errorf("no shortcode fragment %q", name)
	}
	tpl, err := base.Clone()
	if err != nil {
		return "", err
	}
	tpl.Funcs(FuncMap(b))
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Static returns the theme's static asset tree, if it has one.
func (t *Theme) Static() (fs.FS, bool) {
	info, err := fs.Stat(t.fsys, StaticDir)
	if err != nil || !info.IsDir() {
		return nil, false
	}
	sub, err := fs.Sub(t.fsys, StaticDir)
	if err != nil {
		return nil, false
	}
	return sub, true
}
