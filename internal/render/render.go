// Package render walks a sorted page tree and writes one output file per page
// with content: preprocess, convert Markdown, execute the theme's page
// template, write. Static assets are mirrored once after the walk.
package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/yassg/internal/fingerprint"
	"git.home.luguber.info/inful/yassg/internal/logfields"
	"git.home.luguber.info/inful/yassg/internal/markdown"
	"git.home.luguber.info/inful/yassg/internal/metrics"
	"git.home.luguber.info/inful/yassg/internal/mirror"
	"git.home.luguber.info/inful/yassg/internal/page"
	"git.home.luguber.info/inful/yassg/internal/preprocess"
	"git.home.luguber.info/inful/yassg/internal/shortcode"
	"git.home.luguber.info/inful/yassg/internal/state"
	"git.home.luguber.info/inful/yassg/internal/theme"
	"git.home.luguber.info/inful/yassg/internal/urls"
)

// StaticMode selects how theme assets are mirrored.
type StaticMode string

const (
	StaticReplace     StaticMode = "replace"
	StaticIncremental StaticMode = "incremental"
)

// Options wires a Renderer. Theme is required; everything else has a default.
type Options struct {
	Theme        *theme.Theme
	Resolver     urls.Resolver
	Markdown     *markdown.Converter
	Preprocessor *preprocess.Preprocessor
	Shortcodes   *shortcode.Registry
	Site         theme.SiteData
	StaticMode   StaticMode
	// State, when set, records fingerprints and lets unchanged outputs be skipped.
	State    *state.Store
	BuildID  string
	Recorder metrics.Recorder
	Logger   *slog.Logger
}

// Stats summarizes a render.
type Stats struct {
	Written   int
	Unchanged int
	Folders   int
	// Changed lists the pages whose source changed since the recorded build.
	Changed []string
	// Removed lists outputs recorded by an earlier build that no page produced this time.
	Removed []string
	Static  mirror.Stats
}

// Pages is the number of pages that produced output.
func (s Stats) Pages() int { return s.Written + s.Unchanged }

// Renderer emits a page tree.
type Renderer struct {
	opts Options
}

// New returns a renderer.
func New(opts Options) *Renderer {
	if opts.Markdown == nil {
		opts.Markdown = markdown.New(markdown.Options{})
	}
	if opts.Preprocessor == nil {
		opts.Preprocessor = preprocess.New()
	}
	if opts.Shortcodes == nil {
		opts.Shortcodes = shortcode.NewRegistry()
	}
	if opts.StaticMode == "" {
		opts.StaticMode = StaticReplace
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Renderer{opts: opts}
}

// SetSite replaces the site data handed to every page template.
func (r *Renderer) SetSite(site theme.SiteData) { r.opts.Site = site }

// Render writes every page below root into outDir in pre-order, then mirrors
// the theme's static assets to <outDir>/static.
func (r *Renderer) Render(ctx context.Context, root *page.Page, outDir string) (Stats, error) {
	if r.opts.Theme == nil {
		return Stats{}, fmt.Errorf("render: no theme")
	}
	var stats Stats
	for _, child := range root.Children {
		if err := r.renderTree(ctx, child, root, outDir, &stats); err != nil {
			return stats, err
		}
	}

	if r.opts.State != nil && r.opts.BuildID != "" {
		removed, err := r.opts.State.Prune(ctx, r.opts.BuildID)
		if err != nil {
			return stats, err
		}
		stats.Removed = removed
	}

	static, err := r.mirrorStatic(outDir)
	if err != nil {
		return stats, err
	}
	stats.Static = static
	r.opts.Recorder.SetStaticFiles(static.Copied, static.Skipped)
	return stats, nil
}

func (r *Renderer) renderTree(ctx context.Context, p, root *page.Page, outDir string, stats *Stats) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	pc := &PageContext{Page: p, Resolver: r.opts.Resolver}
	if err := r.emit(ctx, pc, root, outDir, stats); err != nil {
		return fmt.Errorf("render %s: %w", p.Path(), err)
	}
	for _, child := range p.Children {
		if err := r.renderTree(ctx, child, root, outDir, stats); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) emit(ctx context.Context, pc *PageContext, root *page.Page, outDir string, stats *Stats) error {
	out := pc.Resolver.OutputFile(outDir, pc.Page)
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil { //nolint:gosec // public site output
		return err
	}
	if !pc.Page.HasContent() {
		stats.Folders++
		r.opts.Recorder.IncPageOutcome(metrics.PageFolder)
		return nil
	}
	if !r.opts.Theme.HasPageTemplate() {
		return fmt.Errorf("%w: %s in theme %s", theme.ErrMissingTemplate, r.opts.Theme.Manifest.Template, r.opts.Theme.Name())
	}

	data, err := r.RenderPage(pc, root)
	if err != nil {
		return err
	}

	rel, err := filepath.Rel(outDir, out)
	if err != nil {
		return err
	}
	rel = filepath.ToSlash(rel)
	rec := state.PageRecord{Output: rel, Page: pc.Page.Path(), Checksum: state.Checksum(data), BuildID: r.opts.BuildID}
	rec.Fingerprint, err = fingerprint.Page(pc.Page)
	if err != nil {
		return err
	}

	unchanged, err := r.compare(ctx, rec, out, stats)
	if err != nil {
		return err
	}
	if unchanged {
		stats.Unchanged++
		r.opts.Recorder.IncPageOutcome(metrics.PageUnchanged)
		r.opts.Logger.Debug("Output unchanged", logfields.Page(rec.Page), logfields.Output(rel))
	} else {
		// #nosec G306 -- rendered pages are public site output
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return err
		}
		stats.Written++
		r.opts.Recorder.IncPageOutcome(metrics.PageWritten)
		r.opts.Logger.Debug("Wrote page", logfields.Page(rec.Page), logfields.Output(rel))
	}

	if r.opts.State != nil {
		return r.opts.State.Put(ctx, rec)
	}
	return nil
}

// compare checks rec against the previous build. It records changed sources
// in stats and reports whether the existing output can be kept.
func (r *Renderer) compare(ctx context.Context, rec state.PageRecord, out string, stats *Stats) (bool, error) {
	if r.opts.State == nil {
		return false, nil
	}
	prev, found, err := r.opts.State.Get(ctx, rec.Output)
	if err != nil {
		return false, err
	}
	if !found || prev.Fingerprint != rec.Fingerprint {
		stats.Changed = append(stats.Changed, rec.Page)
	}
	if !found || prev.Checksum != rec.Checksum {
		return false, nil
	}
	if _, err := os.Stat(out); err != nil {
		return false, nil //nolint:nilerr // a missing output is rewritten
	}
	return true, nil
}

// RenderPage produces the output document for the page in pc.
func (r *Renderer) RenderPage(pc *PageContext, root *page.Page) ([]byte, error) {
	body, err := r.opts.Preprocessor.Process(pc.Page.Content(), &preprocess.Context{
		Page:       pc.Page,
		Resolver:   pc.Resolver,
		Shortcodes: r.opts.Shortcodes,
		Logger:     r.opts.Logger,
	})
	if err != nil {
		return nil, err
	}

	converted, err := r.opts.Markdown.Render([]byte(body))
	if err != nil {
		return nil, err
	}

	data := theme.PageData{
		Page:     pc.Page,
		Root:     root,
		Title:    pc.Page.Title(),
		Content:  template.HTML(converted.HTML), //nolint:gosec // converter output is trusted page HTML
		Headings: converted.Headings,
		Site:     r.opts.Site,
	}
	bindings := theme.Bindings{Page: pc.Page, URLFor: pc.URLFor, Markdown: r.MarkdownHTML}

	var buf bytes.Buffer
	if err := r.opts.Theme.ExecutePage(&buf, data, bindings); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarkdownHTML converts a snippet for use inside templates.
func (r *Renderer) MarkdownHTML(src string) (template.HTML, error) {
	out, err := r.opts.Markdown.Convert([]byte(src))
	if err != nil {
		return "", err
	}
	return template.HTML(out), nil //nolint:gosec // converter output is trusted page HTML
}

func (r *Renderer) mirrorStatic(outDir string) (mirror.Stats, error) {
	src, ok := r.opts.Theme.Static()
	if !ok {
		return mirror.Stats{}, nil
	}
	dst := filepath.Join(outDir, theme.StaticDir)
	var (
		stats mirror.Stats
		err   error
	)
	if r.opts.StaticMode == StaticIncremental {
		stats, err = mirror.Update(src, dst)
	} else {
		stats, err = mirror.Replace(src, dst)
	}
	if err != nil {
		return stats, err
	}
	r.opts.Logger.Debug("Mirrored static assets", logfields.Theme(r.opts.Theme.Name()), logfields.Count(stats.Copied))
	return stats, nil
}
