// Package site runs a complete build: load the theme and the page tree, run
// theme extensions, render, check links, persist state and publish.
package site

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/yassg/internal/config"
	"git.home.luguber.info/inful/yassg/internal/errors"
	"git.home.luguber.info/inful/yassg/internal/linkcheck"
	"git.home.luguber.info/inful/yassg/internal/logfields"
	"git.home.luguber.info/inful/yassg/internal/markdown"
	"git.home.luguber.info/inful/yassg/internal/metrics"
	"git.home.luguber.info/inful/yassg/internal/page"
	"git.home.luguber.info/inful/yassg/internal/preprocess"
	"git.home.luguber.info/inful/yassg/internal/publish"
	"git.home.luguber.info/inful/yassg/internal/render"
	"git.home.luguber.info/inful/yassg/internal/shortcode"
	"git.home.luguber.info/inful/yassg/internal/state"
	"git.home.luguber.info/inful/yassg/internal/theme"
	"git.home.luguber.info/inful/yassg/internal/tree"
	"git.home.luguber.info/inful/yassg/internal/urls"
)

// Request selects what a build does beyond rendering.
type Request struct {
	Config *config.Config
	// Check verifies the links of the rendered site.
	Check bool
	// Commit commits the build directory; Push commits and pushes it.
	Commit bool
	Push   bool
}

// Builder runs builds.
type Builder struct {
	recorder metrics.Recorder
	logger   *slog.Logger
	newID    func() string
}

// New returns a builder that records no metrics and logs to slog.Default().
func New() *Builder {
	return &Builder{
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
		newID:    uuid.NewString,
	}
}

// WithRecorder sets the metrics recorder.
func (b *Builder) WithRecorder(r metrics.Recorder) *Builder {
	if r != nil {
		b.recorder = r
	}
	return b
}

// WithLogger sets the logger.
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	if l != nil {
		b.logger = l
	}
	return b
}

// Build runs the pipeline. The returned report is filled as far as the
// build got, also on error.
func (b *Builder) Build(ctx context.Context, req Request) (*Report, error) {
	cfg := req.Config
	if cfg == nil {
		cfg = config.Defaults()
	}
	report := &Report{BuildID: b.newID(), StartTime: time.Now()}
	logger := b.logger.With(logfields.BuildID(report.BuildID))
	run := &buildRun{b: b, cfg: cfg, req: req, report: report, logger: logger}

	err := run.execute(ctx)

	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)
	switch {
	case err == nil:
		report.Status = StatusSuccess
	case errors.IsCategory(err, errors.CategoryRuntime):
		report.Status = StatusCanceled
	default:
		report.Status = StatusFailed
	}
	run.persistBuild(ctx)
	run.close()

	b.recorder.ObserveBuildDuration(report.Duration)
	b.recorder.IncBuildOutcome(string(report.Status))
	logger.Info("Build finished",
		slog.String("status", string(report.Status)),
		logfields.Count(report.Pages),
		logfields.DurationMS(float64(report.Duration.Milliseconds())))
	return report, err
}

type buildRun struct {
	b      *Builder
	cfg    *config.Config
	req    Request
	report *Report
	logger *slog.Logger

	theme    *theme.Theme
	root     *page.Page
	store    *state.Store
	resolver urls.Resolver
}

func (r *buildRun) execute(ctx context.Context) error {
	r.resolver = urls.New(r.cfg.TrailingSlashes, r.cfg.PageExtension)

	if err := r.stage(ctx, StageTheme, r.loadTheme); err != nil {
		return err
	}
	if err := r.stage(ctx, StageTree, r.loadTree); err != nil {
		return err
	}
	if err := r.stage(ctx, StageState, r.openState); err != nil {
		return err
	}

	md := markdown.New(markdown.Options{Extensions: r.cfg.MarkdownExtensions})
	if unknown := markdown.Unknown(r.cfg.MarkdownExtensions); len(unknown) > 0 {
		r.logger.Warn("Ignoring unknown markdown extensions", slog.Any("extensions", unknown))
	}

	shortcodes := shortcode.NewRegistry()
	if err := shortcode.RegisterBuiltins(shortcodes); err != nil {
		return Classify(StageExtensions, err)
	}
	hook := &theme.HookContext{
		Root:       r.root,
		Theme:      r.theme,
		Shortcodes: shortcodes,
		Resolver:   r.resolver,
		Logger:     r.logger,
	}

	renderer := render.New(render.Options{
		Theme:        r.theme,
		Resolver:     r.resolver,
		Markdown:     md,
		Preprocessor: preprocess.New(),
		Shortcodes:   shortcodes,
		StaticMode:   render.StaticMode(r.cfg.StaticMode),
		State:        r.store,
		BuildID:      r.report.BuildID,
		Recorder:     r.b.recorder,
		Logger:       r.logger,
	})

	err := r.stage(ctx, StageExtensions, func(ctx context.Context) error {
		if err := r.theme.RegisterShortcodes(shortcodes, renderer.MarkdownHTML); err != nil {
			return err
		}
		return r.theme.RunBeforeRender(ctx, hook)
	})
	if err != nil {
		return err
	}

	err = r.stage(ctx, StageRender, func(ctx context.Context) error {
		renderer.SetSite(theme.SiteData{
			Title:   r.cfg.Title,
			BuildID: r.report.BuildID,
			Config:  r.cfg.Params,
			Params:  r.theme.Manifest.Params,
			Data:    hook.Data,
		})
		stats, err := renderer.Render(ctx, r.root, r.cfg.BuildDir)
		r.report.addRender(stats)
		return err
	})
	if err != nil {
		return err
	}
	for _, p := range r.report.Changed {
		r.logger.Info("Page changed", logfields.Page(p))
	}

	if r.req.Check {
		if err := r.stage(ctx, StageLinkCheck, r.checkLinks); err != nil {
			return err
		}
	}
	if r.req.Commit || r.req.Push {
		if err := r.stage(ctx, StagePublish, r.publish); err != nil {
			return err
		}
	}
	return nil
}

// stage times fn, records its result and classifies its error.
func (r *buildRun) stage(ctx context.Context, s Stage, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return Classify(s, err)
	}
	start := time.Now()
	logger := r.logger.With(logfields.Stage(string(s)))
	logger.Debug("Stage started")

	err := fn(ctx)
	d := time.Since(start)
	r.b.recorder.ObserveStageDuration(string(s), d)

	result := metrics.ResultSuccess
	if err != nil {
		err = Classify(s, err)
		result = metrics.ResultFatal
		if errors.IsCategory(err, errors.CategoryRuntime) {
			result = metrics.ResultCanceled
		}
	}
	r.b.recorder.IncStageResult(string(s), result)
	r.report.Stages = append(r.report.Stages, StageTiming{Stage: s, Duration: d, Result: string(result)})
	logger.Debug("Stage finished", logfields.DurationMS(float64(d.Milliseconds())), slog.String("result", string(result)))
	return err
}

func (r *buildRun) loadTheme(context.Context) error {
	th, err := LoadTheme(r.cfg)
	if err != nil {
		return err
	}
	r.theme = th
	r.logger.Debug("Loaded theme", logfields.Theme(th.Name()))
	return nil
}

func (r *buildRun) loadTree(context.Context) error {
	root, err := LoadTree(r.cfg, r.logger)
	if err != nil {
		return err
	}
	r.root = root
	return nil
}

func (r *buildRun) openState(context.Context) error {
	path := r.cfg.StateFile
	if path == "" {
		path = state.DefaultPath(r.cfg.BuildDir)
	}
	store, err := state.Open(path)
	if err != nil {
		return err
	}
	r.store = store
	return nil
}

func (r *buildRun) checkLinks(ctx context.Context) error {
	links, err := linkcheck.Check(ctx, r.cfg.BuildDir, linkcheck.Options{Ext: r.cfg.PageExtension, Logger: r.logger})
	if err != nil {
		return err
	}
	r.report.Links = &links
	if !links.OK() {
		for _, broken := range links.Broken {
			r.logger.Warn("Broken link", logfields.Path(broken.File), slog.String("url", broken.URL))
		}
		return errors.LinkCheckFailed(len(links.Broken))
	}
	return nil
}

func (r *buildRun) publish(ctx context.Context) error {
	pub := r.cfg.Publish
	res, err := publish.Commit(r.cfg.BuildDir, pub.Message, publish.Signature{Name: pub.AuthorName, Email: pub.AuthorEmail})
	if err != nil {
		return errors.PublishFailed("commit", err)
	}
	r.report.Commit = res
	if !r.req.Push {
		return nil
	}
	auth := publish.Auth{
		Type:     pub.Auth.Type,
		Username: pub.Auth.Username,
		Password: pub.Auth.Password,
		Token:    pub.Auth.Token,
		KeyPath:  pub.Auth.KeyPath,
	}
	if err := publish.Push(ctx, r.cfg.BuildDir, pub.Remote, pub.Branch, auth); err != nil {
		return errors.PublishFailed("push", err)
	}
	r.report.Pushed = true
	return nil
}

func (r *buildRun) persistBuild(ctx context.Context) {
	if r.store == nil {
		return
	}
	err := r.store.RecordBuild(context.WithoutCancel(ctx), state.Build{
		ID:         r.report.BuildID,
		StartedAt:  r.report.StartTime,
		FinishedAt: r.report.EndTime,
		Status:     string(r.report.Status),
		Pages:      r.report.Pages,
		Changed:    len(r.report.Changed),
	})
	if err != nil {
		r.logger.Warn("Failed to record build", logfields.Error(err))
	}
}

func (r *buildRun) close() {
	if r.store == nil {
		return
	}
	if err := r.store.Close(); err != nil {
		r.logger.Warn("Failed to close state store", logfields.Error(err))
	}
}

// LoadTheme loads the configured theme, or the built-in one, with the
// project's local theme directory layered on top.
func LoadTheme(cfg *config.Config) (*theme.Theme, error) {
	return theme.LoadLayered(cfg.Theme, cfg.LocalTheme)
}

// LoadTree builds and sorts the page tree of the configured content directory.
func LoadTree(cfg *config.Config, logger *slog.Logger) (*page.Page, error) {
	pages, err := tree.Build(cfg.DocsDir, tree.Options{Recursive: cfg.Recursive, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", cfg.DocsDir, err)
	}
	root, err := page.NewRoot(pages...)
	if err != nil {
		return nil, err
	}
	root.Sort()
	return root, nil
}
