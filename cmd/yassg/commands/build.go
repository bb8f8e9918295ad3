package commands

import (
	"git.home.luguber.info/inful/yassg/internal/config"
	"git.home.luguber.info/inful/yassg/internal/logfields"
	"git.home.luguber.info/inful/yassg/internal/metrics"
	"git.home.luguber.info/inful/yassg/internal/site"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	BuildDir          string `arg:"" optional:"" name:"build-dir" help:"Output directory (overrides build-dir from the configuration)"`
	Commit            bool   `help:"Commit the build directory after a successful build"`
	Push              bool   `help:"Commit and push the build directory"`
	Check             bool   `help:"Check links of the rendered site"`
	MetricsFile       string `name:"metrics-file" help:"Write Prometheus metrics to this file (textfile collector format)"`
	IncrementalStatic bool   `name:"incremental-static" help:"Copy only new or newer theme static files"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	logger := g.logger()
	cfg, err := loadConfig(root.Config, logger)
	if err != nil {
		return err
	}
	if b.BuildDir != "" {
		cfg.BuildDir = b.BuildDir
	}
	if b.IncrementalStatic {
		cfg.StaticMode = config.StaticIncremental
	}

	builder := site.New().WithLogger(logger)
	var recorder *metrics.PrometheusRecorder
	if b.MetricsFile != "" {
		recorder = metrics.NewPrometheusRecorder(nil)
		builder.WithRecorder(recorder)
	}

	logger.Info("Starting build", logfields.Source(cfg.DocsDir), logfields.Output(cfg.BuildDir))
	report, err := builder.Build(g.runContext(), site.Request{
		Config: cfg,
		Check:  b.Check,
		Commit: b.Commit,
		Push:   b.Push,
	})
	if report != nil {
		if serr := report.Summary(g.out()); serr != nil {
			logger.Warn("Failed to write build summary", logfields.Error(serr))
		}
	}
	if recorder != nil {
		if werr := recorder.WriteTextfile(b.MetricsFile); werr != nil {
			logger.Warn("Failed to write metrics", logfields.Path(b.MetricsFile), logfields.Error(werr))
		}
	}
	return err
}
