package commands

import (
	"fmt"

	"git.home.luguber.info/inful/yassg/internal/errors"
	"git.home.luguber.info/inful/yassg/internal/linkcheck"
	"git.home.luguber.info/inful/yassg/internal/site"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	BuildDir string `arg:"" optional:"" name:"build-dir" help:"Rendered site to check (defaults to build-dir from the configuration)"`
}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config, g.logger())
	if err != nil {
		return err
	}
	dir := cfg.BuildDir
	if c.BuildDir != "" {
		dir = c.BuildDir
	}

	report, err := linkcheck.Check(g.runContext(), dir, linkcheck.Options{Ext: cfg.PageExtension, Logger: g.logger()})
	if err != nil {
		return site.Classify(site.StageLinkCheck, err)
	}
	out := g.out()
	for _, b := range report.Broken {
		if _, err := fmt.Fprintln(out, b.String()); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(out, "%d links checked in %d files, %d broken\n", report.Links, report.Files, len(report.Broken)); err != nil {
		return err
	}
	if !report.OK() {
		return errors.LinkCheckFailed(len(report.Broken))
	}
	return nil
}
