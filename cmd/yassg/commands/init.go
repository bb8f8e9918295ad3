package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/yassg/internal/config"
	"git.home.luguber.info/inful/yassg/internal/errors"
	"git.home.luguber.info/inful/yassg/internal/mirror"
	"git.home.luguber.info/inful/yassg/internal/theme"
)

const exampleIndex = `+++
title = "Home"
+++
# Welcome

This site is built with yassg. Add pages next to this file.
`

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite an existing configuration file and local theme"`
	Theme bool `help:"Copy the built-in theme into the local theme directory for editing"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	out := g.out()
	if err := config.Init(root.Config, i.Force); err != nil {
		return errors.Wrap(err, errors.CategoryConfig, errors.SeverityFatal, "initialization failed")
	}
	_, _ = fmt.Fprintf(out, "Wrote configuration to %s\n", root.Config)

	if i.Theme {
		if err := i.copyTheme(g, filepath.Join(filepath.Dir(root.Config), config.DefaultLocalTheme)); err != nil {
			return err
		}
	}

	index := filepath.Join(filepath.Dir(root.Config), "content", "index.md")
	if _, err := os.Stat(index); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(index), 0o750); err != nil {
		return errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityFatal, "create content directory")
	}
	if err := os.WriteFile(index, []byte(exampleIndex), 0o600); err != nil {
		return errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityFatal, "write example page")
	}
	_, _ = fmt.Fprintf(out, "Wrote example page to %s\n", index)
	return nil
}

func (i *InitCmd) copyTheme(g *Global, dir string) error {
	if _, err := os.Stat(dir); err == nil && !i.Force {
		return errors.New(errors.CategoryConfig, errors.SeverityFatal, "local theme already exists (use --force to overwrite)").
			WithContext("path", dir)
	}
	stats, err := mirror.Replace(theme.DefaultFS(), dir)
	if err != nil {
		return errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityFatal, "copy built-in theme")
	}
	_, _ = fmt.Fprintf(g.out(), "Copied %d theme files to %s\n", stats.Copied, dir)
	return nil
}
