package commands

import (
	"fmt"

	"git.home.luguber.info/inful/yassg/internal/site"
)

// TreeCmd implements the 'tree' command.
type TreeCmd struct{}

func (t *TreeCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config, g.logger())
	if err != nil {
		return err
	}
	pages, err := site.LoadTree(cfg, g.logger())
	if err != nil {
		return site.Classify(site.StageTree, err)
	}
	_, err = fmt.Fprintln(g.out(), pages.String())
	return err
}
