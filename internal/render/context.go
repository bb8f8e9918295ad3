package render

import (
	"git.home.luguber.info/inful/yassg/internal/page"
	"git.home.luguber.info/inful/yassg/internal/urls"
)

// PageContext is the state of one page render. A fresh context is built for
// every page, so nothing about the active page lives on the tree.
type PageContext struct {
	Page     *page.Page
	Resolver urls.Resolver
}

// URLFor resolves a page or site-relative path against the active page.
func (pc *PageContext) URLFor(target any) (string, error) {
	return pc.Resolver.URLFor(pc.Page, target)
}
