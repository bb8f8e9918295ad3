package theme

import (
	"context"
	"html"
	"strings"

	"git.home.luguber.info/inful/yassg/internal/page"
	"git.home.luguber.info/inful/yassg/internal/shortcode"
)

func init() {
	RegisterExtension(childrenExtension{})
	RegisterExtension(breadcrumbsExtension{})
}

// childrenExtension adds `children(depth=1)`: a nested list of links to the
// current page's descendants.
type childrenExtension struct{}

func (childrenExtension) Name() string { return "children" }

func (childrenExtension) BeforeRender(_ context.Context, hc *HookContext) error {
	return hc.Shortcodes.Replace("children", func(call *shortcode.Call) (string, error) {
		if err := call.MaxArgs(1); err != nil {
			return "", err
		}
		depth, err := call.IntOr(0, "depth", 1)
		if err != nil {
			return "", err
		}
		if call.Env.Page == nil {
			return "", nil
		}
		var b strings.Builder
		if err := writeChildren(&b, call, call.Env.Page, depth); err != nil {
			return "", err
		}
		return b.String(), nil
	})
}

func writeChildren(b *strings.Builder, call *shortcode.Call, p *page.Page, depth int) error {
	if depth <= 0 || len(p.Children) == 0 {
		return nil
	}
	b.WriteString(`<ul class="children">`)
	for _, c := range p.Children {
		b.WriteString("<li>")
		if err := writeLink(b, call, c); err != nil {
			return err
		}
		if err := writeChildren(b, call, c, depth-1); err != nil {
			return err
		}
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")
	return nil
}

// writeLink links pages that have output; folders are plain text.
func writeLink(b *strings.Builder, call *shortcode.Call, p *page.Page) error {
	title := html.EscapeString(p.Title())
	if !p.HasContent() || call.Env.URLFor == nil {
		b.WriteString(title)
		return nil
	}
	href, err := call.Env.URLFor(p)
	if err != nil {
		return err
	}
	b.WriteString(`<a href="` + html.EscapeString(href) + `">` + title + `</a>`)
	return nil
}

// breadcrumbsExtension adds `breadcrumbs(sep=" / ")`: links to the current page's ancestors.
type breadcrumbsExtension struct{}

func (breadcrumbsExtension) Name() string { return "breadcrumbs" }

func (breadcrumbsExtension) BeforeRender(_ context.Context, hc *HookContext) error {
	return hc.Shortcodes.Replace("breadcrumbs", func(call *shortcode.Call) (string, error) {
		if err := call.MaxArgs(1); err != nil {
			return "", err
		}
		sep, err := call.StringOr(0, "sep", " / ")
		if err != nil {
			return "", err
		}
		if call.Env.Page == nil {
			return "", nil
		}
		var b strings.Builder
		b.WriteString(`<nav class="breadcrumbs">`)
		for _, a := range call.Env.Page.Ancestors() {
			if err := writeLink(&b, call, a); err != nil {
				return "", err
			}
			b.WriteString(html.EscapeString(sep))
		}
		b.WriteString(`<span>` + html.EscapeString(call.Env.Page.Title()) + `</span></nav>`)
		return b.String(), nil
	})
}
