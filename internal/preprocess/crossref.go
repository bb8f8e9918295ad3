package preprocess

import (
	"html"
	"log/slog"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/yassg/internal/logfields"
	"git.home.luguber.info/inful/yassg/internal/page"
)

// [[LABEL]] or [[TEXT]](LABEL), optionally escaped with a leading backslash.
var crossRefPattern = regexp.MustCompile(`\\?\[\[(.*?)\]\](?:\((.*?)\))?`)

// CrossRefs turns cross references into anchors. References to pages that do
// not exist are left untouched.
type CrossRefs struct{}

func (CrossRefs) Name() string  { return "crossrefs" }
func (CrossRefs) Priority() int { return 10 }

func (CrossRefs) Apply(content string, ctx *Context) (string, error) {
	return replaceAll(crossRefPattern, content, func(g []string) (string, error) {
		text, label := g[1], g[2]
		explicitText := label != ""
		if !explicitText {
			label = text
		}

		target, fragment := splitFragment(label)
		var found *page.Page
		if ctx.Page != nil {
			found = Lookup(ctx.Page.Root(), target)
		}
		if found == nil {
			ctx.logger().Debug("Unresolved cross reference",
				slog.String("ref", label), logfields.Page(pagePath(ctx.Page)))
			return g[0], nil
		}

		href, err := ctx.URLFor(found)
		if err != nil {
			return "", err
		}
		if fragment != "" {
			href += "#" + fragment
		}
		if !explicitText {
			text = html.EscapeString(found.Title())
		}
		return `<a href="` + html.EscapeString(href) + `">` + text + `</a>`, nil
	})
}

// Lookup finds the page a cross-reference label names, starting at root.
// An empty label names the site index; a trailing "/index" names the directory page.
func Lookup(root *page.Page, label string) *page.Page {
	label = strings.Trim(strings.TrimSpace(label), "/")
	if label == "" {
		return root.Find("index")
	}
	if p := root.Find(label); p != nil {
		return p
	}
	if trimmed, ok := strings.CutSuffix(label, "/index"); ok {
		return root.Find(trimmed)
	}
	return nil
}

func splitFragment(label string) (string, string) {
	target, fragment, _ := strings.Cut(label, "#")
	return target, fragment
}

func pagePath(p *page.Page) string {
	if p == nil {
		return ""
	}
	return p.Path()
}
