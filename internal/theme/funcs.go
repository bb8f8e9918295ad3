package theme

import (
	"errors"
	"html/template"
	"sort"
	"strings"

	"git.home.luguber.info/inful/yassg/internal/markdown"
	"git.home.luguber.info/inful/yassg/internal/page"
)

var errUnbound = errors.New("template function used outside of a page render")

// Bindings ties template functions to the page being rendered.
type Bindings struct {
	Page     *page.Page
	URLFor   func(target any) (string, error)
	Markdown func(src string) (template.HTML, error)
}

// PageData is the dot of the page template.
type PageData struct {
	Page     *page.Page
	Root     *page.Page
	Title    string
	Content  template.HTML
	Headings []markdown.Heading
	Site     SiteData
}

// SiteData is shared by every page of a build.
type SiteData struct {
	Title   string
	BuildID string
	// Config is the raw configuration map.
	Config map[string]any
	// Params comes from the theme manifest.
	Params map[string]any
	// Data is free-form state set by extensions before rendering.
	Data map[string]any
}

// FragmentData is the dot of a shortcode fragment.
type FragmentData struct {
	Page   *page.Page
	Args   []any
	Kwargs map[string]any
}

// FuncMap returns the template functions bound to b.
func FuncMap(b Bindings) template.FuncMap {
	urlFor := func(target any) (string, error) {
		if b.URLFor == nil {
			return "", errUnbound
		}
		return b.URLFor(target)
	}
	return template.FuncMap{
		"url_for": urlFor,
		"asset": func(p string) (string, error) {
			return urlFor(StaticDir + "/" + strings.TrimPrefix(p, "/"))
		},
		"markdown": func(src string) (template.HTML, error) {
			if b.Markdown == nil {
				return "", errUnbound
			}
			return b.Markdown(src)
		},
		"detail": func(key string, from ...*page.Page) any {
			p := b.Page
			if len(from) > 0 && from[0] != nil {
				p = from[0]
			}
			if p == nil {
				return nil
			}
			return p.Detail(key)
		},
	}
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
