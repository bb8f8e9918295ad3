// Package preprocess rewrites inline markup in page content before it is
// converted and templated: [[cross references]] and {{ shortcode(calls) }}.
// A backslash in front of either form emits the markup literally.
package preprocess

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"git.home.luguber.info/inful/yassg/internal/page"
	"git.home.luguber.info/inful/yassg/internal/shortcode"
	"git.home.luguber.info/inful/yassg/internal/urls"
)

// Context is what a pass needs to know about the page being rendered.
type Context struct {
	Page       *page.Page
	Resolver   urls.Resolver
	Shortcodes *shortcode.Registry
	Logger     *slog.Logger
}

func (c *Context) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// URLFor resolves target against the context page.
func (c *Context) URLFor(target any) (string, error) {
	return c.Resolver.URLFor(c.Page, target)
}

// Pass is one substitution over page content.
type Pass interface {
	Name() string
	// Priority orders passes; lower runs first.
	Priority() int
	Apply(content string, ctx *Context) (string, error)
}

// Preprocessor runs its passes in priority order.
type Preprocessor struct {
	passes []Pass
}

// New builds a preprocessor from passes. Without arguments it uses the
// cross-reference pass followed by the shortcode pass.
func New(passes ...Pass) *Preprocessor {
	if len(passes) == 0 {
		passes = []Pass{CrossRefs{}, Shortcodes{}}
	}
	sorted := append([]Pass(nil), passes...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Priority() == sorted[j].Priority() {
			return sorted[i].Name() < sorted[j].Name()
		}
		return sorted[i].Priority() < sorted[j].Priority()
	})
	return &Preprocessor{passes: sorted}
}

// Passes lists pass names in execution order.
func (p *Preprocessor) Passes() []string {
	names := make([]string, 0, len(p.passes))
	for _, pass := range p.passes {
		names = append(names, pass.Name())
	}
	return names
}

// Process applies every pass to content.
func (p *Preprocessor) Process(content string, ctx *Context) (string, error) {
	var err error
	for _, pass := range p.passes {
		content, err = pass.Apply(content, ctx)
		if err != nil {
			return "", err
		}
	}
	return content, nil
}

// replaceAll is regexp.ReplaceAllStringFunc with submatches and error propagation.
// Matches starting with a backslash are emitted without it and never passed to fn.
func replaceAll(re *regexp.Regexp, src string, fn func(groups []string) (string, error)) (string, error) {
	return replaceMatches(src, re.FindAllStringSubmatchIndex(src, -1), fn)
}

// replaceMatches replaces submatch index ranges as produced by
// regexp.FindAllStringSubmatchIndex.
func replaceMatches(src string, matches [][]int, fn func(groups []string) (string, error)) (string, error) {
	if len(matches) == 0 {
		return src, nil
	}

	var b strings.Builder
	b.Grow(len(src))
	last := 0
	for _, m := range matches {
		b.WriteString(src[last:m[0]])
		last = m[1]

		whole := src[m[0]:m[1]]
		if strings.HasPrefix(whole, `\`) {
			b.WriteString(whole[1:])
			continue
		}

		groups := make([]string, len(m)/2)
		for i := range groups {
			if m[2*i] >= 0 {
				groups[i] = src[m[2*i]:m[2*i+1]]
			}
		}
		out, err := fn(groups)
		if err != nil {
			return "", err
		}
		b.WriteString(out)
	}
	b.WriteString(src[last:])
	return b.String(), nil
}
