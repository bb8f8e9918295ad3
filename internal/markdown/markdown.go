// Package markdown converts page bodies to HTML with goldmark. Extensions are
// enabled by name so configuration stays independent of the converter.
package markdown

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// DefaultExtensions is used when no extension names are configured.
var DefaultExtensions = []string{"toc", "extra"}

// tocExtension turns on heading IDs; it is a parser option, not an extender.
const tocExtension = "toc"

var extensionRegistry = map[string][]goldmark.Extender{
	"extra":         {extension.Table, extension.Footnote, extension.DefinitionList},
	"gfm":           {extension.GFM},
	"table":         {extension.Table},
	"tables":        {extension.Table},
	"footnote":      {extension.Footnote},
	"footnotes":     {extension.Footnote},
	"definition":    {extension.DefinitionList},
	"def_list":      {extension.DefinitionList},
	"strikethrough": {extension.Strikethrough},
	"linkify":       {extension.Linkify},
	"autolink":      {extension.Linkify},
	"tasklist":      {extension.TaskList},
	"typographer":   {extension.Typographer},
	"smarty":        {extension.Typographer},
	"cjk":           {extension.CJK},
}

// Options configures a Converter.
type Options struct {
	// Extensions lists extension names; unknown names are ignored.
	Extensions []string
	// HardWraps renders soft line breaks as <br>.
	HardWraps bool
}

// Heading is one entry of a page's table of contents.
type Heading struct {
	Level int
	ID    string
	Text  string
}

// Result is a converted document.
type Result struct {
	HTML     []byte
	Headings []Heading
}

// Converter renders Markdown. A Converter is safe for concurrent use.
type Converter struct {
	md      goldmark.Markdown
	enabled []string
}

// New builds a converter. Raw HTML in the source is passed through, since
// cross references are emitted as inline anchors.
func New(opts Options) *Converter {
	names := opts.Extensions
	if names == nil {
		names = DefaultExtensions
	}

	var (
		exts      []goldmark.Extender
		parserOps []parser.Option
		enabled   []string
	)
	seen := map[string]struct{}{}
	extSeen := map[goldmark.Extender]struct{}{}
	for _, name := range names {
		key := normalize(name)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		if key == tocExtension {
			parserOps = append(parserOps, parser.WithAutoHeadingID())
		} else if group, ok := extensionRegistry[key]; ok {
			for _, ext := range group {
				if _, dup := extSeen[ext]; !dup {
					extSeen[ext] = struct{}{}
					exts = append(exts, ext)
				}
			}
		} else {
			continue
		}
		seen[key] = struct{}{}
		enabled = append(enabled, key)
	}

	rendererOps := []renderer.Option{html.WithUnsafe()}
	if opts.HardWraps {
		rendererOps = append(rendererOps, html.WithHardWraps())
	}

	md := goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(parserOps...),
		goldmark.WithRendererOptions(rendererOps...),
	)
	return &Converter{md: md, enabled: enabled}
}

// Enabled lists the recognised extension names in configuration order.
func (c *Converter) Enabled() []string {
	return append([]string(nil), c.enabled...)
}

// Unknown returns the names the converter does not recognise, sorted.
func Unknown(names []string) []string {
	var out []string
	for _, name := range names {
		key := normalize(name)
		if key == "" || key == tocExtension {
			continue
		}
		if _, ok := extensionRegistry[key]; !ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func normalize(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	// accept python-markdown style dotted names such as "markdown.extensions.toc"
	if i := strings.LastIndex(key, "."); i >= 0 {
		key = key[i+1:]
	}
	return key
}

// Convert renders src to HTML.
func (c *Converter) Convert(src []byte) ([]byte, error) {
	res, err := c.Render(src)
	if err != nil {
		return nil, err
	}
	return res.HTML, nil
}

// Render converts src and collects its headings.
func (c *Converter) Render(src []byte) (Result, error) {
	ctx := parser.NewContext()
	doc := c.md.Parser().Parse(text.NewReader(src), parser.WithContext(ctx))

	var headings []Heading
	_ = gmast.Walk(doc, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		h, ok := n.(*gmast.Heading)
		if !ok {
			return gmast.WalkContinue, nil
		}
		heading := Heading{Level: h.Level, Text: headingText(h, src)}
		if id, found := h.AttributeString("id"); found {
			if b, isBytes := id.([]byte); isBytes {
				heading.ID = string(b)
			}
		}
		headings = append(headings, heading)
		return gmast.WalkSkipChildren, nil
	})

	var buf bytes.Buffer
	if err := c.md.Renderer().Render(&buf, src, doc); err != nil {
		return Result{}, fmt.Errorf("markdown render: %w", err)
	}
	return Result{HTML: buf.Bytes(), Headings: headings}, nil
}

func headingText(n gmast.Node, src []byte) string {
	var b strings.Builder
	_ = gmast.Walk(n, func(child gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch t := child.(type) {
		case *gmast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *gmast.String:
			b.Write(t.Value)
		}
		return gmast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}
