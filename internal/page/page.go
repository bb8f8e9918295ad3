// Package page holds the content tree: Page nodes, the synthetic root,
// ownership rules and the deterministic sibling ordering.
package page

import (
	"fmt"
	"strconv"
	"strings"
)

// Well-known detail keys consumed by the core.
const (
	DetailTitle            = "title"
	DetailOrderingPriority = "ordering-priority"
	DetailContentFrom      = "content-from"
)

// Page is a node of the content tree. A page may have content, children, or both.
// Pages without content are folders that only group their children.
type Page struct {
	// Name is the path segment of the page; empty only for the root.
	Name string
	// Details is the metadata parsed from the page's front matter or sidecar.
	Details map[string]any
	// SourcePath is the file the page was read from, empty for synthesized pages.
	SourcePath string

	Parent   *Page
	Children []*Page

	content    string
	hasContent bool
}

// New creates a detached page with content.
func New(name, content string, details map[string]any) *Page {
	p := NewFolder(name, details)
	p.SetContent(content)
	return p
}

// NewFolder creates a detached page without content.
func NewFolder(name string, details map[string]any) *Page {
	if details == nil {
		details = map[string]any{}
	}
	return &Page{Name: name, Details: details}
}

// NewRoot creates the nameless root page and attaches children to it.
func NewRoot(children ...*Page) (*Page, error) {
	root := NewFolder("", nil)
	if err := root.AddChild(children...); err != nil {
		return nil, err
	}
	return root, nil
}

// Content returns the raw body. It is empty for folder pages.
func (p *Page) Content() string { return p.content }

// HasContent distinguishes pages with a body (possibly empty) from folders.
func (p *Page) HasContent() bool { return p.hasContent }

// SetContent replaces the body and marks the page as having content.
func (p *Page) SetContent(content string) {
	p.content = content
	p.hasContent = true
}

// IsRoot reports whether p is the synthetic root.
func (p *Page) IsRoot() bool { return p.Parent == nil && p.Name == "" }

// AddChild attaches pages as children of p. All pages are validated before
// any is attached: nil pages, pages that already have a parent and names
// already taken among p's children are rejected.
func (p *Page) AddChild(children ...*Page) error {
	seen := make(map[string]struct{}, len(p.Children)+len(children))
	for _, c := range p.Children {
		seen[c.Name] = struct{}{}
	}
	for _, c := range children {
		if c == nil {
			return &StructureError{Parent: p.Path(), Reason: "child is not a page"}
		}
		if c.Parent != nil {
			return &StructureError{Parent: p.Path(), Child: c.Name, Reason: "page already has a parent"}
		}
		if c == p {
			return &StructureError{Parent: p.Path(), Child: c.Name, Reason: "page cannot be its own child"}
		}
		if _, dup := seen[c.Name]; dup {
			return &StructureError{Parent: p.Path(), Child: c.Name, Reason: "duplicate sibling name"}
		}
		seen[c.Name] = struct{}{}
	}
	for _, c := range children {
		c.Parent = p
		p.Children = append(p.Children, c)
	}
	return nil
}

// Remove detaches p from its parent.
func (p *Page) Remove() {
	if p.Parent == nil {
		return
	}
	siblings := p.Parent.Children
	for i, c := range siblings {
		if c == p {
			p.Parent.Children = append(siblings[:i:i], siblings[i+1:]...)
			break
		}
	}
	p.Parent = nil
}

// Path is the /-joined chain of names from the root (exclusive) to p.
func (p *Page) Path() string {
	var parts []string
	for cur := p; cur != nil && cur.Name != ""; cur = cur.Parent {
		parts = append(parts, cur.Name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

// Root walks up to the topmost ancestor.
func (p *Page) Root() *Page {
	cur := p
	for cur.Parent != nil {
		cur = cur.Parent
	}
	return cur
}

// Ancestors returns the named ancestors of p, outermost first.
func (p *Page) Ancestors() []*Page {
	var out []*Page
	for cur := p.Parent; cur != nil && cur.Name != ""; cur = cur.Parent {
		out = append([]*Page{cur}, out...)
	}
	return out
}

// Detail returns the metadata value for key, or nil.
func (p *Page) Detail(key string) any {
	return p.Details[key]
}

// Title is the "title" detail, falling back to the page name.
func (p *Page) Title() string {
	switch v := p.Details[DetailTitle].(type) {
	case nil:
		return p.Name
	case string:
		if v == "" {
			return p.Name
		}
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Priority is the numeric "ordering-priority" detail, 0 when absent or not a number.
func (p *Page) Priority() float64 {
	switch v := p.Details[DetailOrderingPriority].(type) {
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case int32:
		return float64(v)
	case uint64:
		return float64(v)
	case float64:
		return v
	case float32:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return 0
}

// Child returns the direct child with the given name.
func (p *Page) Child(name string) *Page {
	for _, c := range p.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Find resolves a /-separated path relative to p, segment by segment.
func (p *Page) Find(path string) *Page {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	cur := p
	for _, part := range strings.Split(path, "/") {
		cur = cur.Child(part)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Walk calls fn for p and every descendant in pre-order.
func (p *Page) Walk(fn func(*Page) error) error {
	if err := fn(p); err != nil {
		return err
	}
	for _, c := range p.Children {
		if err := c.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

// String renders an indented outline of titles, one page per line.
func (p *Page) String() string {
	var b strings.Builder
	if p.IsRoot() {
		for _, c := range p.Children {
			c.outline(&b, 0)
		}
	} else {
		p.outline(&b, 0)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (p *Page) outline(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString("* ")
	b.WriteString(p.Title())
	b.WriteByte('\n')
	for _, c := range p.Children {
		c.outline(b, depth+1)
	}
}

// StructureError reports a violation of the tree's ownership rules.
type StructureError struct {
	Parent string
	Child  string
	Reason string
}

func (e *StructureError) Error() string {
	parent := e.Parent
	if parent == "" {
		parent = "<root>"
	}
	if e.Child == "" {
		return fmt.Sprintf("page tree: attach to %s: %s", parent, e.Reason)
	}
	return fmt.Sprintf("page tree: attach %q to %s: %s", e.Child, parent, e.Reason)
}
