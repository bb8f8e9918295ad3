package theme

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"git.home.luguber.info/inful/yassg/internal/logfields"
	"git.home.luguber.info/inful/yassg/internal/page"
	"git.home.luguber.info/inful/yassg/internal/shortcode"
	"git.home.luguber.info/inful/yassg/internal/urls"
)

// ErrUnknownExtension is returned when a manifest names an extension that is not compiled in.
var ErrUnknownExtension = errors.New("theme: unknown extension")

// Extension is a compiled-in theme extension. Themes activate extensions by
// listing their names in the manifest.
type Extension interface {
	Name() string
	// BeforeRender runs once per build, after the tree is sorted and before
	// any page is written.
	BeforeRender(ctx context.Context, hc *HookContext) error
}

// HookContext gives extensions access to the build.
type HookContext struct {
	Root       *page.Page
	Theme      *Theme
	Shortcodes *shortcode.Registry
	Resolver   urls.Resolver
	Logger     *slog.Logger
	// Data is exposed to templates as .Site.Data.
	Data map[string]any
}

var (
	extMu      sync.RWMutex
	extensions = map[string]Extension{}
)

// RegisterExtension makes an extension available to manifests (idempotent by name).
// Intended to be called from init().
func RegisterExtension(e Extension) {
	if e == nil {
		return
	}
	extMu.Lock()
	defer extMu.Unlock()
	if _, ok := extensions[e.Name()]; !ok {
		extensions[e.Name()] = e
	}
}

// LookupExtension returns the compiled-in extension called name.
func LookupExtension(name string) (Extension, bool) {
	extMu.RLock()
	defer extMu.RUnlock()
	e, ok := extensions[name]
	return e, ok
}

// ExtensionNames lists the compiled-in extensions.
func ExtensionNames() []string {
	extMu.RLock()
	defer extMu.RUnlock()
	names := make([]string, 0, len(extensions))
	for name := range extensions {
		names = append(names, name)
	}
	return sortedCopy(names)
}

// Extensions resolves the manifest's extension names in manifest order.
func (t *Theme) Extensions() ([]Extension, error) {
	out := make([]Extension, 0, len(t.Manifest.Extensions))
	for _, name := range t.Manifest.Extensions {
		e, ok := LookupExtension(name)
		if !ok {
			return nil, fmt.Errorf("%w %q in theme %s", ErrUnknownExtension, name, t.Manifest.Name)
		}
		out = append(out, e)
	}
	return out, nil
}

// RunBeforeRender runs the before-render hook of every activated extension.
func (t *Theme) RunBeforeRender(ctx context.Context, hc *HookContext) error {
	exts, err := t.Extensions()
	if err != nil {
		return err
	}
	if hc.Logger == nil {
		hc.Logger = slog.Default()
	}
	if hc.Data == nil {
		hc.Data = map[string]any{}
	}
	if hc.Theme == nil {
		hc.Theme = t
	}
	for _, e := range exts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.BeforeRender(ctx, hc); err != nil {
			return fmt.Errorf("extension %s: %w", e.Name(), err)
		}
		hc.Logger.Debug("Ran theme extension", logfields.Extension(e.Name()), logfields.Theme(t.Manifest.Name))
	}
	return nil
}
