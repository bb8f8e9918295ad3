package theme

import (
	"fmt"
	"html/template"

	"git.home.luguber.info/inful/yassg/internal/shortcode"
)

// RegisterShortcodes registers every fragment under shortcodes/ as a
// shortcode of the same name, replacing builtins with that name. Fragments
// see the calling page as .Page and the call arguments as .Args and .Kwargs.
func (t *Theme) RegisterShortcodes(reg *shortcode.Registry, md func(string) (template.HTML, error)) error {
	for _, name := range t.Fragments() {
		fragment := name
		fn := func(call *shortcode.Call) (string, error) {
			data := FragmentData{Page: call.Env.Page, Args: call.Args, Kwargs: call.Kwargs}
			b := Bindings{Page: call.Env.Page, URLFor: call.Env.URLFor, Markdown: md}
			return t.executeFragment(fragment, data, b)
		}
		if err := reg.Replace(fragment, fn); err != nil {
			return fmt.Errorf("register shortcode fragment %s: %w", fragment, err)
		}
	}
	return nil
}
