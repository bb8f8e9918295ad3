package shortcode

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Builtins returns the shortcodes available to every site.
func Builtins() map[string]Func {
	return map[string]Func{
		"title":  caseFunc(cases.Title),
		"upper":  caseFunc(cases.Upper),
		"lower":  caseFunc(cases.Lower),
		"url":    urlFunc,
		"detail": detailFunc,
	}
}

// RegisterBuiltins adds Builtins to r.
func RegisterBuiltins(r *Registry) error {
	for name, fn := range Builtins() {
		if err := r.Register(name, fn); err != nil {
			return fmt.Errorf("register builtin %s: %w", name, err)
		}
	}
	return nil
}

// caseFunc builds `name(text, lang="und")`.
func caseFunc(mapper func(language.Tag, ...cases.Option) cases.Caser) Func {
	return func(call *Call) (string, error) {
		if err := call.MaxArgs(2); err != nil {
			return "", err
		}
		text, err := call.String(0, "text")
		if err != nil {
			return "", err
		}
		lang, err := call.StringOr(1, "lang", "und")
		if err != nil {
			return "", err
		}
		tag, err := language.Parse(lang)
		if err != nil {
			return "", call.Errorf("invalid language %q", lang)
		}
		return mapper(tag).String(text), nil
	}
}

// urlFunc is `url(path)`: a site-relative path made relative to the current page.
func urlFunc(call *Call) (string, error) {
	if err := call.MaxArgs(1); err != nil {
		return "", err
	}
	target, err := call.String(0, "path")
	if err != nil {
		return "", err
	}
	if call.Env.URLFor == nil {
		return "", call.Errorf("no url resolver in this context")
	}
	return call.Env.URLFor(target)
}

// detailFunc is `detail(key, default=none)`: a value from the current page's details.
func detailFunc(call *Call) (string, error) {
	if err := call.MaxArgs(2); err != nil {
		return "", err
	}
	key, err := call.String(0, "key")
	if err != nil {
		return "", err
	}
	if call.Env.Page != nil {
		if v, ok := call.Env.Page.Details[key]; ok && v != nil {
			return fmt.Sprint(v), nil
		}
	}
	def, _ := call.Value(1, "default")
	if def == nil {
		return "", nil
	}
	return fmt.Sprint(def), nil
}
