package shortcode

import (
	"fmt"

	"git.home.luguber.info/inful/yassg/internal/page"
)

// Env is the render context a call runs in.
type Env struct {
	// Page is the page whose content is being processed.
	Page *page.Page
	// URLFor resolves a *page.Page or a site-relative path against Page.
	URLFor func(target any) (string, error)
}

// Call is one invocation of a shortcode.
type Call struct {
	Name   string
	Args   []any
	Kwargs map[string]any
	Env    Env
}

// CallError reports a shortcode that could not be evaluated.
type CallError struct {
	Name   string
	Reason string
	Err    error
}

func (e *CallError) Error() string {
	switch {
	case e.Err != nil && e.Reason != "":
		return fmt.Sprintf("shortcode %s: %s: %v", e.Name, e.Reason, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("shortcode %s: %v", e.Name, e.Err)
	default:
		return fmt.Sprintf("shortcode %s: %s", e.Name, e.Reason)
	}
}

func (e *CallError) Unwrap() error { return e.Err }

// Errorf builds a *CallError for this call.
func (c *Call) Errorf(format string, args ...any) error {
	return &CallError{Name: c.Name, Reason: fmt.Sprintf(format, args...)}
}

// Value returns the positional argument at index i, falling back to the
// keyword argument key.
func (c *Call) Value(i int, key string) (any, bool) {
	if i >= 0 && i < len(c.Args) {
		return c.Args[i], true
	}
	if key != "" {
		v, ok := c.Kwargs[key]
		return v, ok
	}
	return nil, false
}

// MaxArgs fails when more than n positional arguments were given.
func (c *Call) MaxArgs(n int) error {
	if len(c.Args) > n {
		return c.Errorf("takes at most %d positional arguments, got %d", n, len(c.Args))
	}
	return nil
}

// String returns a required string argument.
func (c *Call) String(i int, key string) (string, error) {
	v, ok := c.Value(i, key)
	if !ok {
		return "", c.Errorf("missing argument %q", key)
	}
	s, isString := v.(string)
	if !isString {
		return "", c.Errorf("argument %q must be a string, got %T", key, v)
	}
	return s, nil
}

// StringOr returns an optional string argument; none counts as absent.
func (c *Call) StringOr(i int, key, def string) (string, error) {
	v, ok := c.Value(i, key)
	if !ok || v == nil {
		return def, nil
	}
	s, isString := v.(string)
	if !isString {
		return "", c.Errorf("argument %q must be a string, got %T", key, v)
	}
	return s, nil
}

// IntOr returns an optional integer argument.
func (c *Call) IntOr(i int, key string, def int) (int, error) {
	v, ok := c.Value(i, key)
	if !ok || v == nil {
		return def, nil
	}
	n, isInt := v.(int64)
	if !isInt {
		return 0, c.Errorf("argument %q must be an integer, got %T", key, v)
	}
	return int(n), nil
}

// FloatOr returns an optional number argument; integers are widened.
func (c *Call) FloatOr(i int, key string, def float64) (float64, error) {
	v, ok := c.Value(i, key)
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	default:
		return 0, c.Errorf("argument %q must be a number, got %T", key, v)
	}
}

// BoolOr returns an optional boolean argument.
func (c *Call) BoolOr(i int, key string, def bool) (bool, error) {
	v, ok := c.Value(i, key)
	if !ok || v == nil {
		return def, nil
	}
	b, isBool := v.(bool)
	if !isBool {
		return false, c.Errorf("argument %q must be a boolean, got %T", key, v)
	}
	return b, nil
}
