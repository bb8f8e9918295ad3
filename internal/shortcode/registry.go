// Package shortcode evaluates inline {{ name(args) }} calls against a fixed
// registry of typed functions. Call expressions are parsed with a small
// literal-only grammar; nothing is evaluated dynamically.
package shortcode

import (
	"errors"
	"regexp"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrDuplicateDefinition indicates an attempt to register a shortcode name twice.
	ErrDuplicateDefinition = errors.New("shortcode: duplicate definition")
	// ErrInvalidDefinition occurs when a name is not an identifier or the function is nil.
	ErrInvalidDefinition = errors.New("shortcode: invalid definition")
)

var namePattern = regexp.MustCompile(`^\w+$`)

// Func renders one shortcode call to text.
type Func func(call *Call) (string, error)

// Registry maps shortcode names to functions. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Func)}
}

// Register stores fn under name if the name is not taken.
func (r *Registry) Register(name string, fn Func) error {
	name = strings.TrimSpace(name)
	if !namePattern.MatchString(name) || fn == nil {
		return ErrInvalidDefinition
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.funcs[name]; exists {
		return ErrDuplicateDefinition
	}
	r.funcs[name] = fn
	return nil
}

// Replace stores fn under name, overriding any previous definition.
func (r *Registry) Replace(name string, fn Func) error {
	name = strings.TrimSpace(name)
	if !namePattern.MatchString(name) || fn == nil {
		return ErrInvalidDefinition
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
	return nil
}

// Get returns the function registered under name.
func (r *Registry) Get(name string) (Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.funcs[name]
	return fn, ok
}

// Names lists registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke parses a call expression such as `title("hello", lang="en")` and
// dispatches it with env. Every failure is returned as a *CallError.
func (r *Registry) Invoke(src string, env Env) (string, error) {
	expr, err := Parse(src)
	if err != nil {
		return "", &CallError{Name: leadingName(src), Reason: "invalid call expression", Err: err}
	}

	fn, ok := r.Get(expr.Name)
	if !ok {
		return "", &CallError{Name: expr.Name, Reason: "unknown shortcode"}
	}

	call := &Call{
		Name:   expr.Name,
		Args:   expr.Args,
		Kwargs: expr.Kwargs,
		Env:    env,
	}
	out, err := fn(call)
	if err != nil {
		var ce *CallError
		if errors.As(err, &ce) {
			return "", err
		}
		return "", &CallError{Name: expr.Name, Reason: "call failed", Err: err}
	}
	return out, nil
}

func leadingName(src string) string {
	src = strings.TrimSpace(src)
	if i := strings.IndexAny(src, "( \t"); i >= 0 {
		return src[:i]
	}
	return src
}
