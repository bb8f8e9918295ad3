package preprocess

import (
	"regexp"
	"strings"
	"unicode"

	"git.home.luguber.info/inful/yassg/internal/logfields"
	"git.home.luguber.info/inful/yassg/internal/shortcode"
)

// Start of {{ name(args) }}, optionally escaped with a leading backslash.
var shortcodeOpen = regexp.MustCompile(`\\?\{\{\s*\w+\s*\(`)

var (
	shortcodeClose = regexp.MustCompile(`^\s*\}\}`)
	// Used when the argument list cannot be scanned, so the call still
	// reaches the parser and fails with a syntax error.
	shortcodeLazyEnd = regexp.MustCompile(`\)\s*\}\}`)
)

// Shortcodes evaluates inline shortcode calls through the context registry.
type Shortcodes struct{}

func (Shortcodes) Name() string  { return "shortcodes" }
func (Shortcodes) Priority() int { return 20 }

func (Shortcodes) Apply(content string, ctx *Context) (string, error) {
	registry := ctx.Shortcodes
	if registry == nil {
		registry = shortcode.NewRegistry()
	}
	env := shortcode.Env{Page: ctx.Page, URLFor: ctx.URLFor}

	return replaceMatches(content, findShortcodes(content), func(g []string) (string, error) {
		out, err := registry.Invoke(g[1], env)
		if err != nil {
			return "", err
		}
		ctx.logger().Debug("Expanded shortcode", logfields.Shortcode(g[1]), logfields.Page(pagePath(ctx.Page)))
		return out, nil
	})
}

// findShortcodes locates shortcode calls in src in the index layout of
// regexp.FindAllStringSubmatchIndex: the whole match, then the call
// expression. A quoted argument may contain ")" and "}}".
func findShortcodes(src string) [][]int {
	var matches [][]int
	pos := 0
	for pos < len(src) {
		loc := shortcodeOpen.FindStringIndex(src[pos:])
		if loc == nil {
			break
		}
		start := pos + loc[0]
		callStart := start + strings.Index(src[start:], "{{") + 2
		callStart += len(src[callStart:]) - len(strings.TrimLeftFunc(src[callStart:], unicode.IsSpace))

		callEnd := -1
		if n := shortcode.CallLength(src[callStart:]); n >= 0 {
			callEnd = callStart + n
		} else if lazy := shortcodeLazyEnd.FindStringIndex(src[callStart:]); lazy != nil {
			callEnd = callStart + lazy[0] + 1
		}
		if callEnd < 0 {
			pos += loc[1]
			continue
		}
		closing := shortcodeClose.FindStringIndex(src[callEnd:])
		if closing == nil {
			pos += loc[1]
			continue
		}
		end := callEnd + closing[1]
		matches = append(matches, []int{start, end, callStart, callEnd})
		pos = end
	}
	return matches
}
