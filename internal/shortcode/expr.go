package shortcode

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Expr is a parsed call expression.
type Expr struct {
	Name   string
	Args   []any
	Kwargs map[string]any
}

// SyntaxError locates a problem in a call expression.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Pos, e.Msg)
}

// Parse reads `name(arg, ..., key=arg, ...)`. Arguments are literals only:
// quoted strings, integers, floats, true/false and none/null. Positional
// arguments may not follow keyword arguments and keywords may not repeat.
func Parse(src string) (*Expr, error) {
	p := &exprParser{src: src}
	return p.parse()
}

// CallLength returns the length of the call expression at the start of src,
// through its closing parenthesis. Parentheses inside quoted strings are
// skipped. It returns -1 when src does not start with a complete call.
func CallLength(src string) int {
	p := &exprParser{src: src}
	if p.ident() == "" {
		return -1
	}
	p.skipSpace()
	if !p.consume('(') {
		return -1
	}
	for p.pos < len(p.src) {
		switch c := p.src[p.pos]; c {
		case '"', '\'':
			if _, err := p.quoted(c); err != nil {
				return -1
			}
		case ')':
			return p.pos + 1
		default:
			p.pos++
		}
	}
	return -1
}

type exprParser struct {
	src string
	pos int
}

func (p *exprParser) errorf(format string, args ...any) error {
	return &SyntaxError{Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *exprParser) parse() (*Expr, error) {
	p.skipSpace()
	name := p.ident()
	if name == "" {
		return nil, p.errorf("expected shortcode name")
	}
	p.skipSpace()
	if !p.consume('(') {
		return nil, p.errorf("expected '(' after %s", name)
	}

	expr := &Expr{Name: name, Kwargs: map[string]any{}}
	sawKeyword := false

	for {
		p.skipSpace()
		if p.consume(')') {
			break
		}

		start := p.pos
		key := p.ident()
		p.skipSpace()
		if key != "" && p.consume('=') {
			if _, dup := expr.Kwargs[key]; dup {
				p.pos = start
				return nil, p.errorf("duplicate keyword argument %q", key)
			}
			p.skipSpace()
			val, err := p.literal()
			if err != nil {
				return nil, err
			}
			expr.Kwargs[key] = val
			sawKeyword = true
		} else {
			p.pos = start
			if sawKeyword {
				return nil, p.errorf("positional argument follows keyword argument")
			}
			val, err := p.literal()
			if err != nil {
				return nil, err
			}
			expr.Args = append(expr.Args, val)
		}

		p.skipSpace()
		if p.consume(',') {
			continue
		}
		if p.consume(')') {
			break
		}
		return nil, p.errorf("expected ',' or ')'")
	}

	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected trailing input %q", p.src[p.pos:])
	}
	return expr, nil
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.src) {
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		p.pos += size
	}
}

func (p *exprParser) consume(c byte) bool {
	if p.pos < len(p.src) && p.src[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func isIdentRune(r rune, first bool) bool {
	if r == '_' || unicode.IsLetter(r) {
		return true
	}
	return !first && unicode.IsDigit(r)
}

func (p *exprParser) ident() string {
	start := p.pos
	for p.pos < len(p.src) {
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		if !isIdentRune(r, p.pos == start) {
			break
		}
		p.pos += size
	}
	return p.src[start:p.pos]
}

func (p *exprParser) literal() (any, error) {
	if p.pos >= len(p.src) {
		return nil, p.errorf("expected argument")
	}

	switch c := p.src[p.pos]; {
	case c == '"' || c == '\'':
		return p.quoted(c)
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		return p.number()
	}

	start := p.pos
	word := p.ident()
	switch word {
	case "true", "True":
		return true, nil
	case "false", "False":
		return false, nil
	case "none", "None", "null":
		return nil, nil
	case "":
		return nil, p.errorf("expected argument")
	default:
		p.pos = start
		return nil, p.errorf("unsupported value %q (only literals are allowed)", word)
	}
}

func (p *exprParser) quoted(quote byte) (string, error) {
	start := p.pos
	p.pos++ // opening quote

	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == quote:
			p.pos++
			return b.String(), nil
		case c == '\\':
			if p.pos+1 >= len(p.src) {
				p.pos = start
				return "", p.errorf("unterminated string")
			}
			b.WriteString(unescape(p.src[p.pos+1]))
			p.pos += 2
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	p.pos = start
	return "", p.errorf("unterminated string")
}

func unescape(c byte) string {
	switch c {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'r':
		return "\r"
	default:
		return string(c)
	}
}

func (p *exprParser) number() (any, error) {
	start := p.pos
	if p.src[p.pos] == '-' || p.src[p.pos] == '+' {
		p.pos++
	}
	isFloat := false
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c >= '0' && c <= '9':
		case c == '.' || c == 'e' || c == 'E':
			isFloat = true
		case (c == '-' || c == '+') && (p.src[p.pos-1] == 'e' || p.src[p.pos-1] == 'E'):
		default:
			return p.finishNumber(start, isFloat)
		}
		p.pos++
	}
	return p.finishNumber(start, isFloat)
}

func (p *exprParser) finishNumber(start int, isFloat bool) (any, error) {
	text := p.src[start:p.pos]
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			p.pos = start
			return nil, p.errorf("invalid number %q", text)
		}
		return f, nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		p.pos = start
		return nil, p.errorf("invalid number %q", text)
	}
	return n, nil
}
