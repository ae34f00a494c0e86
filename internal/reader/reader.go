// Package reader implements the minimal surface-syntax reader consumed by
// eval.Interpreter.EvalText (spec.md §6's read_string collaborator). The
// core evaluator operates entirely on object.Value forms; this package is
// the thin, explicitly out-of-core-scope layer that turns source text into
// those forms (SPEC_FULL.md §1, §12 Non-goals).
package reader

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/tinylisp/tinylisp/internal/object"
)

// Reader reads a sequence of forms from source text. The zero value is
// ready to use; Reader carries no state across ReadString calls.
type Reader struct{}

// New constructs a Reader.
func New() *Reader { return &Reader{} }

// ReadString parses text into a slice of top-level forms.
func (r *Reader) ReadString(text string) ([]object.Value, error) {
	p := &parser{src: []rune(text)}
	var forms []object.Value
	for {
		p.skipAtmosphere()
		if p.atEnd() {
			break
		}
		form, err := p.readForm()
		if err != nil {
			return nil, err
		}
		forms = append(forms, form)
	}
	return forms, nil
}

type parser struct {
	src []rune
	pos int
}

func (p *parser) atEnd() bool { return p.pos >= len(p.src) }
func (p *parser) peek() rune  { return p.src[p.pos] }
func (p *parser) advance() rune {
	c := p.src[p.pos]
	p.pos++
	return c
}

// skipAtmosphere consumes whitespace and ;-to-end-of-line comments.
func (p *parser) skipAtmosphere() {
	for !p.atEnd() {
		c := p.peek()
		switch {
		case unicode.IsSpace(c):
			p.advance()
		case c == ';':
			for !p.atEnd() && p.peek() != '\n' {
				p.advance()
			}
		default:
			return
		}
	}
}

func (p *parser) readForm() (object.Value, error) {
	p.skipAtmosphere()
	if p.atEnd() {
		return nil, fmt.Errorf("unexpected end of input")
	}
	switch c := p.peek(); {
	case c == '(':
		return p.readList()
	case c == ')':
		return nil, fmt.Errorf("unexpected ')'")
	case c == '\'':
		p.advance()
		quoted, err := p.readForm()
		if err != nil {
			return nil, err
		}
		return object.List(object.InternSymbol("quote"), quoted), nil
	case c == '"':
		return p.readString()
	case c == ':':
		p.advance()
		return object.InternKeyword(p.readToken()), nil
	default:
		return p.readAtom()
	}
}

func (p *parser) readList() (object.Value, error) {
	p.advance() // consume '('
	var items []object.Value
	var tail object.Value = object.Nil
	for {
		p.skipAtmosphere()
		if p.atEnd() {
			return nil, fmt.Errorf("unterminated list")
		}
		if p.peek() == ')' {
			p.advance()
			break
		}
		if p.peek() == '.' && p.isDotSeparator() {
			p.advance()
			dotted, err := p.readForm()
			if err != nil {
				return nil, err
			}
			tail = dotted
			p.skipAtmosphere()
			if p.atEnd() || p.peek() != ')' {
				return nil, fmt.Errorf("malformed dotted list")
			}
			p.advance()
			break
		}
		form, err := p.readForm()
		if err != nil {
			return nil, err
		}
		items = append(items, form)
	}
	result := tail
	for i := len(items) - 1; i >= 0; i-- {
		result = object.NewCons(items[i], result)
	}
	return result, nil
}

// isDotSeparator reports whether the '.' at the current position is a
// standalone dotted-pair separator (followed by whitespace, '(' or the end
// of input) rather than part of a token like a float or a symbol name.
func (p *parser) isDotSeparator() bool {
	next := p.pos + 1
	return next >= len(p.src) || unicode.IsSpace(p.src[next]) || p.src[next] == '('
}

func (p *parser) readString() (object.Value, error) {
	p.advance() // consume opening quote
	var b strings.Builder
	for {
		if p.atEnd() {
			return nil, fmt.Errorf("unterminated string literal")
		}
		c := p.advance()
		if c == '"' {
			break
		}
		if c == '\\' {
			if p.atEnd() {
				return nil, fmt.Errorf("unterminated escape in string literal")
			}
			switch esc := p.advance(); esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			default:
				b.WriteRune(esc)
			}
			continue
		}
		b.WriteRune(c)
	}
	return object.NewString(b.String()), nil
}

func (p *parser) readAtom() (object.Value, error) {
	tok := p.readToken()
	if tok == "" {
		return nil, fmt.Errorf("empty token")
	}
	switch tok {
	case "nil":
		return object.Nil, nil
	case "true":
		return object.True, nil
	case "false":
		return object.False, nil
	}
	if iv, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return object.NewInt(iv), nil
	}
	if fv, err := strconv.ParseFloat(tok, 32); err == nil {
		return object.NewFloat(float32(fv)), nil
	}
	return object.InternSymbol(tok), nil
}

func (p *parser) readToken() string {
	start := p.pos
	for !p.atEnd() {
		c := p.peek()
		if unicode.IsSpace(c) || c == '(' || c == ')' || c == ';' || c == '"' || c == '\'' {
			break
		}
		p.advance()
	}
	return string(p.src[start:p.pos])
}
