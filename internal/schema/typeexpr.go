package schema

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/okra-platform/genpipe/internal/typedesc"
)

var (
	// ErrTypeSyntax is returned for a malformed type expression
	ErrTypeSyntax = errors.New("invalid type expression")

	// ErrUnknownType is returned when a type expression names an undeclared type
	ErrUnknownType = errors.New("unknown type")
)

// typeExprParser is a recursive-descent parser for marker values:
//
//	expr := name [ "<" expr { "," expr } ">" ] { "[" { "," } "]" }
//	name := (letter | "_") { letter | digit | "_" | "." }
type typeExprParser struct {
	src   string
	pos   int
	scope *scope
}

// parseTypeExpr parses src and resolves every name through sc
func parseTypeExpr(src string, sc *scope) (*typedesc.TypeDescriptor, error) {
	p := &typeExprParser{src: src, scope: sc}

	p.skipSpace()
	if p.eof() {
		return nil, errors.Wrap(ErrTypeSyntax, "empty type expression")
	}

	d, err := p.parseType()
	if err != nil {
		return nil, err
	}

	p.skipSpace()
	if !p.eof() {
		return nil, p.syntaxError("unexpected %q", p.src[p.pos])
	}
	return d, nil
}

func (p *typeExprParser) parseType() (*typedesc.TypeDescriptor, error) {
	p.skipSpace()
	name := p.name()
	if name == "" {
		if p.eof() {
			return nil, p.syntaxError("expected type name, found end of input")
		}
		return nil, p.syntaxError("expected type name, found %q", p.src[p.pos])
	}

	var d *typedesc.TypeDescriptor
	p.skipSpace()
	if p.peek() == '<' {
		p.pos++
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		def, err := p.scope.genericDefinition(name, len(args))
		if err != nil {
			return nil, err
		}
		d = typedesc.GenericOf(def, args...)
	} else {
		var ok bool
		if d, ok = p.scope.lookup(name); !ok {
			return nil, errors.Wrapf(ErrUnknownType, "%s", name)
		}
	}

	for {
		p.skipSpace()
		if p.peek() != '[' {
			return d, nil
		}
		p.pos++
		rank := 1
		for p.skipSpace(); p.peek() == ','; p.skipSpace() {
			rank++
			p.pos++
		}
		if p.peek() != ']' {
			return nil, p.syntaxError("expected ']'")
		}
		p.pos++
		d = typedesc.ArrayOf(d, rank)
	}
}

// parseArgs parses a comma separated argument list after '<' up to and
// including the closing '>'
func (p *typeExprParser) parseArgs() ([]*typedesc.TypeDescriptor, error) {
	var args []*typedesc.TypeDescriptor
	for {
		arg, err := p.parseType()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case '>':
			p.pos++
			return args, nil
		default:
			return nil, p.syntaxError("expected ',' or '>'")
		}
	}
}

func (p *typeExprParser) name() string {
	start := p.pos
	for !p.eof() {
		c := p.src[p.pos]
		switch {
		case c == '_' || isLetter(c):
		case (isDigit(c) || c == '.') && p.pos > start:
		default:
			return p.src[start:p.pos]
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *typeExprParser) skipSpace() {
	for !p.eof() && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *typeExprParser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *typeExprParser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *typeExprParser) syntaxError(format string, args ...any) error {
	return errors.Wrapf(ErrTypeSyntax, "%q at offset %d: %s", p.src, p.pos, fmt.Sprintf(format, args...))
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
