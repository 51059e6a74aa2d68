package formula

import (
	"fmt"
	"unicode"
)

// Parse reads one formula from src per §6's grammar:
//
//	formula := equ
//	equ      := imp ("<=>" equ)?
//	imp      := or ("=>" imp)?
//	or       := and ("|" or)?
//	and      := rest ("&" and)?
//	rest     := "(" equ ")" | "<" name ">" rest | "[" name "]" rest
//	          | "<>" rest | "[]" rest | "~" rest | "True" | "False" | ident
//	ident    := alpha (alnum|_)*
//	name     := ["-"] alnum+
//
// An empty (all-whitespace) src parses to Store.True() per §6 ("Empty input
// means trivially provable"); callers distinguish this case by checking
// IsEmpty before calling Parse if they need to special-case it (e.g. exit
// code 1 without -g).
func Parse(src string) (*Store, Ref, error) {
	s := NewStore()
	f, err := ParseInto(s, src)
	if err != nil {
		return nil, 0, err
	}
	return s, f, nil
}

// ParseInto parses src the same way Parse does, but interns the result into
// a caller-supplied Store. Use this (instead of Parse) whenever psi and
// gamma must share one arena — which the registry requires, since it
// compares atoms across both by Ref equality.
func ParseInto(s *Store, src string) (Ref, error) {
	p := &parser{src: []rune(src)}
	p.skipSpace()
	if p.atEnd() {
		return s.True(), nil
	}
	f, err := p.parseEqu(s)
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if !p.atEnd() {
		return 0, p.errorf("unexpected trailing input")
	}
	return f, nil
}

// IsEmpty reports whether src contains no non-whitespace characters.
func IsEmpty(src string) bool {
	for _, r := range src {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

type parser struct {
	src []rune
	pos int
}

func (p *parser) atEnd() bool { return p.pos >= len(p.src) }

func (p *parser) peek() rune {
	if p.atEnd() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) skipSpace() {
	for !p.atEnd() && unicode.IsSpace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *parser) errorf(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("parse error at character %d: %s", p.pos, msg)
}

func (p *parser) consume(tok string) bool {
	p.skipSpace()
	r := []rune(tok)
	if p.pos+len(r) > len(p.src) {
		return false
	}
	for i, c := range r {
		if p.src[p.pos+i] != c {
			return false
		}
	}
	p.pos += len(r)
	return true
}

func isAlnum(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }

func (p *parser) parseEqu(s *Store) (Ref, error) {
	l, err := p.parseImp(s)
	if err != nil {
		return 0, err
	}
	if p.consume("<=>") {
		r, err := p.parseEqu(s)
		if err != nil {
			return 0, err
		}
		return s.Equ(l, r), nil
	}
	return l, nil
}

func (p *parser) parseImp(s *Store) (Ref, error) {
	l, err := p.parseOr(s)
	if err != nil {
		return 0, err
	}
	if p.consume("=>") {
		r, err := p.parseImp(s)
		if err != nil {
			return 0, err
		}
		return s.Imp(l, r), nil
	}
	return l, nil
}

func (p *parser) parseOr(s *Store) (Ref, error) {
	l, err := p.parseAnd(s)
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.peek() == '|' {
		p.pos++
		r, err := p.parseOr(s)
		if err != nil {
			return 0, err
		}
		return s.Or(l, r), nil
	}
	return l, nil
}

func (p *parser) parseAnd(s *Store) (Ref, error) {
	l, err := p.parseRest(s)
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if p.peek() == '&' {
		p.pos++
		r, err := p.parseAnd(s)
		if err != nil {
			return 0, err
		}
		return s.And(l, r), nil
	}
	return l, nil
}

// parseName reads ["-"] alnum+, returning the role name verbatim (the
// leading '-', if present, marks an inverse role and is kept in the name so
// later passes can detect and reject it per §7).
func (p *parser) parseName(s *Store) (string, error) {
	start := p.pos
	if p.peek() == '-' {
		p.pos++
	}
	first := p.pos
	for !p.atEnd() && isAlnum(p.peek()) {
		p.pos++
	}
	if p.pos == first {
		return "", p.errorf("expected role name")
	}
	return string(p.src[start:p.pos]), nil
}

func (p *parser) parseRest(s *Store) (Ref, error) {
	p.skipSpace()
	switch {
	case p.consume("("):
		f, err := p.parseEqu(s)
		if err != nil {
			return 0, err
		}
		if !p.consume(")") {
			return 0, p.errorf("expected ')'")
		}
		return f, nil

	case p.consume("<>"):
		f, err := p.parseRest(s)
		if err != nil {
			return 0, err
		}
		return s.Dia("", f), nil

	case p.consume("[]"):
		f, err := p.parseRest(s)
		if err != nil {
			return 0, err
		}
		return s.Box("", f), nil

	case p.peek() == '<':
		p.pos++
		role, err := p.parseName(s)
		if err != nil {
			return 0, err
		}
		if !p.consume(">") {
			return 0, p.errorf("expected '>'")
		}
		f, err := p.parseRest(s)
		if err != nil {
			return 0, err
		}
		return s.Dia(role, f), nil

	case p.peek() == '[':
		p.pos++
		role, err := p.parseName(s)
		if err != nil {
			return 0, err
		}
		if !p.consume("]") {
			return 0, p.errorf("expected ']'")
		}
		f, err := p.parseRest(s)
		if err != nil {
			return 0, err
		}
		return s.Box(role, f), nil

	case p.consume("~"):
		f, err := p.parseRest(s)
		if err != nil {
			return 0, err
		}
		return s.Not(f), nil

	case p.consume("True"):
		return s.True(), nil

	case p.consume("False"):
		return s.False(), nil

	default:
		return p.parseIdent(s)
	}
}

func (p *parser) parseIdent(s *Store) (Ref, error) {
	p.skipSpace()
	if p.atEnd() || !unicode.IsLetter(p.peek()) {
		return 0, p.errorf("expected identifier")
	}
	start := p.pos
	p.pos++
	for !p.atEnd() && (isAlnum(p.peek()) || p.peek() == '_') {
		p.pos++
	}
	return s.AP(string(p.src[start:p.pos])), nil
}
