package lang

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ErrIncomplete reports that the input ends inside an unterminated structure
// (an open list, a string literal, or a dangling quote). The driver reacts by
// asking for a continuation line instead of reporting an error.
var ErrIncomplete = errors.New("input is incomplete")

// SyntaxError is a malformed-input report with the rune offset it occurred at.
type SyntaxError struct {
	Detail string
	Offset int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s (offset %d)", e.Detail, e.Offset)
}

// ReadAll parses text into the sequence of data it contains. It returns
// ErrIncomplete when the text is a syntactically valid prefix of a larger
// datum, and a *SyntaxError when no continuation could make it valid.
func ReadAll(text string) ([]Value, error) {
	r := &reader{src: []rune(text)}
	var forms []Value
	for {
		r.skipSpace()
		if r.eof() {
			return forms, nil
		}
		v, err := r.readDatum()
		if err != nil {
			return nil, err
		}
		forms = append(forms, v)
	}
}

type reader struct {
	src []rune
	pos int
}

func (r *reader) eof() bool { return r.pos >= len(r.src) }

func (r *reader) peek() rune { return r.src[r.pos] }

func (r *reader) next() rune {
	c := r.src[r.pos]
	r.pos++
	return c
}

func (r *reader) skipSpace() {
	for !r.eof() {
		c := r.peek()
		switch {
		case unicode.IsSpace(c):
			r.pos++
		case c == ';':
			for !r.eof() && r.peek() != '\n' {
				r.pos++
			}
		default:
			return
		}
	}
}

func (r *reader) readDatum() (Value, error) {
	r.skipSpace()
	if r.eof() {
		return nil, ErrIncomplete
	}
	switch c := r.peek(); {
	case c == '(':
		r.pos++
		return r.readList()
	case c == ')':
		return nil, &SyntaxError{Detail: "unexpected )", Offset: r.pos}
	case c == '\'':
		r.pos++
		v, err := r.readDatum()
		if err != nil {
			return nil, err
		}
		return List(Symbol("quote"), v), nil
	case c == '"':
		r.pos++
		return r.readString()
	default:
		return r.readAtom()
	}
}

func (r *reader) readList() (Value, error) {
	var items []Value
	for {
		r.skipSpace()
		if r.eof() {
			return nil, ErrIncomplete
		}
		switch r.peek() {
		case ')':
			r.pos++
			return List(items...), nil
		case '.':
			// A lone dot introduces the tail of a dotted pair; a dot glued
			// to more characters is just an atom (e.g. a float like .5).
			if r.isLoneDot() {
				if len(items) == 0 {
					return nil, &SyntaxError{Detail: "dot with no preceding datum", Offset: r.pos}
				}
				r.pos++
				tail, err := r.readDatum()
				if err != nil {
					return nil, err
				}
				r.skipSpace()
				if r.eof() {
					return nil, ErrIncomplete
				}
				if r.peek() != ')' {
					return nil, &SyntaxError{Detail: "expected ) after dotted tail", Offset: r.pos}
				}
				r.pos++
				out := tail
				for i := len(items) - 1; i >= 0; i-- {
					out = Cons(items[i], out)
				}
				return out, nil
			}
			fallthrough
		default:
			v, err := r.readDatum()
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
	}
}

func (r *reader) isLoneDot() bool {
	if r.pos+1 >= len(r.src) {
		return true
	}
	c := r.src[r.pos+1]
	return unicode.IsSpace(c) || c == '(' || c == ')' || c == ';'
}

func (r *reader) readString() (Value, error) {
	var b strings.Builder
	for {
		if r.eof() {
			return nil, ErrIncomplete
		}
		c := r.next()
		switch c {
		case '"':
			return String(b.String()), nil
		case '\\':
			if r.eof() {
				return nil, ErrIncomplete
			}
			esc := r.next()
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '\\', '"':
				b.WriteRune(esc)
			default:
				return nil, &SyntaxError{Detail: fmt.Sprintf("unknown escape \\%c", esc), Offset: r.pos - 1}
			}
		default:
			b.WriteRune(c)
		}
	}
}

func isDelimiter(c rune) bool {
	return unicode.IsSpace(c) || c == '(' || c == ')' || c == '"' || c == ';' || c == '\''
}

func (r *reader) readAtom() (Value, error) {
	start := r.pos
	for !r.eof() && !isDelimiter(r.peek()) {
		r.pos++
	}
	text := string(r.src[start:r.pos])
	switch text {
	case "#t":
		return Boolean(true), nil
	case "#f":
		return Boolean(false), nil
	}
	if strings.HasPrefix(text, "#") {
		return nil, &SyntaxError{Detail: "unknown # syntax " + text, Offset: start}
	}
	if n, err := strconv.ParseFloat(text, 64); err == nil {
		return Number(n), nil
	}
	return Symbol(text), nil
}
