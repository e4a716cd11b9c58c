package lang

import (
	"strconv"
	"strings"
)

// Value is any datum the machine can produce or consume. String returns the
// external (write) representation; Display returns the human one.
type Value interface {
	String() string
}

// Symbol is an identifier.
type Symbol string

func (s Symbol) String() string { return string(s) }

// Number is the single numeric type of the dialect.
type Number float64

func (n Number) String() string {
	if n == Number(int64(n)) {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(float64(n), 'g', -1, 64)
}

// String is an immutable text value.
type String string

func (s String) String() string { return strconv.Quote(string(s)) }

// Boolean is #t or #f. Every value other than #f counts as true.
type Boolean bool

func (b Boolean) String() string {
	if b {
		return "#t"
	}
	return "#f"
}

type emptyList struct{}

func (emptyList) String() string { return "()" }

// Empty is the empty list.
var Empty Value = emptyList{}

type unspecified struct{}

func (unspecified) String() string { return "#<unspecified>" }

// Unspecified is the "no value" result of definitions and side effects. The
// driver prints nothing for it.
var Unspecified Value = unspecified{}

// Pair is a cons cell.
type Pair struct {
	Car, Cdr Value
}

// Cons allocates a fresh pair.
func Cons(car, cdr Value) *Pair { return &Pair{Car: car, Cdr: cdr} }

func (p *Pair) String() string { return writePair(p, Value.String) }

// List builds a proper list from items.
func List(items ...Value) Value {
	var out Value = Empty
	for i := len(items) - 1; i >= 0; i-- {
		out = Cons(items[i], out)
	}
	return out
}

// Slice flattens a proper list into a slice. The second result is false when
// v is not a proper list.
func Slice(v Value) ([]Value, bool) {
	var out []Value
	for {
		switch x := v.(type) {
		case emptyList:
			return out, true
		case *Pair:
			out = append(out, x.Car)
			v = x.Cdr
		default:
			return nil, false
		}
	}
}

// Display renders v for humans: strings appear without quotes, everything
// else as its write form.
func Display(v Value) string {
	switch x := v.(type) {
	case String:
		return string(x)
	case *Pair:
		return writePair(x, Display)
	default:
		return v.String()
	}
}

func writePair(p *Pair, elem func(Value) string) string {
	// Print (quote x) with the reader's shorthand.
	if p.Car == Symbol("quote") {
		if rest, ok := p.Cdr.(*Pair); ok && rest.Cdr == Empty {
			return "'" + elem(rest.Car)
		}
	}
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(elem(p.Car))
	v := p.Cdr
	for {
		switch x := v.(type) {
		case emptyList:
			b.WriteByte(')')
			return b.String()
		case *Pair:
			b.WriteByte(' ')
			b.WriteString(elem(x.Car))
			v = x.Cdr
		default:
			b.WriteString(" . ")
			b.WriteString(elem(x))
			b.WriteByte(')')
			return b.String()
		}
	}
}

// IsTrue reports Scheme truthiness: everything except #f.
func IsTrue(v Value) bool {
	b, ok := v.(Boolean)
	return !ok || bool(b)
}
