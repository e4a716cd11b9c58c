package lang_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/rewind/pkg/lang"
)

func TestReadAll_Forms(t *testing.T) {
	forms, err := lang.ReadAll(`(+ 1 2) "hi" sym #t #f 3.5 '(a b)`)
	require.NoError(t, err)
	require.Len(t, forms, 7)

	assert.Equal(t, "(+ 1 2)", forms[0].String())
	assert.Equal(t, lang.String("hi"), forms[1])
	assert.Equal(t, lang.Symbol("sym"), forms[2])
	assert.Equal(t, lang.Boolean(true), forms[3])
	assert.Equal(t, lang.Boolean(false), forms[4])
	assert.Equal(t, lang.Number(3.5), forms[5])
	assert.Equal(t, "'(a b)", forms[6].String())
}

func TestReadAll_Empty(t *testing.T) {
	forms, err := lang.ReadAll("   ; just a comment\n")
	require.NoError(t, err)
	assert.Empty(t, forms)
}

func TestReadAll_DottedPair(t *testing.T) {
	forms, err := lang.ReadAll("(a . b)")
	require.NoError(t, err)
	require.Len(t, forms, 1)
	assert.Equal(t, "(a . b)", forms[0].String())
}

func TestReadAll_Incomplete(t *testing.T) {
	for _, src := range []string{
		"(+ 1",
		"(a (b c)",
		`"unterminated`,
		"'",
		"(a . b",
	} {
		_, err := lang.ReadAll(src)
		assert.ErrorIs(t, err, lang.ErrIncomplete, "source %q", src)
	}
}

func TestReadAll_SyntaxError(t *testing.T) {
	for _, src := range []string{
		")",
		"(+ 1))",
		"(.)",
		"#unknown",
		`"bad \q escape"`,
	} {
		_, err := lang.ReadAll(src)
		var serr *lang.SyntaxError
		assert.ErrorAs(t, err, &serr, "source %q", src)
		assert.NotErrorIs(t, err, lang.ErrIncomplete, "source %q", src)
	}
}

func TestReadAll_ContinuationAcrossLines(t *testing.T) {
	// The driver accumulates lines exactly like this.
	_, err := lang.ReadAll("(define (f x)")
	require.ErrorIs(t, err, lang.ErrIncomplete)

	forms, err := lang.ReadAll("(define (f x)\n  (* x x))")
	require.NoError(t, err)
	require.Len(t, forms, 1)
}

func TestWriteAndDisplay(t *testing.T) {
	v := lang.List(lang.String("a"), lang.Number(1), lang.Symbol("b"))
	assert.Equal(t, `("a" 1 b)`, v.String())
	assert.Equal(t, `(a 1 b)`, lang.Display(v))
	assert.Equal(t, "3", lang.Number(3).String())
	assert.Equal(t, "0.5", lang.Number(0.5).String())
}
