package lang_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/rewind/pkg/lang"
)

// evalString runs every form in src on one machine and returns the last
// value.
func evalString(t *testing.T, src string) (lang.Value, error) {
	t.Helper()
	forms, err := lang.ReadAll(src)
	require.NoError(t, err)
	require.NotEmpty(t, forms)

	m := lang.NewMachine(lang.NewGlobalEnv(), nil)
	var last lang.Value
	for _, form := range forms {
		last, err = m.Evaluate(context.Background(), form, nil)
		if err != nil {
			return nil, err
		}
	}
	return last, nil
}

func mustEval(t *testing.T, src string) lang.Value {
	t.Helper()
	v, err := evalString(t, src)
	require.NoError(t, err)
	return v
}

func TestEval_Basics(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"42", "42"},
		{"(+ 1 2 3)", "6"},
		{"(- 10 3 2)", "5"},
		{"(- 4)", "-4"},
		{"(* 2 3 4)", "24"},
		{"(/ 12 4)", "3"},
		{"(/ 2)", "0.5"},
		{"(< 1 2 3)", "#t"},
		{"(< 1 3 2)", "#f"},
		{"(= 2 2 2)", "#t"},
		{"(>= 3 3 1)", "#t"},
		{"(quote (a b))", "(a b)"},
		{"'x", "x"},
		{"(if #f 1 2)", "2"},
		{"(if 0 1 2)", "1"}, // only #f is false
		{"(and 1 2 3)", "3"},
		{"(and 1 #f 3)", "#f"},
		{"(or #f #f 7)", "7"},
		{"(or)", "#f"},
		{"(not #f)", "#t"},
		{"(begin 1 2 3)", "3"},
		{"(cons 1 2)", "(1 . 2)"},
		{"(car '(1 2))", "1"},
		{"(cdr '(1 2))", "(2)"},
		{"(list 1 2 3)", "(1 2 3)"},
		{"(null? '())", "#t"},
		{"(pair? '(1))", "#t"},
		{"(number? \"x\")", "#f"},
		{"(symbol? 'x)", "#t"},
		{"(procedure? car)", "#t"},
		{"(eq? 'a 'a)", "#t"},
		{"(let ((x 2) (y 3)) (* x y))", "6"},
	}
	for _, tc := range cases {
		v := mustEval(t, tc.src)
		assert.Equal(t, tc.want, v.String(), "source %q", tc.src)
	}
}

func TestEval_DefineAndSet(t *testing.T) {
	v := mustEval(t, `
		(define x 1)
		(set! x (+ x 10))
		x`)
	assert.Equal(t, lang.Number(11), v)

	_, err := evalString(t, "(set! nope 1)")
	assert.Error(t, err)
}

func TestEval_Closures(t *testing.T) {
	v := mustEval(t, `
		(define (make-counter)
		  (let ((n 0))
		    (lambda () (set! n (+ n 1)) n)))
		(define c (make-counter))
		(c) (c) (c)`)
	assert.Equal(t, lang.Number(3), v)
}

func TestEval_Recursion(t *testing.T) {
	v := mustEval(t, `
		(define (fact n)
		  (if (< n 2) 1 (* n (fact (- n 1)))))
		(fact 10)`)
	assert.Equal(t, lang.Number(3628800), v)
}

func TestEval_VarargsLambda(t *testing.T) {
	v := mustEval(t, "((lambda args args) 1 2 3)")
	assert.Equal(t, "(1 2 3)", v.String())

	v = mustEval(t, "((lambda (a . rest) rest) 1 2 3)")
	assert.Equal(t, "(2 3)", v.String())
}

func TestEval_Errors(t *testing.T) {
	for _, src := range []string{
		"nope",
		"(1 2)",
		"(car 1)",
		"(+ 1 'a)",
		"(/ 1 0)",
		"((lambda (x) x) 1 2)",
	} {
		_, err := evalString(t, src)
		var re *lang.RaisedError
		assert.ErrorAs(t, err, &re, "source %q", src)
	}
}

func TestEval_RaisedErrorCarriesIrritants(t *testing.T) {
	_, err := evalString(t, `(error "boom" 1 'two)`)
	var re *lang.RaisedError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "boom", re.Message)
	require.Len(t, re.Irritants, 2)
	assert.Equal(t, "boom 1 two", re.Error())
}

// evalOp asks the machine to evaluate a fixed expression when resumed.
type evalOp struct {
	expr lang.Value
}

func (o evalOp) Resume(m *lang.Machine, _ lang.Value) (lang.Control, error) {
	return lang.Eval(o.expr, m.Global), nil
}

func TestEval_TrapCatchesRaisedErrors(t *testing.T) {
	forms, err := lang.ReadAll("(car 1)")
	require.NoError(t, err)

	m := lang.NewMachine(lang.NewGlobalEnv(), nil)
	var caught *lang.RaisedError
	m.Bootstrap(&lang.Trap{OnError: func(_ *lang.Machine, e *lang.RaisedError) (lang.Control, error) {
		caught = e
		return lang.Return(lang.Symbol("recovered")), nil
	}})
	m.Push(evalOp{expr: forms[0]})

	require.NoError(t, m.Run(context.Background()))
	require.NotNil(t, caught)
	assert.Contains(t, caught.Message, "not a pair")
	assert.Equal(t, lang.Symbol("recovered"), m.Result())
}

func TestEval_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	forms, err := lang.ReadAll("(+ 1 2)")
	require.NoError(t, err)

	m := lang.NewMachine(lang.NewGlobalEnv(), nil)
	_, err = m.Evaluate(ctx, forms[0], nil)
	assert.ErrorIs(t, err, context.Canceled)
}
