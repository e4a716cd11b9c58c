package rewind_test

import (
	"context"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/rewind"
	"github.com/aretw0/rewind/pkg/adapters/memory"
	"github.com/aretw0/rewind/pkg/lang"
	"github.com/aretw0/rewind/pkg/repl"
)

func TestSession_Scripted(t *testing.T) {
	console := memory.NewConsole(
		"(define (square x) (* x x))",
		"(square 12)",
	)
	session := rewind.New(
		rewind.WithConsole(console),
		rewind.WithProfile(termenv.Ascii),
	)

	require.NoError(t, session.Run(context.Background()))
	assert.Equal(t, repl.StateTerminated, session.State())
	assert.Contains(t, console.Trace(), "=> 144")
}

func TestSession_TimeTravelEndToEnd(t *testing.T) {
	console := memory.NewConsole(
		"(define n (call/cc (lambda (k) (cons k 0))))",
		"(if (< (cdr n) 3) ((car n) (cons (car n) (+ (cdr n) 1))) (cdr n))",
	)
	session := rewind.New(
		rewind.WithConsole(console),
		rewind.WithProfile(termenv.Ascii),
	)

	require.NoError(t, session.Run(context.Background()))
	assert.Contains(t, console.Trace(), "=> 3")
}

func TestSession_CustomPrompts(t *testing.T) {
	console := memory.NewConsole("(+ 1", "1)")
	session := rewind.New(
		rewind.WithConsole(console),
		rewind.WithPrompts("$ ", "+ "),
	)

	require.NoError(t, session.Run(context.Background()))
	assert.Contains(t, console.Trace(), "$ (+ 1\n+ 1)\n")
}

func TestSession_PredefinedBindings(t *testing.T) {
	console := memory.NewConsole("(greet)")
	session := rewind.New(rewind.WithConsole(console))
	session.Global().Define("greet", &lang.Builtin{
		Name: "greet",
		Fn: func(_ *lang.Machine, _ []lang.Value) (lang.Control, error) {
			return lang.Return(lang.String("hello")), nil
		},
	})

	require.NoError(t, session.Run(context.Background()))
	assert.Contains(t, console.Trace(), `=> "hello"`)
}
