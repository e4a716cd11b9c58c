package vterm_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/rewind/pkg/lang"
	"github.com/aretw0/rewind/pkg/vterm"
)

// eraseSeq must match what the terminal emits for one retracted line.
const eraseSeq = "\r\x1b[1A\x1b[0K"

func TestFlush_EmptyIsNoop(t *testing.T) {
	var out strings.Builder
	term := vterm.New(&out, nil, nil)

	require.NoError(t, term.Flush())
	assert.Zero(t, out.Len())
}

func TestDisplay_BuffersUntilFlush(t *testing.T) {
	var out strings.Builder
	term := vterm.New(&out, nil, nil)

	_, err := term.Display("hello\n")
	require.NoError(t, err)
	assert.Zero(t, out.Len(), "nothing reaches the console before a flush")
	assert.Equal(t, 1, term.Pending())

	require.NoError(t, term.Flush())
	assert.Equal(t, "hello\n", out.String())
	assert.Equal(t, 0, term.Pending())
}

func TestUndo_UnflushedEmitsNothing(t *testing.T) {
	var out strings.Builder
	term := vterm.New(&out, nil, nil)

	rec, err := term.Display("transient\n")
	require.NoError(t, err)
	require.NoError(t, term.Undo(rec))

	require.NoError(t, term.Flush())
	assert.Zero(t, out.Len())
}

func TestUndo_FlushedQueuesOneErasePerLineBreak(t *testing.T) {
	var out strings.Builder
	term := vterm.New(&out, nil, nil)

	rec, err := term.Display("one\ntwo\nthree\n")
	require.NoError(t, err)
	require.NoError(t, term.Flush())
	out.Reset()

	require.NoError(t, term.Undo(rec))
	assert.Equal(t, 3, term.Pending())

	require.NoError(t, term.Flush())
	assert.Equal(t, strings.Repeat(eraseSeq, 3), out.String())
}

func TestUndo_FlushedWithoutLineBreakEmitsNothing(t *testing.T) {
	var out strings.Builder
	term := vterm.New(&out, nil, nil)

	rec, err := term.Display("> ")
	require.NoError(t, err)
	require.NoError(t, term.Flush())
	out.Reset()

	require.NoError(t, term.Undo(rec))
	assert.Equal(t, 0, term.Pending())
}

func TestUndo_BuriedUnflushedIsAnError(t *testing.T) {
	var out strings.Builder
	term := vterm.New(&out, nil, nil)

	first, err := term.Display("first\n")
	require.NoError(t, err)
	_, err = term.Display("second\n")
	require.NoError(t, err)

	assert.Error(t, term.Undo(first))
}

func TestRecordFlushed_ParticipatesInUndo(t *testing.T) {
	var out strings.Builder
	term := vterm.New(&out, nil, nil)

	// A tty echo already reached the screen without passing the queue.
	rec := term.RecordFlushed("typed line\n")
	require.NoError(t, term.Undo(rec))

	require.NoError(t, term.Flush())
	assert.Equal(t, eraseSeq, out.String())
}

func TestPrintValue_RendersAtFlushTime(t *testing.T) {
	var out strings.Builder
	term := vterm.New(&out, func(v lang.Value) string { return "[" + v.String() + "]" }, nil)

	_, err := term.PrintValue(lang.Number(42))
	require.NoError(t, err)
	require.NoError(t, term.Flush())
	assert.Equal(t, "[42]", out.String())
}

func TestDeactivate_WritesThrough(t *testing.T) {
	var out strings.Builder
	term := vterm.New(&out, nil, nil)
	require.True(t, term.Active())

	term.Deactivate()
	require.False(t, term.Active())

	_, err := term.Display("direct\n")
	require.NoError(t, err)
	assert.Equal(t, "direct\n", out.String())
	assert.Equal(t, 0, term.Pending())
}

// The linearity property: flushed bytes plus a flush of the current queue
// always equal the output of a non-virtualized run up to the same point.
func TestLinearityAcrossInterleavedFlushes(t *testing.T) {
	var out strings.Builder
	term := vterm.New(&out, nil, nil)

	steps := []string{"a\n", "b", "c\n", "d\n"}
	for i, s := range steps {
		_, err := term.Display(s)
		require.NoError(t, err)
		if i%2 == 1 {
			require.NoError(t, term.Flush())
		}
	}
	require.NoError(t, term.Flush())
	assert.Equal(t, "a\nbc\nd\n", out.String())
}
