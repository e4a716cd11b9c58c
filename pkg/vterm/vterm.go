// Package vterm virtualizes terminal output. While a terminal is active,
// every display call is buffered instead of written, and each buffered record
// can later be undone: removed silently while still unflushed, or visually
// retracted with cursor-up-and-erase sequences once it has reached the real
// terminal. Flushing preserves the order a linear, non-virtualized execution
// would have produced.
package vterm

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/muesli/termenv"

	"github.com/aretw0/rewind/pkg/lang"
)

// Kind classifies a buffered terminal operation.
type Kind int

const (
	// KindDisplay is plain text.
	KindDisplay Kind = iota
	// KindValue is a printed value, rendered through the configured formatter.
	KindValue
	// KindErase is one cursor-up-and-clear-line instruction, queued when a
	// flushed record is undone.
	KindErase
)

// Record is one buffered operation. Records are compared by pointer identity:
// two displays of the same text are distinct records with independent undo
// obligations.
type Record struct {
	kind    Kind
	text    string
	value   lang.Value
	flushed bool
}

// eraseSeq retracts one already-written line: back to column zero, up one
// line, erase to end of line.
var eraseSeq = "\r" +
	termenv.CSI + fmt.Sprintf(termenv.CursorUpSeq, 1) +
	termenv.CSI + fmt.Sprintf(termenv.EraseLineSeq, 0)

// Terminal buffers output bound for a real terminal. It is single-threaded,
// like everything around it.
type Terminal struct {
	out    io.Writer
	format func(lang.Value) string
	queue  []*Record // oldest first
	active bool
	logger *slog.Logger
}

// New creates an active terminal writing to out. format renders value-print
// records; nil means the value's external representation. A nil logger
// disables logging.
func New(out io.Writer, format func(lang.Value) string, logger *slog.Logger) *Terminal {
	if format == nil {
		format = func(v lang.Value) string { return v.String() }
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Terminal{out: out, format: format, active: true, logger: logger}
}

// Active reports whether output is being virtualized.
func (t *Terminal) Active() bool { return t.active }

// Deactivate stops virtualization. Later Display calls write through
// directly; the queue should already be flushed.
func (t *Terminal) Deactivate() { t.active = false }

// Pending reports the number of buffered records.
func (t *Terminal) Pending() int { return len(t.queue) }

// Display buffers text and returns its record. When the terminal is
// inactive the text is written through immediately and the returned record
// is already flushed.
func (t *Terminal) Display(text string) (*Record, error) {
	r := &Record{kind: KindDisplay, text: text}
	return r, t.push(r)
}

// PrintValue buffers a value-print record. Rendering through the formatter
// happens at flush time, against the formatter configuration then in force.
func (t *Terminal) PrintValue(v lang.Value) (*Record, error) {
	r := &Record{kind: KindValue, value: v}
	return r, t.push(r)
}

// RecordFlushed accounts for text that already reached the real terminal
// without passing through the queue: a local tty echoing the line the user
// typed. The record takes part in the undo contract like any buffered
// display.
func (t *Terminal) RecordFlushed(text string) *Record {
	return &Record{kind: KindDisplay, text: text, flushed: true}
}

func (t *Terminal) push(r *Record) error {
	if !t.active {
		r.flushed = true
		return t.emit(r)
	}
	t.queue = append(t.queue, r)
	return nil
}

// Undo retracts r. If r is the newest unflushed record it is dropped with no
// observable effect. If r was already flushed, one erase instruction per line
// break in its rendering is queued, so the next flush visually removes those
// lines. Undoing an unflushed record that is not the newest breaks the
// last-in-first-out discipline the regions guarantee, and is an error.
func (t *Terminal) Undo(r *Record) error {
	if !r.flushed {
		if n := len(t.queue); n == 0 || t.queue[n-1] != r {
			return fmt.Errorf("vterm: undo of a buried unflushed record")
		}
		t.queue = t.queue[:len(t.queue)-1]
		return nil
	}
	text := t.render(r)
	for i := 0; i < strings.Count(text, "\n"); i++ {
		er := &Record{kind: KindErase}
		if err := t.push(er); err != nil {
			return err
		}
	}
	return nil
}

// Flush commits the queue oldest-first to the real terminal and empties it.
// Flushing an empty queue is a no-op.
func (t *Terminal) Flush() error {
	if len(t.queue) == 0 {
		return nil
	}
	for _, r := range t.queue {
		r.flushed = true
		if err := t.emit(r); err != nil {
			return err
		}
	}
	t.logger.Debug("flushed", "records", len(t.queue))
	t.queue = nil
	return nil
}

func (t *Terminal) render(r *Record) string {
	switch r.kind {
	case KindValue:
		return t.format(r.value)
	case KindErase:
		return eraseSeq
	default:
		return r.text
	}
}

func (t *Terminal) emit(r *Record) error {
	_, err := io.WriteString(t.out, t.render(r))
	return err
}
