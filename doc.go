/*
Package rewind is a time-travel read-eval-print loop: an interactive Scheme
dialect whose continuations capture not only the pending computation but the
session itself, consumed input lines and produced terminal output included.
Invoking a captured checkpoint from a later turn visually retracts everything
printed since, returns the consumed lines to a redo log, and replays them
byte-for-byte as execution advances again.

# Concept

Three cooperating layers make the illusion hold. A resumable control engine
pairs the evaluator's capture/resume primitive with a stack of scoped
regions, each carrying enter and exit actions that fire when a jump crosses
them. A virtual terminal buffers output and can undo any record: silently
while unflushed, with cursor-up-and-erase sequences once it reached the
screen. A redo log keeps lines that a rewind gave back, so replayed reads
are deterministic.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/rewind"
	)

	func main() {
		session := rewind.New()
		if err := session.Run(context.Background()); err != nil {
			log.Fatal(err)
		}
	}

A session over scripted input, for tests or embedding:

	console := memory.NewConsole(
		"(define n (call/cc (lambda (k) (cons k 0))))",
		"(display (cdr n)) (newline)",
		"(if (< (cdr n) 3) ((car n) (cons (car n) (+ (cdr n) 1))) 'done)",
	)
	session := rewind.New(rewind.WithConsole(console))
	_ = session.Run(context.Background())
	transcript := console.Trace()

The packages compose bottom-up: pkg/lang (values, reader, evaluator),
pkg/control (regions and checkpoints), pkg/vterm (buffered, undoable
output), pkg/redo (replayed input), pkg/repl (the driver). The ports and
adapters packages isolate the real terminal behind an interface.
*/
package rewind
