package ports

import "io"

// Console is the driven port for the real terminal. The virtual terminal
// writes flushed output to it and the driver reads lines from it; everything
// in between works against buffered records, never the console itself.
type Console interface {
	io.Writer

	// ReadLine blocks for the next input line, without its trailing line
	// break. It returns io.EOF when the input is exhausted.
	ReadLine() (string, error)

	// Echoes reports whether the console itself displays what the user
	// types, the way a local tty in canonical mode does. When it does, the
	// echoed line already reached the screen and must be accounted for as
	// flushed output rather than buffered again.
	Echoes() bool
}
