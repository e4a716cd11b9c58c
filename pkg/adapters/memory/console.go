// Package memory provides in-memory adapters for tests and scripted runs.
package memory

import (
	"io"
	"strings"
)

// Console implements ports.Console over a scripted list of input lines,
// collecting everything written into a buffer. It never echoes; the session
// displays consumed lines itself, which makes Trace a complete transcript.
type Console struct {
	lines []string
	out   strings.Builder
}

// NewConsole creates a console that will serve the given lines in order and
// then report end of input.
func NewConsole(lines ...string) *Console {
	return &Console{lines: lines}
}

func (c *Console) Write(p []byte) (int, error) { return c.out.Write(p) }

// ReadLine serves the next scripted line, or io.EOF when the script is done.
func (c *Console) ReadLine() (string, error) {
	if len(c.lines) == 0 {
		return "", io.EOF
	}
	line := c.lines[0]
	c.lines = c.lines[1:]
	return line, nil
}

// Echoes is always false for a scripted console.
func (c *Console) Echoes() bool { return false }

// Trace returns every byte written so far.
func (c *Console) Trace() string { return c.out.String() }
