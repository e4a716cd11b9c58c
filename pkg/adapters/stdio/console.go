// Package stdio adapts the process's standard streams to the console port.
package stdio

import (
	"bufio"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Console implements ports.Console over a reader/writer pair, usually the
// process's stdin and stdout.
type Console struct {
	in     *bufio.Reader
	out    io.Writer
	echoes bool
}

// New creates a console over in and out. echoes declares whether the
// underlying terminal echoes typed input on its own.
func New(in io.Reader, out io.Writer, echoes bool) *Console {
	return &Console{in: bufio.NewReader(in), out: out, echoes: echoes}
}

// NewStdio creates a console over os.Stdin and os.Stdout, detecting whether
// stdin is an interactive terminal. A piped stdin does not echo, so the
// session is responsible for displaying the lines it consumes.
func NewStdio() *Console {
	return New(os.Stdin, os.Stdout, term.IsTerminal(int(os.Stdin.Fd())))
}

// Interactive reports whether stdin is a terminal.
func Interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func (c *Console) Write(p []byte) (int, error) { return c.out.Write(p) }

// ReadLine reads up to the next line break. A final line without a trailing
// break is still delivered before io.EOF.
func (c *Console) ReadLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Echoes reports whether the terminal echoes input by itself.
func (c *Console) Echoes() bool { return c.echoes }
