package tui

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

const welcome = `
Type expressions at the prompt; values print after ` + "`=>`" + `.

- ` + "`(call/cc (lambda (k) ...))`" + ` captures a **checkpoint** of this very
  session: computation, consumed input, printed output.
- Calling a checkpoint later rewinds the screen to the capture point and
  replays the turns in between, byte for byte.
- ` + "`(dynamic-wind before thunk after)`" + ` runs its guards on every
  crossing, including time-travel ones.

An empty line or end of input ends the session.
`

// PrintWelcome renders the usage notes as styled markdown. Rendering
// failures degrade to the raw text; the notes are not worth aborting over.
func PrintWelcome() {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // detect light/dark background
	)
	if err != nil {
		fmt.Print(welcome)
		return
	}
	out, err := r.Render(welcome)
	if err != nil {
		fmt.Print(welcome)
		return
	}
	fmt.Print(out)
}
