package rewind_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/rewind"
	"github.com/aretw0/rewind/pkg/adapters/memory"
)

// Example runs a scripted session and prints its exact transcript. The
// scripted console never echoes, so every visible byte comes from the
// session itself.
func Example() {
	console := memory.NewConsole(
		"(define (double x) (* 2 x))",
		"(double 21)",
	)
	session := rewind.New(rewind.WithConsole(console))
	if err := session.Run(context.Background()); err != nil {
		log.Fatal(err)
	}
	fmt.Print(console.Trace())
	// Output:
	// > (define (double x) (* 2 x))
	// > (double 21)
	// => 42
	// >
}
