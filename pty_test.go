//go:build !windows

package rewind_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/rewind"
	"github.com/aretw0/rewind/pkg/adapters/stdio"
)

// TestSession_OverPty runs a session against a real pseudo-terminal: input
// typed at the master side is echoed by the tty itself, and the session must
// account for that echo instead of printing its own.
func TestSession_OverPty(t *testing.T) {
	master, tty, err := pty.Open()
	if err != nil {
		t.Skipf("no pty available: %v", err)
	}
	defer master.Close()
	defer tty.Close()

	session := rewind.New(
		rewind.WithConsole(stdio.New(tty, tty, true)),
	)

	done := make(chan error, 1)
	go func() {
		done <- session.Run(context.Background())
	}()

	var mu sync.Mutex
	var output strings.Builder
	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := master.Read(buf)
			if n > 0 {
				mu.Lock()
				output.Write(buf[:n])
				mu.Unlock()
			}
			if err != nil {
				return
			}
		}
	}()

	waitFor := func(substr string) {
		t.Helper()
		deadline := time.After(5 * time.Second)
		for {
			mu.Lock()
			seen := output.String()
			mu.Unlock()
			if strings.Contains(seen, substr) {
				return
			}
			select {
			case <-deadline:
				t.Fatalf("timed out waiting for %q in %q", substr, seen)
			case <-time.After(10 * time.Millisecond):
			}
		}
	}

	waitFor("> ")
	_, err = master.WriteString("(+ 1 2)\n")
	require.NoError(t, err)
	waitFor("=> 3")

	// End of transmission at the start of a line ends the session.
	_, err = master.WriteString("\x04")
	require.NoError(t, err)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("session did not terminate on EOF")
	}
}
