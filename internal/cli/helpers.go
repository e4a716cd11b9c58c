package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/muesli/termenv"

	"github.com/aretw0/rewind/internal/logging"
)

// signalContext returns a context cancelled on SIGINT or SIGTERM. The
// session notices between evaluation steps; a read blocked on the terminal
// ends when the signal closes stdin at process exit.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// createLogger configures the application logger from the configured level.
// Without debug mode the logger is silent.
func createLogger(level string, debug bool) (*slog.Logger, error) {
	if debug {
		return logging.New(slog.LevelDebug), nil
	}
	if level == "" {
		return logging.NewNop(), nil
	}
	l, err := logging.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return logging.New(l), nil
}

// profileFor resolves the color mode against the actual terminal. "always"
// forces ANSI colors even into a pipe; "never" strips them; "auto" asks
// termenv, but only when stdin is interactive: a scripted session should
// produce a clean transcript.
func profileFor(mode string, interactive bool) termenv.Profile {
	switch mode {
	case "always":
		return termenv.ANSI
	case "never":
		return termenv.Ascii
	default:
		if !interactive {
			return termenv.Ascii
		}
		return termenv.ColorProfile()
	}
}
