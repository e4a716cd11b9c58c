package rewind

import (
	"context"
	"log/slog"

	"github.com/muesli/termenv"

	"github.com/aretw0/rewind/pkg/adapters/stdio"
	"github.com/aretw0/rewind/pkg/lang"
	"github.com/aretw0/rewind/pkg/ports"
	"github.com/aretw0/rewind/pkg/repl"
)

// Version is the library version, surfaced by the CLI.
const Version = "0.1.0"

// Session is the high-level entry point for the Rewind library. It wraps the
// driver and provides a simplified API for consumers.
type Session struct {
	console ports.Console
	cfg     repl.Config
	driver  *repl.Driver
	logger  *slog.Logger
}

// Option defines a functional option for configuring a Session.
type Option func(*Session)

// WithConsole injects a custom console, bypassing the default stdio setup.
func WithConsole(c ports.Console) Option {
	return func(s *Session) {
		s.console = c
	}
}

// WithLogger sets a custom structured logger for the session.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithPrompts overrides the primary and continuation prompts.
func WithPrompts(primary, continuation string) Option {
	return func(s *Session) {
		s.cfg.Prompt = primary
		s.cfg.ContPrompt = continuation
	}
}

// WithProfile styles the value and error markers for the given color
// profile. termenv.Ascii leaves them plain.
func WithProfile(p termenv.Profile) Option {
	return func(s *Session) {
		s.cfg.ValueMarker = p.String("=> ").Foreground(p.Color("10")).Bold().String()
		s.cfg.ErrorMarker = p.String("error: ").Foreground(p.Color("9")).String()
		s.cfg.ParseMarker = p.String("parse error: ").Foreground(p.Color("11")).String()
	}
}

// New initializes a session. By default it reads from stdin and writes to
// stdout, detecting whether stdin is an interactive terminal.
func New(opts ...Option) *Session {
	s := &Session{}
	for _, opt := range opts {
		opt(s)
	}
	if s.console == nil {
		s.console = stdio.NewStdio()
	}
	s.cfg.Logger = s.logger
	s.driver = repl.NewDriver(s.console, s.cfg)
	return s
}

// Run executes the session until end of input.
func (s *Session) Run(ctx context.Context) error {
	return s.driver.Run(ctx)
}

// State reports the driver's current phase.
func (s *Session) State() repl.State {
	return s.driver.State()
}

// Global exposes the session's top-level environment, so embedders can
// predefine bindings before Run.
func (s *Session) Global() *lang.Env {
	return s.driver.Global()
}
