package repl

import (
	"io"
	"log/slog"
)

// State is the driver's externally observable phase.
type State int

const (
	// StateAwaitingPrimaryInput means the driver wants the first line of a
	// new expression.
	StateAwaitingPrimaryInput State = iota
	// StateAwaitingContinuationInput means the last line left a structure
	// open and the driver wants more.
	StateAwaitingContinuationInput
	// StateEvaluating means a parsed form is running.
	StateEvaluating
	// StateReporting means a value or error is being printed.
	StateReporting
	// StateTerminated means end of input was reached and pending output has
	// been flushed.
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateAwaitingPrimaryInput:
		return "awaiting-primary-input"
	case StateAwaitingContinuationInput:
		return "awaiting-continuation-input"
	case StateEvaluating:
		return "evaluating"
	case StateReporting:
		return "reporting"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Config customizes a driver's prompts and report markers. Markers may carry
// styling escape sequences; they pass through the virtual terminal opaquely.
type Config struct {
	Prompt      string // primary prompt, default "> "
	ContPrompt  string // continuation prompt, default ".. "
	ValueMarker string // precedes a printed value, default "=> "
	ErrorMarker string // precedes an evaluation error, default "error: "
	ParseMarker string // precedes a parse error, default "parse error: "
	Logger      *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.Prompt == "" {
		c.Prompt = "> "
	}
	if c.ContPrompt == "" {
		c.ContPrompt = ".. "
	}
	if c.ValueMarker == "" {
		c.ValueMarker = "=> "
	}
	if c.ErrorMarker == "" {
		c.ErrorMarker = "error: "
	}
	if c.ParseMarker == "" {
		c.ParseMarker = "parse error: "
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c
}
