// Package cli wires configuration, terminal detection, and the session
// together for the rewind command.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/rewind"
	"github.com/aretw0/rewind/internal/presentation/tui"
	"github.com/aretw0/rewind/pkg/adapters/stdio"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	ConfigPath string
	ScriptPath string // empty means read from stdin
	Color      string // overrides config when non-empty
	LogLevel   string // overrides config when non-empty
	NoBanner   bool
	Quiet      bool // implies NoBanner and suppresses the welcome notes
	Debug      bool
}

// Execute runs one session according to opts.
func Execute(opts RunOptions) error {
	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	if opts.Color != "" {
		cfg.Color = opts.Color
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	logger, err := createLogger(cfg.LogLevel, opts.Debug)
	if err != nil {
		return err
	}

	console := stdio.NewStdio()
	interactive := stdio.Interactive()
	if opts.ScriptPath != "" {
		f, err := os.Open(opts.ScriptPath)
		if err != nil {
			return fmt.Errorf("failed to open script: %w", err)
		}
		defer f.Close()
		console = stdio.New(f, os.Stdout, false)
		interactive = false
	}

	if interactive && cfg.ShowBanner() && !opts.NoBanner && !opts.Quiet {
		tui.PrintBanner(rewind.Version)
		tui.PrintWelcome()
	}

	sessionOpts := []rewind.Option{
		rewind.WithConsole(console),
		rewind.WithLogger(logger),
		rewind.WithProfile(profileFor(cfg.Color, interactive)),
	}
	if cfg.Prompt != "" || cfg.ContinuationPrompt != "" {
		sessionOpts = append(sessionOpts, rewind.WithPrompts(cfg.Prompt, cfg.ContinuationPrompt))
	}

	ctx, cancel := signalContext(context.Background())
	defer cancel()

	return rewind.New(sessionOpts...).Run(ctx)
}
