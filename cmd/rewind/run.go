package main

import (
	"fmt"
	"os"

	"github.com/aretw0/rewind/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [script]",
	Short: "Run an interactive session, or replay a script file",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := cli.RunOptions{}
		opts.ConfigPath, _ = cmd.Root().PersistentFlags().GetString("config")
		opts.Color, _ = cmd.Flags().GetString("color")
		opts.LogLevel, _ = cmd.Flags().GetString("log-level")
		opts.NoBanner, _ = cmd.Flags().GetBool("no-banner")
		opts.Quiet, _ = cmd.Flags().GetBool("quiet")
		opts.Debug, _ = cmd.Flags().GetBool("debug")
		if len(args) > 0 {
			opts.ScriptPath = args[0]
		}

		if err := cli.Execute(opts); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("color", "", "Color mode: auto, always or never")
	runCmd.Flags().String("log-level", "", "Log level: debug, info, warn or error")
	runCmd.Flags().Bool("no-banner", false, "Suppress the startup banner")
	runCmd.Flags().BoolP("quiet", "q", false, "Suppress the banner and welcome notes")
	runCmd.Flags().Bool("debug", false, "Enable debug logging to stderr")

	// Make 'run' the default when no subcommand is given.
	rootCmd.Run = runCmd.Run
	rootCmd.Args = runCmd.Args
}
