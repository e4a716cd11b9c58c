package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rewind",
	Short: "Rewind is a time-travel interactive interpreter",
	Long: `Rewind runs an interactive Scheme session whose continuations capture the
whole session: invoking a checkpoint from a later turn rewinds the screen,
returns the consumed input, and replays it byte-for-byte.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "rewind.yaml", "Path to the configuration file")
}
