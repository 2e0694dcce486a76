package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "timedfsm",
	Short: "timedfsm plays clip sequences through a timed state machine",
	Long: `timedfsm drives a timed state machine from a host loop with a
variable-rate frame and a fixed-rate step. Each clip is a state that must
stay current for its dwell time before the next one may start.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
}
