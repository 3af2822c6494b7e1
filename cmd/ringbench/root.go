package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose bool

	rootCmd = &cobra.Command{
		Use:   "ringbench",
		Short: "ringbench exercises the ringkit SPSC ring structures",
		Long: `ringbench exercises the ringkit SPSC ring structures.

The data structures never block or spawn goroutines themselves; this tool
plays the host program's role, driving a producer and a consumer and
choosing the wait strategy (busy yield, optionally rate limited).`,
		SilenceUsage: true,
	}
)

func init() {
	cobra.OnInitialize(setupLogging)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(throughputCmd)
	rootCmd.AddCommand(verifyCmd)
}

func setupLogging() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
