package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewRootCmd creates the root command for revealctl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revealctl",
		Short: "Inspect the portfolio page's scroll reveal sequence",
		Long: `revealctl loads the portfolio page and its sequence config, scrolls every
section into view on a virtual clock, or in wall-clock time with
timeline --realtime, and reports the resulting mutations.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging to stderr")

	cmd.AddCommand(NewTimelineCmd())
	cmd.AddCommand(NewConfigCmd())
	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}

// commandLogger returns a debug console logger when --verbose is set.
func commandLogger(cmd *cobra.Command) (*zap.Logger, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if !verbose {
		return zap.NewNop(), nil
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}
