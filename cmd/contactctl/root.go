package main

import (
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewRootCmd creates the root command for contactctl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "contactctl",
		Short:         "Check a portfolio server's health and contact relay",
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringP("url", "u", "http://localhost:3000", "base URL of the portfolio server")
	pf.Duration("timeout", 30*time.Second, "request timeout")
	pf.BoolP("verbose", "v", false, "Enable debug logging to stderr")

	cmd.AddCommand(NewHealthCmd())
	cmd.AddCommand(NewSendCmd())
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
