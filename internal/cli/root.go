// Package cli implements the hookgate command tree. The hook subcommand
// is the interception adapter; the rest is operator tooling.
package cli

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "hookgate",
	Short: "Command-interception policy engine for AI coding agents",
	Long: "Intercepts proposed actions (shell commands, file edits, tool calls)\n" +
		"before they execute and decides: allow, block, or require an override.\n" +
		"Fail-closed throughout: a broken check blocks, it never silently passes.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config YAML (default: ~/.hookgate/config.yaml)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger builds the diagnostic logger. Everything goes to stderr:
// stdout belongs to whatever protocol the host layers on top.
func newLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
