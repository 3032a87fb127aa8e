// Command stylefix resolves style-checker issues into rewrite suggestions
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"stylefix/internal/core/version"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "stylefix",
	Short:         "Rewrite suggestions for style-checker issues",
	Long:          "stylefix turns a flagged sentence into ranked rewrite suggestions using pattern rules, a guidance corpus and an optional language model.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		switch flagString(cmd, "color") {
		case "on":
			color.NoColor = false
		case "off":
			color.NoColor = true
		}
		initLogger(flagString(cmd, "log-level"))
	},
}

func main() {
	version.SetService("stylefix")
	rootCmd.Version = version.Info().Version

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(mcpCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level written to stderr")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		color.New(color.FgRed, color.Bold).Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func flagString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}
