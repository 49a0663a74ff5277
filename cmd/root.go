package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/macbridge/internal/config"
	"github.com/teemow/macbridge/internal/logging"
	"github.com/teemow/macbridge/internal/server"
)

var (
	configPath string
	debugMode  bool
	logFormat  string
)

// rootCmd represents the base command for the macbridge application
var rootCmd = &cobra.Command{
	Use:   "macbridge",
	Short: "Finds free calendar slots and turns markdown into Keynote or PowerPoint decks",
	Long: `macbridge connects your Mac's calendar and presentation apps to the command
line and to AI assistants.

It can run as:
  - A CLI: find free slots, list and summarize events, build slide decks
  - An MCP (Model Context Protocol) server for AI assistants`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger, err := logging.New(cmd.ErrOrStderr(), logFormat, debugMode)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		return nil
	},
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "macbridge version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ~/.config/macbridge/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logging.FormatText, "Log format: text or json")

	rootCmd.AddCommand(newSlotsCmd())
	rootCmd.AddCommand(newCalendarCmd())
	rootCmd.AddCommand(newSlidesCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// newCLIContext loads the config and builds a server context for a single
// command run.
func newCLIContext(ctx context.Context) (*server.ServerContext, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	sc, err := server.NewServerContext(ctx, cfg, server.WithLogger(slog.Default()))
	if err != nil {
		return nil, fmt.Errorf("failed to create server context: %w", err)
	}
	return sc, nil
}
