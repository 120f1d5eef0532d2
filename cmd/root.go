package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/teemow/quickcal/internal/logging"
)

// rootCmd represents the base command for the quickcal application
var rootCmd = &cobra.Command{
	Use:   "quickcal",
	Short: "Creates Google Calendar events for several users from fields or a sentence",
	Long: `quickcal lets several named users connect their Google Calendar and creates
events on their behalf, either from structured fields or from a free-text
sentence such as "lunch with Bob tomorrow 12-1pm".

It can run as:
  - An HTTP server handling authorization and event creation (default)
  - An MCP (Model Context Protocol) server for AI assistants
  - A command-line tool for already authorized users`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadDotEnv(envFile); err != nil {
			return err
		}
		envOverride(cmd, "log-level", "LOG_LEVEL", &logLevel)
		envOverride(cmd, "log-format", "LOG_FORMAT", &logFormat)
		return nil
	},
}

// version will be set by main
var version = "dev"

var (
	envFile   string
	logLevel  string
	logFormat string
)

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "quickcal version %s\n" .Version}}`)

	// If no subcommand is provided, run the HTTP server by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file loaded at startup (skipped when missing)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error (env: LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json (env: LOG_FORMAT)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMCPCmd())
	rootCmd.AddCommand(newWhoAmICmd())
	rootCmd.AddCommand(newEventCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// newLogger builds the process logger from the log flags.
func newLogger() *slog.Logger {
	logger := logging.Setup(logLevel, logFormat)
	slog.SetDefault(logger)
	return logger
}

// loadDotEnv loads path into the environment without overriding variables
// that are already set.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}
