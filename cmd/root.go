// =============================================================================
// FZ10 Ingest - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands (like 'ingest', 'export') are
// attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (fz10)
//   ├── ingestCmd (fz10 ingest)
//   ├── exportCmd (fz10 export)
//   └── versionCmd (fz10 version)
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/kbadata/fz10/internal/config"
)

// =============================================================================
// GLOBAL FLAGS
// =============================================================================

// cfgFile holds the path to the configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "fz10",
	Short: "FZ10 Ingest - Load KBA new-vehicle-registration statistics into SQLite",
	Long: `FZ10 Ingest downloads the monthly "FZ 10" new-registration statistics
published by the Kraftfahrt-Bundesamt (KBA), resolves the spreadsheet's
two-row hierarchical header, pivots the repeating per-category column blocks
into long-form records, and upserts them into a local SQLite table.

Key Features:
  - Streaming, single-pass parsing of the published XLSX workbook
  - Dynamic detection of the per-category column block width
  - Forward-filled brand column and summary-row exclusion
  - Idempotent downloads (on-disk cache per reporting period)
  - Idempotent storage (natural-key upserts)

Example Usage:
  fz10 ingest                      # Ingest the previous calendar month
  fz10 ingest --year 2025 --month 6
  fz10 export --out june.csv       # Dump stored records as CSV`,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init sets up the global flags.
func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug output",
	)
}

// loadConfig loads the configuration file and installs the default logger.
// The --verbose flag overrides the configured log level.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	return cfg, nil
}

// cmdContext returns the context for one command invocation, cancelled on
// interrupt so a long download aborts cleanly.
func cmdContext() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), os.Interrupt)
	return ctx
}
