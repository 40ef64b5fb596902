// =============================================================================
// FZ10 Ingest - Ingest Command
// =============================================================================
//
// This file defines the 'ingest' command, which runs the full pipeline for
// one reporting period: fetch the workbook (network or cache), parse it, and
// upsert the normalized records into SQLite.
//
// COMMAND USAGE:
//   fz10 ingest [flags]
//
// FLAGS:
//   --year, --month : Reporting period; defaults to the previous calendar
//                     month when both are omitted
//   --db            : Destination SQLite database path
//   --cache-dir     : Download cache directory
//   --dry-run       : Parse and count records without touching the database
//
// =============================================================================

package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbadata/fz10/internal/fetch"
	"github.com/kbadata/fz10/internal/ingest"
	"github.com/kbadata/fz10/internal/period"
	"github.com/kbadata/fz10/internal/store"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// ingestYear and ingestMonth select the reporting period. Zero means "use
// the default" (the previous calendar month); they are only honored together.
var ingestYear int
var ingestMonth int

// ingestDB overrides the configured database path.
var ingestDB string

// ingestCacheDir overrides the configured cache directory.
var ingestCacheDir string

// ingestDryRun parses and counts records without writing to the database.
var ingestDryRun bool

// =============================================================================
// INGEST COMMAND DEFINITION
// =============================================================================

// ingestCmd represents the 'ingest' command.
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Download and ingest one monthly FZ 10 report",
	Long: `The ingest command downloads the FZ 10 workbook for one reporting period,
streams it through the header-resolution and pivot engine, and upserts the
resulting long-form records into the SQLite database.

Downloads are cached on disk per period, so re-running the command never
fetches the same report twice. Storage uses natural-key upserts, so re-running
the command never duplicates records either.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest()
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the ingest command with the root command and sets up flags.
func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().IntVar(&ingestYear, "year", 0,
		"Reporting year (requires --month; defaults to the previous month)")
	ingestCmd.Flags().IntVar(&ingestMonth, "month", 0,
		"Reporting month 1-12 (requires --year; defaults to the previous month)")
	ingestCmd.Flags().StringVar(&ingestDB, "db", "",
		"SQLite database path (overrides the configuration)")
	ingestCmd.Flags().StringVar(&ingestCacheDir, "cache-dir", "",
		"Download cache directory (overrides the configuration)")
	ingestCmd.Flags().BoolVar(&ingestDryRun, "dry-run", false,
		"Parse and count records without writing to the database")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runIngest wires the collaborators together and executes one ingest run.
func runIngest() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if ingestDB != "" {
		cfg.DatabasePath = ingestDB
	}
	if ingestCacheDir != "" {
		cfg.CacheDir = ingestCacheDir
	}

	p := period.Resolve(ingestYear, ingestMonth)
	if !p.Valid() {
		return fmt.Errorf("implausible reporting period %s", p)
	}

	fetcher := fetch.New(cfg.CacheDir,
		fetch.WithURLTemplate(cfg.SourceURLTemplate),
		fetch.WithClient(&http.Client{
			Timeout: time.Duration(cfg.HTTPTimeoutSeconds) * time.Second,
		}),
	)

	var st *store.Store
	if !ingestDryRun {
		st, err = store.Open(cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer st.Close()
	}

	pipeline := ingest.New(fetcher, st, nil, ingestDryRun)
	result := pipeline.Run(cmdContext(), p)
	if result.Error != nil {
		return result.Error
	}

	fmt.Println("=== Ingest Complete ===")
	fmt.Printf("Period:          %s\n", result.Period)
	fmt.Printf("Categories:      %d\n", result.Stats.Categories)
	fmt.Printf("Block width:     %d\n", result.Stats.BlockWidth)
	fmt.Printf("Records written: %d\n", result.Stats.RecordsWritten)
	fmt.Printf("Time elapsed:    %s\n", result.Stats.Duration)
	if ingestDryRun {
		fmt.Println("(dry run: nothing was written)")
	}
	return nil
}
