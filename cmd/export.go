// =============================================================================
// FZ10 Ingest - Export Command
// =============================================================================
//
// This file defines the 'export' command, which dumps stored registration
// records as a flat CSV file.
//
// COMMAND USAGE:
//   fz10 export [flags]
//
// FLAGS:
//   --year : Restrict the export to one reporting year
//   --db   : Source SQLite database path
//   --out  : Output CSV path (defaults into the configured export directory)
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbadata/fz10/internal/exporter"
	"github.com/kbadata/fz10/internal/store"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// exportYear restricts the export to one reporting year; zero exports all.
var exportYear int

// exportDB overrides the configured database path.
var exportDB string

// exportOut is the output CSV path.
var exportOut string

// =============================================================================
// EXPORT COMMAND DEFINITION
// =============================================================================

// exportCmd represents the 'export' command.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored registration records to CSV",
	Long: `The export command reads normalized records from the SQLite database and
writes them out as one flat CSV file, ordered by the natural record key so
repeated exports of the same data are byte-identical.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport()
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the export command with the root command and sets up flags.
func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().IntVar(&exportYear, "year", 0,
		"Restrict the export to one reporting year (0 = all)")
	exportCmd.Flags().StringVar(&exportDB, "db", "",
		"SQLite database path (overrides the configuration)")
	exportCmd.Flags().StringVar(&exportOut, "out", "",
		"Output CSV path (defaults into the export directory)")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runExport reads records from the store and writes the CSV file.
func runExport() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if exportDB != "" {
		cfg.DatabasePath = exportDB
	}

	out := exportOut
	if out == "" {
		name := fmt.Sprintf("fz10_export_%s.csv", time.Now().Format("20060102_150405"))
		out = filepath.Join(cfg.ExportDir, name)
	}

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := st.Records(cmdContext(), exportYear)
	if err != nil {
		return err
	}

	if err := exporter.WriteFile(out, records); err != nil {
		return err
	}

	fmt.Printf("Exported %d record(s) to %s\n", len(records), out)
	return nil
}
