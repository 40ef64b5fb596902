// =============================================================================
// FZ10 Ingest - Main Entry Point
// =============================================================================
//
// This is the main entry point for the FZ10 ingest CLI application.
// It initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   fz10 ingest        - Download and ingest one monthly FZ 10 report
//   fz10 export        - Export stored registration records to CSV
//   fz10 version       - Display the application version
//
// ARCHITECTURE:
//   This application follows a modular design where:
//   - cmd/           : Contains all CLI command definitions (Cobra)
//   - internal/      : Contains core business logic (not for external import)
//   - pkg/           : Contains shared utilities
//
// =============================================================================

package main

import (
	"github.com/kbadata/fz10/cmd"
)

// main is the entry point of the application.
// It simply calls the Execute function from the cmd package, which
// initializes and runs the Cobra CLI.
func main() {
	cmd.Execute()
}
