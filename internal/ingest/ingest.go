// =============================================================================
// FZ10 Ingest - Pipeline Orchestration
// =============================================================================
//
// This module wires the collaborators around the parsing engine into one
// ingest run: fetch the workbook blob for a reporting period, stream it
// through the parser, and hand the lazy record cursor to the store. The
// engine itself performs no I/O against network or storage; everything
// side-effecting lives here.
//
// PIPELINE:
//   1. Fetch (or read from cache) the workbook bytes for the period
//   2. Resolve the sheet schema and open the record cursor
//   3. Drain the cursor into the SQLite store in one transaction
//
// A structurally valid sheet that yields zero non-summary rows is not an
// error; it is reported as an empty run and logged.
//
// =============================================================================

package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kbadata/fz10/internal/fetch"
	"github.com/kbadata/fz10/internal/store"
	"github.com/kbadata/fz10/internal/types"
	"github.com/kbadata/fz10/internal/xlsxparser"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of one ingest run.
type Result struct {
	// RunID identifies this run; it is recorded with every written row.
	RunID string

	// Period is the reporting period that was ingested.
	Period types.Period

	// Success indicates whether the run completed.
	Success bool

	// Error contains the failure if the run aborted. Nil on success.
	Error error

	// Stats contains processing statistics.
	Stats Stats
}

// Stats contains statistics about one ingest run.
type Stats struct {
	// Categories is the number of category blocks detected in the sheet.
	Categories int

	// BlockWidth is the detected number of columns per category block.
	BlockWidth int

	// RecordsWritten is the number of normalized records emitted by the
	// engine and upserted into the store (or merely counted on a dry run).
	RecordsWritten int

	// Duration is the wall-clock time of the run.
	Duration time.Duration
}

// =============================================================================
// PIPELINE
// =============================================================================

// Pipeline executes ingest runs. It is safe to reuse for several periods;
// each run opens its own record cursor, so no engine state is shared across
// passes.
type Pipeline struct {
	fetcher *fetch.Fetcher
	store   *store.Store
	logger  *slog.Logger
	dryRun  bool
}

// New creates a Pipeline. The store may be nil only when dryRun is set.
func New(fetcher *fetch.Fetcher, st *store.Store, logger *slog.Logger, dryRun bool) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		fetcher: fetcher,
		store:   st,
		logger:  logger,
		dryRun:  dryRun,
	}
}

// Run ingests one reporting period.
func (p *Pipeline) Run(ctx context.Context, period types.Period) Result {
	start := time.Now()
	result := Result{
		RunID:  uuid.NewString(),
		Period: period,
	}

	log := p.logger.With(
		slog.String("run_id", result.RunID),
		slog.String("period", period.String()),
	)
	log.Info("ingest run starting", slog.Bool("dry_run", p.dryRun))

	blob, err := p.fetcher.Fetch(ctx, period)
	if err != nil {
		return p.fail(result, start, err)
	}

	cursor, err := xlsxparser.Parse(blob)
	if err != nil {
		return p.fail(result, start, err)
	}
	defer cursor.Close()

	schema := cursor.Schema()
	result.Stats.Categories = len(schema.Categories)
	result.Stats.BlockWidth = schema.BlockWidth
	log.Debug("sheet schema resolved",
		slog.Int("categories", len(schema.Categories)),
		slog.Int("block_width", schema.BlockWidth),
		slog.Any("field_keys", schema.FieldKeys))

	written, err := p.consume(ctx, result.RunID, cursor)
	if err != nil {
		return p.fail(result, start, err)
	}
	result.Stats.RecordsWritten = written

	if written == 0 {
		log.Warn("sheet yielded no non-summary rows")
	}

	result.Success = true
	result.Stats.Duration = time.Since(start)
	log.Info("ingest run finished",
		slog.Int("records", written),
		slog.Duration("elapsed", result.Stats.Duration))
	return result
}

// consume drains the record cursor, either into the store or, on a dry run,
// into a plain counter.
func (p *Pipeline) consume(ctx context.Context, runID string, cursor *xlsxparser.Cursor) (int, error) {
	if !p.dryRun {
		return p.store.InsertAll(ctx, runID, cursor)
	}

	count := 0
	for cursor.Next() {
		count++
	}
	return count, cursor.Err()
}

// fail finalizes a failed result.
func (p *Pipeline) fail(result Result, start time.Time, err error) Result {
	result.Error = err
	result.Stats.Duration = time.Since(start)
	p.logger.Error("ingest run failed",
		slog.String("run_id", result.RunID),
		slog.String("period", result.Period.String()),
		slog.Any("error", err))
	return result
}
