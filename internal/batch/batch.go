// Package batch drives one sequential run: map each spreadsheet row to a
// field-value map, render it, collect row-local failures, package the
// flattened outputs.
package batch

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/n807235-alt/formfill/internal/archive"
	"github.com/n807235-alt/formfill/internal/fields"
)

// DefaultDirPerm is the mode for output directories created on demand.
const DefaultDirPerm = 0o750

// RowRenderer writes the editable and flattened documents for one row.
// *render.Renderer implements it; tests substitute a fake.
type RowRenderer interface {
	Render(values fields.FieldValues, editablePath, flattenedPath string) error
}

// Options control one run.
type Options struct {
	EditableDir  string
	FlattenedDir string
	// ArchivePath, when non-empty, collects the flattened outputs into a
	// zip after the last row.
	ArchivePath string
	DirPerm     os.FileMode
}

// RowError records a row that failed to render.
type RowError struct {
	RowNumber  int
	Identifier string
	Err        error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d (file %s): %v", e.RowNumber, e.Identifier, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// Summary reports the outcome of a run.
type Summary struct {
	Total    int
	Rendered int
	Archived int
	Failures []RowError
}

// Runner executes runs with a fixed mapper and renderer. Rows are
// processed one at a time; each is fully mapped and rendered before the
// next begins.
type Runner struct {
	mapper   *fields.Mapper
	renderer RowRenderer
	opts     Options
	logf     func(format string, args ...any)
}

// NewRunner creates a runner.
func NewRunner(mapper *fields.Mapper, renderer RowRenderer, opts Options) *Runner {
	if opts.DirPerm == 0 {
		opts.DirPerm = DefaultDirPerm
	}
	return &Runner{
		mapper:   mapper,
		renderer: renderer,
		opts:     opts,
		logf:     log.Printf,
	}
}

// Run processes all rows sequentially. Row-local failures are logged with
// the row's identifier and collected in the summary; the batch continues.
// Only structural problems (unwritable directories, archive errors,
// cancellation) abort the run.
func (r *Runner) Run(ctx context.Context, rows []fields.Row) (*Summary, error) {
	total := len(rows)
	summary := &Summary{Total: total}

	if err := os.MkdirAll(r.opts.EditableDir, r.opts.DirPerm); err != nil {
		return nil, fmt.Errorf("cannot create editable output directory: %w", err)
	}
	if err := os.MkdirAll(r.opts.FlattenedDir, r.opts.DirPerm); err != nil {
		return nil, fmt.Errorf("cannot create flattened output directory: %w", err)
	}

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("run canceled after %d rows: %w", i, err)
		}

		rowNumber := i + 1
		id := fields.OutputIdentifier(rowNumber, total)
		values := r.mapper.MapRow(row, rowNumber, total)

		editable := filepath.Join(r.opts.EditableDir, id+".pdf")
		flattened := filepath.Join(r.opts.FlattenedDir, id+"_flat.pdf")

		r.logf("[%d/%d] generating %s", rowNumber, total, id)
		if err := r.renderer.Render(values, editable, flattened); err != nil {
			rowErr := RowError{RowNumber: rowNumber, Identifier: id, Err: err}
			r.logf("ERROR %v", rowErr)
			summary.Failures = append(summary.Failures, rowErr)
			continue
		}
		summary.Rendered++
	}

	if r.opts.ArchivePath != "" {
		n, err := archive.Pack(r.opts.FlattenedDir, r.opts.ArchivePath)
		if err != nil {
			return summary, fmt.Errorf("failed to package flattened outputs: %w", err)
		}
		summary.Archived = n
	}

	return summary, nil
}
