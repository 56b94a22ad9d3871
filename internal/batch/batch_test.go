package batch

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n807235-alt/formfill/internal/fields"
)

// fakeRenderer records render calls and writes placeholder output files.
type fakeRenderer struct {
	calls  []string
	failOn map[string]error
}

func (f *fakeRenderer) Render(values fields.FieldValues, editablePath, flattenedPath string) error {
	f.calls = append(f.calls, filepath.Base(editablePath))
	if err := f.failOn[filepath.Base(editablePath)]; err != nil {
		return err
	}
	if err := os.WriteFile(editablePath, []byte("%PDF-1.7"), 0o600); err != nil {
		return err
	}
	return os.WriteFile(flattenedPath, []byte("%PDF-1.7"), 0o600)
}

func testMapper() *fields.Mapper {
	return fields.NewMapper(fields.DefaultColumnMapping(), "B", "2026").
		WithClock(func() time.Time { return time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC) })
}

func testRows(n int) []fields.Row {
	rows := make([]fields.Row, n)
	for i := range rows {
		rows[i] = fields.Row{"", "", "Smith John"}
	}
	return rows
}

func newTestRunner(t *testing.T, renderer RowRenderer, archivePath string) *Runner {
	t.Helper()
	base := t.TempDir()
	r := NewRunner(testMapper(), renderer, Options{
		EditableDir:  filepath.Join(base, "editable"),
		FlattenedDir: filepath.Join(base, "flattened"),
		ArchivePath:  archivePath,
	})
	r.logf = func(format string, args ...any) {}
	return r
}

func TestRunSequentialNaming(t *testing.T) {
	renderer := &fakeRenderer{}
	runner := newTestRunner(t, renderer, "")

	summary, err := runner.Run(context.Background(), testRows(12))
	require.NoError(t, err)

	assert.Equal(t, 12, summary.Total)
	assert.Equal(t, 12, summary.Rendered)
	assert.Empty(t, summary.Failures)

	// Identifiers are zero-padded to the width of the total row count.
	require.Len(t, renderer.calls, 12)
	assert.Equal(t, "01.pdf", renderer.calls[0])
	assert.Equal(t, "12.pdf", renderer.calls[11])
}

func TestRunContinuesPastRowFailures(t *testing.T) {
	renderer := &fakeRenderer{failOn: map[string]error{"2.pdf": errors.New("bad field reference")}}
	runner := newTestRunner(t, renderer, "")

	summary, err := runner.Run(context.Background(), testRows(3))
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Rendered)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, 2, summary.Failures[0].RowNumber)
	assert.Equal(t, "2", summary.Failures[0].Identifier)
	assert.Contains(t, summary.Failures[0].Error(), "bad field reference")

	// All three rows were attempted.
	assert.Len(t, renderer.calls, 3)
}

func TestRunPackagesArchive(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "filled_forms.zip")
	runner := newTestRunner(t, &fakeRenderer{}, archivePath)

	summary, err := runner.Run(context.Background(), testRows(2))
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Archived)

	zr, err := zip.OpenReader(archivePath)
	require.NoError(t, err)
	defer zr.Close()
	assert.Len(t, zr.File, 2)
}

func TestRunCanceledContext(t *testing.T) {
	runner := newTestRunner(t, &fakeRenderer{}, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Run(ctx, testRows(5))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "canceled")
}

func TestRunEmptyRows(t *testing.T) {
	runner := newTestRunner(t, &fakeRenderer{}, "")

	summary, err := runner.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Total)
	assert.Equal(t, 0, summary.Rendered)
}
