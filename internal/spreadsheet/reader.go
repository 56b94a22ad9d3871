// Package spreadsheet ingests workbook rows for the field mapper. Cells
// are surfaced as raw strings; typed interpretation happens downstream.
package spreadsheet

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/n807235-alt/formfill/internal/fields"
)

// Reader loads response spreadsheets within a configured size limit.
type Reader struct {
	maxFileSize int64
}

// NewReader creates a reader. maxFileSize of 0 disables the size guard.
func NewReader(maxFileSize int64) *Reader {
	return &Reader{maxFileSize: maxFileSize}
}

// ReadAll loads every sheet of the workbook in sheet-iteration order,
// skips each sheet's header row and concatenates the remaining rows.
// A missing, unreadable or oversized file is an input-fatal error.
func (r *Reader) ReadAll(path string) ([]fields.Row, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("spreadsheet does not exist: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access spreadsheet: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return nil, fmt.Errorf("file is not a spreadsheet: %s", path)
	}
	if r.maxFileSize > 0 && info.Size() > r.maxFileSize {
		return nil, fmt.Errorf("spreadsheet too large: %d bytes (max: %d bytes)",
			info.Size(), r.maxFileSize)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	return readWorkbook(f)
}

// ReadAllFrom reads a workbook from an in-memory source, e.g. an upload.
func (r *Reader) ReadAllFrom(src io.Reader) ([]fields.Row, error) {
	var opts []excelize.Options
	if r.maxFileSize > 0 {
		opts = append(opts, excelize.Options{UnzipSizeLimit: r.maxFileSize})
	}

	f, err := excelize.OpenReader(src, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	return readWorkbook(f)
}

func readWorkbook(f *excelize.File) ([]fields.Row, error) {
	var all []fields.Row
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}
		if len(rows) <= 1 {
			// Header only, or empty sheet.
			continue
		}
		for _, row := range rows[1:] {
			all = append(all, fields.Row(row))
		}
	}
	return all, nil
}
