// Package server hosts the upload page: one POST with a response
// spreadsheet and a PDF template runs a batch and returns the zip of
// flattened documents.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/n807235-alt/formfill/internal/batch"
	"github.com/n807235-alt/formfill/internal/config"
	"github.com/n807235-alt/formfill/internal/fields"
	"github.com/n807235-alt/formfill/internal/render"
	"github.com/n807235-alt/formfill/internal/spreadsheet"
)

const (
	shutdownTimeout = 5 * time.Second
	archiveName     = "filled_forms.zip"
)

// Server wraps the HTTP surface around the batch runner.
type Server struct {
	cfg        *config.Config
	columns    fields.ColumnMapping
	reader     *spreadsheet.Reader
	httpServer *http.Server
}

// New creates the upload server. The column mapping is resolved once at
// startup; every request shares it.
func New(cfg *config.Config) (*Server, error) {
	columns, err := cfg.ColumnMapping()
	if err != nil {
		return nil, fmt.Errorf("failed to load column mapping: %w", err)
	}

	s := &Server{
		cfg:     cfg,
		columns: columns,
		reader:  spreadsheet.NewReader(cfg.MaxFileSize),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/generate", s.handleGenerate)

	s.httpServer = &http.Server{
		Addr:              cfg.Address(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	if err := uploadTemplate.Execute(w, nil); err != nil {
		log.Printf("Template error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// handleGenerate runs one batch per request into a per-request temp
// directory and streams the resulting archive back.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if err := r.ParseMultipartForm(s.cfg.MaxFileSize); err != nil {
		http.Error(w, "Upload too large", http.StatusBadRequest)
		return
	}

	rows, err := s.readSpreadsheetUpload(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(rows) == 0 {
		http.Error(w, "Spreadsheet has no data rows", http.StatusBadRequest)
		return
	}

	workDir, err := os.MkdirTemp("", "formfill-")
	if err != nil {
		log.Printf("Failed to create work directory: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(workDir)

	templatePath, err := s.saveTemplateUpload(r, workDir)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	mapper := fields.NewMapper(s.columns, s.cfg.TimestampColumn, s.cfg.FormYear)
	if s.cfg.IsDebug() {
		mapper = mapper.WithDebugLogf(log.Printf)
	}
	archivePath := filepath.Join(workDir, archiveName)
	runner := batch.NewRunner(mapper, render.NewRenderer(templatePath), batch.Options{
		EditableDir:  filepath.Join(workDir, "editable"),
		FlattenedDir: filepath.Join(workDir, "flattened"),
		ArchivePath:  archivePath,
	})

	summary, err := runner.Run(r.Context(), rows)
	if err != nil {
		log.Printf("Batch failed: %v", err)
		http.Error(w, "Batch failed", http.StatusInternalServerError)
		return
	}
	log.Printf("Batch complete: %d/%d rows rendered, %d failures",
		summary.Rendered, summary.Total, len(summary.Failures))

	s.serveArchive(w, archivePath)
}

// readSpreadsheetUpload pulls the spreadsheet part out of the request.
func (s *Server) readSpreadsheetUpload(r *http.Request) ([]fields.Row, error) {
	file, header, err := r.FormFile("spreadsheet")
	if err != nil {
		return nil, errors.New("missing 'spreadsheet' upload")
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".xlsx") {
		return nil, fmt.Errorf("unsupported spreadsheet type: %s", header.Filename)
	}

	rows, err := s.reader.ReadAllFrom(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read spreadsheet: %w", err)
	}
	return rows, nil
}

// saveTemplateUpload writes the template part to disk; the renderer
// re-reads it per row.
func (s *Server) saveTemplateUpload(r *http.Request, workDir string) (string, error) {
	file, header, err := r.FormFile("template")
	if err != nil {
		return "", errors.New("missing 'template' upload")
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		return "", fmt.Errorf("unsupported template type: %s", header.Filename)
	}

	path := filepath.Join(workDir, "template.pdf")
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to save template: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		return "", fmt.Errorf("failed to save template: %w", err)
	}
	return path, nil
}

func (s *Server) serveArchive(w http.ResponseWriter, archivePath string) {
	f, err := os.Open(archivePath)
	if err != nil {
		log.Printf("Failed to open archive: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", archiveName))
	if _, err := io.Copy(w, f); err != nil {
		log.Printf("Failed to stream archive: %v", err)
	}
}
