package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/n807235-alt/formfill/internal/batch"
	"github.com/n807235-alt/formfill/internal/config"
	"github.com/n807235-alt/formfill/internal/fields"
	"github.com/n807235-alt/formfill/internal/render"
	"github.com/n807235-alt/formfill/internal/server"
	"github.com/n807235-alt/formfill/internal/spreadsheet"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging configures logging based on the run mode
func setupLogging(cfg *config.Config) {
	log.SetOutput(os.Stderr)
	if cfg.IsDebug() {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}
}

// runBatchMode reads the spreadsheet, renders every row and optionally
// packages the flattened outputs.
func runBatchMode(ctx context.Context, cfg *config.Config) {
	columns, err := cfg.ColumnMapping()
	if err != nil {
		log.Fatalf("Failed to load column mapping: %v", err)
	}

	info, err := render.Inspect(cfg.TemplatePath)
	if err != nil {
		log.Fatalf("Failed to inspect template: %v", err)
	}
	if len(info.FieldNames) == 0 {
		log.Fatalf("Template %s has no form fields", cfg.TemplatePath)
	}
	if cfg.IsDebug() {
		log.Printf("Template: %d pages, %d fields", info.PageCount, len(info.FieldNames))
	}

	rows, err := spreadsheet.NewReader(cfg.MaxFileSize).ReadAll(cfg.ExcelPath)
	if err != nil {
		log.Fatalf("Failed to read spreadsheet: %v", err)
	}
	if len(rows) == 0 {
		log.Fatalf("Spreadsheet %s has no data rows", cfg.ExcelPath)
	}

	mapper := fields.NewMapper(columns, cfg.TimestampColumn, cfg.FormYear)
	if cfg.IsDebug() {
		mapper = mapper.WithDebugLogf(log.Printf)
	}
	runner := batch.NewRunner(mapper, render.NewRenderer(cfg.TemplatePath), batch.Options{
		EditableDir:  cfg.EditableDir(),
		FlattenedDir: cfg.FlattenedDir(),
		ArchivePath:  cfg.ArchivePath,
	})

	summary, err := runner.Run(ctx, rows)
	if err != nil {
		log.Fatalf("Batch failed: %v", err)
	}

	log.Printf("Rendered %d/%d rows into %s", summary.Rendered, summary.Total, cfg.OutputDir)
	if cfg.ArchivePath != "" {
		log.Printf("Packaged %d flattened documents into %s", summary.Archived, cfg.ArchivePath)
	}
	for _, failure := range summary.Failures {
		log.Printf("Failed: %v", failure)
	}
	if len(summary.Failures) > 0 {
		os.Exit(1)
	}
}

// runServeMode hosts the upload page with signal handling for graceful
// shutdown.
func runServeMode(ctx context.Context, cancel context.CancelFunc, cfg *config.Config) {
	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	serverErrCh := make(chan error, 1)
	go func() {
		log.Printf("Listening on http://%s", cfg.Address())
		serverErrCh <- srv.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		log.Printf("Received signal: %s", sig)
		log.Println("Initiating graceful shutdown...")
		cancel()

		if err := <-serverErrCh; err != nil {
			log.Printf("Server shutdown with error: %v", err)
			os.Exit(1)
		}

	case err := <-serverErrCh:
		if err != nil {
			log.Printf("Server error: %v", err)
			os.Exit(1)
		}
	}

	log.Println("Server stopped successfully")
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg)

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() {
		log.Printf("Starting with configuration: %s", cfg.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.IsServeMode() {
		runServeMode(ctx, cancel, cfg)
	} else {
		runBatchMode(ctx, cfg)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("formfill\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
