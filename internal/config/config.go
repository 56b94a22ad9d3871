// Package config holds the explicit run configuration. All settings are
// passed into the mapper, renderer and runner at call time; nothing is
// ambient.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/n807235-alt/formfill/internal/fields"
)

const (
	// Mode constants
	ModeBatch = "batch"
	ModeServe = "serve"

	// Default values
	DefaultPort            = 8080
	DefaultHost            = "127.0.0.1"
	DefaultLogLevel        = "info"
	DefaultMaxFileSize     = 50 * 1024 * 1024 // 50MB
	DefaultOutputDir       = "output_forms"
	DefaultFormYear        = "2026"
	DefaultTimestampColumn = "B"

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for one formfill process.
type Config struct {
	// Run configuration
	Mode string // "batch" or "serve"

	// Batch inputs
	ExcelPath    string
	TemplatePath string
	OutputDir    string
	ArchivePath  string // empty disables packaging in batch mode

	// Derivation configuration
	MappingFile     string // optional column-map override (YAML)
	TimestampColumn string
	FormYear        string

	// Server configuration (serve mode only)
	Host string
	Port int

	// Application configuration
	Version     string
	AppName     string
	LogLevel    string
	MaxFileSize int64 // upper bound for spreadsheet and template files
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Mode:            ModeBatch,
		ExcelPath:       "",
		TemplatePath:    "",
		OutputDir:       DefaultOutputDir,
		ArchivePath:     "",
		MappingFile:     "",
		TimestampColumn: DefaultTimestampColumn,
		FormYear:        DefaultFormYear,
		Host:            DefaultHost,
		Port:            DefaultPort,
		Version:         "1.0.0",
		AppName:         "formfill",
		LogLevel:        DefaultLogLevel,
		MaxFileSize:     DefaultMaxFileSize,
	}
}

// LoadFromFlags parses command line flags and returns a configuration.
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand paths if needed
	for _, p := range []*string{&cfg.ExcelPath, &cfg.TemplatePath, &cfg.OutputDir, &cfg.ArchivePath, &cfg.MappingFile} {
		if *p == "" {
			continue
		}
		if expanded, err := filepath.Abs(*p); err == nil {
			*p = expanded
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix("FORMFILL")
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("excel", cfg.ExcelPath)
	viper.SetDefault("template", cfg.TemplatePath)
	viper.SetDefault("outdir", cfg.OutputDir)
	viper.SetDefault("archive", cfg.ArchivePath)
	viper.SetDefault("mapping", cfg.MappingFile)
	viper.SetDefault("timestampcol", cfg.TimestampColumn)
	viper.SetDefault("formyear", cfg.FormYear)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Run mode: 'batch' fills forms from local files, 'serve' hosts the upload page")
	pflag.String("excel", cfg.ExcelPath, "Path to the response spreadsheet (batch mode)")
	pflag.String("template", cfg.TemplatePath, "Path to the fillable PDF template (batch mode)")
	pflag.String("outdir", cfg.OutputDir, "Directory for generated documents")
	pflag.String("archive", cfg.ArchivePath, "Optional zip path for the flattened outputs (batch mode)")
	pflag.String("mapping", cfg.MappingFile, "Optional YAML file overriding the column-letter mapping")
	pflag.String("timestampcol", cfg.TimestampColumn, "Column letter holding the submission timestamp")
	pflag.String("formyear", cfg.FormYear, "Year written to the form's year field")
	pflag.String("host", cfg.Host, "Server host address (serve mode only)")
	pflag.Int("port", cfg.Port, "Server port (serve mode only)")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum input file size in bytes")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, name := range []string{
		"mode", "excel", "template", "outdir", "archive", "mapping",
		"timestampcol", "formyear", "host", "port", "loglevel", "maxfilesize",
	} {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nformfill - batch-populate a PDF form template from spreadsheet rows\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --excel=responses.xlsx --template=form.pdf\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --excel=responses.xlsx --template=form.pdf --archive=filled.zip\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=serve --host=0.0.0.0 --port=8081\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  FORMFILL_MODE         Run mode\n")
		fmt.Fprintf(os.Stderr, "  FORMFILL_EXCEL        Response spreadsheet path\n")
		fmt.Fprintf(os.Stderr, "  FORMFILL_TEMPLATE     PDF template path\n")
		fmt.Fprintf(os.Stderr, "  FORMFILL_OUTDIR       Output directory\n")
		fmt.Fprintf(os.Stderr, "  FORMFILL_FORMYEAR     Year written to the form\n")
		fmt.Fprintf(os.Stderr, "  FORMFILL_LOGLEVEL     Log level\n")
		fmt.Fprintf(os.Stderr, "  FORMFILL_MAXFILESIZE  Maximum input file size\n")
	}
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.ExcelPath = viper.GetString("excel")
	cfg.TemplatePath = viper.GetString("template")
	cfg.OutputDir = viper.GetString("outdir")
	cfg.ArchivePath = viper.GetString("archive")
	cfg.MappingFile = viper.GetString("mapping")
	cfg.TimestampColumn = viper.GetString("timestampcol")
	cfg.FormYear = viper.GetString("formyear")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
}

var yearRE = regexp.MustCompile(`^\d{4}$`)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Mode != ModeBatch && c.Mode != ModeServe {
		return errors.New("mode must be either 'batch' or 'serve'")
	}

	if c.Mode == ModeBatch {
		if c.ExcelPath == "" {
			return errors.New("spreadsheet path cannot be empty in batch mode")
		}
		if c.TemplatePath == "" {
			return errors.New("template path cannot be empty in batch mode")
		}
	}

	if c.Mode == ModeServe && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.OutputDir == "" {
		return errors.New("output directory cannot be empty")
	}

	if !yearRE.MatchString(c.FormYear) {
		return fmt.Errorf("form year must be four digits, got %q", c.FormYear)
	}

	if _, err := fields.ColumnIndex(c.TimestampColumn); err != nil {
		return fmt.Errorf("invalid timestamp column: %w", err)
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// ColumnMapping returns the column-letter mapping for this run: the
// contents of MappingFile when set, the built-in default otherwise.
func (c *Config) ColumnMapping() (fields.ColumnMapping, error) {
	if c.MappingFile == "" {
		return fields.DefaultColumnMapping(), nil
	}

	v := viper.New()
	v.SetConfigFile(c.MappingFile)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("cannot read mapping file %s: %w", c.MappingFile, err)
	}

	raw := v.GetStringMapString("columns")
	if len(raw) == 0 {
		return nil, fmt.Errorf("mapping file %s has no 'columns' entries", c.MappingFile)
	}

	mapping := make(fields.ColumnMapping, len(raw))
	for letter, key := range raw {
		if _, err := fields.ColumnIndex(letter); err != nil {
			return nil, fmt.Errorf("mapping file %s: %w", c.MappingFile, err)
		}
		if key == "" {
			return nil, fmt.Errorf("mapping file %s: empty field key for column %q", c.MappingFile, letter)
		}
		mapping[letter] = key
	}
	return mapping, nil
}

// EditableDir returns the directory for editable outputs.
func (c *Config) EditableDir() string {
	return filepath.Join(c.OutputDir, "editable")
}

// FlattenedDir returns the directory for flattened outputs.
func (c *Config) FlattenedDir() string {
	return filepath.Join(c.OutputDir, "flattened")
}

// Address returns the server address as host:port.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled.
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// IsServeMode returns true when running as the upload server.
func (c *Config) IsServeMode() bool {
	return c.Mode == ModeServe
}

// IsBatchMode returns true when running a local batch.
func (c *Config) IsBatchMode() bool {
	return c.Mode == ModeBatch
}

// String returns a string representation of the configuration.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Excel: %s, Template: %s, OutputDir: %s, FormYear: %s, LogLevel: %s, MaxFileSize: %d}",
		c.Mode, c.ExcelPath, c.TemplatePath, c.OutputDir, c.FormYear, c.LogLevel, c.MaxFileSize)
}
