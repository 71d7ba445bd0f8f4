// =============================================================================
// EMV QR Payload Toolkit - Configuration Module
// =============================================================================
//
// Loads the tool configuration. Only the batch "process" command and the
// logger bootstrap read it; the codec itself takes no configuration.
//
// FILE FORMATS (selected by extension):
//   .yaml, .yml - gopkg.in/yaml.v3
//   .toml       - github.com/BurntSushi/toml
//
// LOADING:
//   1. Start from Default()
//   2. Overlay the file (keys absent from the file keep their default)
//   3. Fill any emptied string settings back in (applyDefaults)
//   4. Validate
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/mono57/emvqr/internal/logging"
)

// Output types for batch result files.
const (
	OutputXLSX = "xlsx"
	OutputCSV  = "csv"
)

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the tool configuration.
type Config struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned for .csv and .xlsx merchant record files.
	// Default: "./input"
	InputDir string `yaml:"input_dir" toml:"input_dir"`

	// OutputDir receives the result files.
	// Default: "./output"
	OutputDir string `yaml:"output_dir" toml:"output_dir"`

	// InputArchiveDir receives processed input files.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir" toml:"input_archive_dir"`

	// OutputArchiveDir receives a copy of every result file.
	// Default: "./output_archive"
	OutputArchiveDir string `yaml:"output_archive_dir" toml:"output_archive_dir"`

	// ArchiveInputs moves inputs to InputArchiveDir after a successful run.
	// Default: true
	ArchiveInputs bool `yaml:"archive_inputs" toml:"archive_inputs"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputNameFormat names result files.
	// Placeholders:
	//   {uuid}      - a random UUID
	//   {timestamp} - YYYYMMDD_HHMMSS
	//   {input}     - input file name without extension
	// The extension for OutputType is appended when missing.
	// Default: "{input}_{timestamp}_{uuid}"
	OutputNameFormat string `yaml:"output_name_format" toml:"output_name_format"`

	// OutputType is "xlsx" or "csv".
	// Default: "xlsx"
	OutputType string `yaml:"output_type" toml:"output_type"`

	// SheetName is read from .xlsx inputs and written to .xlsx outputs. An
	// empty name reads the first sheet.
	// Default: "Payloads" (output only)
	SheetName string `yaml:"sheet_name" toml:"sheet_name"`

	// HeaderRow is the 1-based row holding field keys.
	// Default: 1
	HeaderRow int `yaml:"header_row" toml:"header_row"`

	// CSV holds CSV reading and writing settings.
	CSV CSVSettings `yaml:"csv" toml:"csv"`

	// VerifyOutput re-decodes every generated payload and fails the row when
	// it does not decode to the encoded fields.
	// Default: true
	VerifyOutput bool `yaml:"verify_output" toml:"verify_output"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel is one of debug, info, warn, error, off.
	// Default: "info"
	LogLevel string `yaml:"log_level" toml:"log_level"`

	// LogBackend is one of zap, logrus, zerolog.
	// Default: "zap"
	LogBackend string `yaml:"log_backend" toml:"log_backend"`

	// LogFile, when set, receives log output instead of stderr.
	LogFile string `yaml:"log_file" toml:"log_file"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of files processed at once.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency" toml:"max_concurrency"`

	// ContinueOnError keeps processing the remaining files and rows after a
	// failure.
	// Default: true
	ContinueOnError bool `yaml:"continue_on_error" toml:"continue_on_error"`

	// StaticFields are added to every record that does not set them, keyed by
	// raw tag id or friendly name.
	StaticFields map[string]string `yaml:"static_fields" toml:"static_fields"`

	// Transformations normalise record values before encoding.
	Transformations []TransformationRule `yaml:"transformations" toml:"transformations"`
}

// CSVSettings contains settings for CSV inputs and outputs.
type CSVSettings struct {
	// Delimiter separates fields. Default: ","
	Delimiter string `yaml:"delimiter" toml:"delimiter"`

	// Comment, when set, marks lines to skip.
	Comment string `yaml:"comment" toml:"comment"`
}

// Comma resolves Delimiter, accepting the names tab, pipe and semicolon.
// It returns 0 when Delimiter is neither a name nor a single character.
func (s CSVSettings) Comma() rune {
	switch strings.ToLower(s.Delimiter) {
	case "\\t", "tab":
		return '\t'
	case "pipe":
		return '|'
	case "semicolon":
		return ';'
	}
	r := []rune(s.Delimiter)
	if len(r) != 1 || r[0] == '"' || r[0] == '\r' || r[0] == '\n' {
		return 0
	}
	return r[0]
}

// CommentRune returns the comment character, or 0 when none is set.
func (s CSVSettings) CommentRune() rune {
	r := []rune(s.Comment)
	if len(r) != 1 {
		return 0
	}
	return r[0]
}

// TransformationRule lists the actions applied to one record field.
type TransformationRule struct {
	// Field is the record key (raw id or friendly name).
	Field string `yaml:"field" toml:"field"`

	// Actions are applied in order.
	Actions []TransformationAction `yaml:"actions" toml:"actions"`
}

// TransformationAction is a single value transformation. See
// converter.ApplyTransformation for the supported types.
type TransformationAction struct {
	Type        string            `yaml:"type" toml:"type"`
	Value       string            `yaml:"value,omitempty" toml:"value,omitempty"`
	Find        string            `yaml:"find,omitempty" toml:"find,omitempty"`
	LookupTable map[string]string `yaml:"lookup_table,omitempty" toml:"lookup_table,omitempty"`
}

// =============================================================================
// LOADING
// =============================================================================

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{
		ArchiveInputs:   true,
		VerifyOutput:    true,
		ContinueOnError: true,
	}
	applyDefaults(cfg)
	return cfg
}

// Load reads the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("unsupported config file extension %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields Default() when
// required is false.
func LoadOrDefault(path string, required bool) (*Config, error) {
	cfg, err := Load(path)
	if err != nil && !required && errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// applyDefaults sets default values for any unset string or numeric option.
func applyDefaults(cfg *Config) {
	if cfg.InputDir == "" {
		cfg.InputDir = "./input"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./output"
	}
	if cfg.InputArchiveDir == "" {
		cfg.InputArchiveDir = "./input_archive"
	}
	if cfg.OutputArchiveDir == "" {
		cfg.OutputArchiveDir = "./output_archive"
	}
	if cfg.OutputNameFormat == "" {
		cfg.OutputNameFormat = "{input}_{timestamp}_{uuid}"
	}
	if cfg.OutputType == "" {
		cfg.OutputType = OutputXLSX
	}
	cfg.OutputType = strings.ToLower(cfg.OutputType)
	if cfg.HeaderRow == 0 {
		cfg.HeaderRow = 1
	}
	if cfg.CSV.Delimiter == "" {
		cfg.CSV.Delimiter = ","
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogBackend == "" {
		cfg.LogBackend = logging.BackendZap
	}
	if cfg.MaxConcurrency == 0 {
		cfg.MaxConcurrency = 4
	}
}

// Validate checks option values. It does not touch the file system.
func (c *Config) Validate() error {
	var problems []string

	if c.OutputType != OutputXLSX && c.OutputType != OutputCSV {
		problems = append(problems, fmt.Sprintf("output_type must be %q or %q, got %q", OutputXLSX, OutputCSV, c.OutputType))
	}
	if c.HeaderRow < 1 {
		problems = append(problems, fmt.Sprintf("header_row must be at least 1, got %d", c.HeaderRow))
	}
	if c.MaxConcurrency < 1 {
		problems = append(problems, fmt.Sprintf("max_concurrency must be at least 1, got %d", c.MaxConcurrency))
	}
	if c.CSV.Comma() == 0 {
		problems = append(problems, fmt.Sprintf("csv.delimiter must be a single character or tab, pipe, semicolon; got %q", c.CSV.Delimiter))
	}
	if len([]rune(c.CSV.Comment)) > 1 {
		problems = append(problems, fmt.Sprintf("csv.comment must be at most one character, got %q", c.CSV.Comment))
	}
	if _, ok := logging.ParseLevel(c.LogLevel); !ok {
		problems = append(problems, fmt.Sprintf("unknown log_level %q", c.LogLevel))
	}
	if !knownBackend(c.LogBackend) {
		problems = append(problems, fmt.Sprintf("unknown log_backend %q", c.LogBackend))
	}
	for i, rule := range c.Transformations {
		if rule.Field == "" {
			problems = append(problems, fmt.Sprintf("transformations[%d]: field is required", i))
		}
		for j, action := range rule.Actions {
			if action.Type == "" {
				problems = append(problems, fmt.Sprintf("transformations[%d].actions[%d]: type is required", i, j))
			}
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func knownBackend(name string) bool {
	for _, b := range logging.Backends {
		if strings.EqualFold(b, name) {
			return true
		}
	}
	return false
}

// Directories returns every directory the batch command writes to or reads
// from.
func (c *Config) Directories() []string {
	return []string{c.InputDir, c.OutputDir, c.InputArchiveDir, c.OutputArchiveDir}
}
