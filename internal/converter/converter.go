// =============================================================================
// EMV QR Payload Toolkit - Converter Module
// =============================================================================
//
// Runs the batch pipeline for a single merchant record file.
//
// CONVERSION PIPELINE:
//   1. Read the records (.csv or .xlsx)
//   2. Merge static fields into every record
//   3. Apply transformation rules
//   4. Validate each record
//   5. Encode each valid record as a payload
//   6. Verify the payload by decoding it again
//   7. Write the result file (.xlsx or .csv)
//   8. Archive the input and the result
//
// Rows fail independently: an invalid or unencodable row is reported in the
// result file and the error log while the other rows carry on. With
// continue_on_error disabled the first failed row fails the whole file and no
// result file is written.
//
// CONCURRENCY:
//   A Converter handles one file. RunAll runs one Converter per file, bounded
//   by max_concurrency.
//
// =============================================================================

package converter

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mono57/emvqr/internal/config"
	"github.com/mono57/emvqr/internal/csvparser"
	"github.com/mono57/emvqr/internal/logging"
	"github.com/mono57/emvqr/internal/types"
	"github.com/mono57/emvqr/internal/validation"
	"github.com/mono57/emvqr/internal/writer"
	"github.com/mono57/emvqr/internal/xlsxparser"
	"github.com/mono57/emvqr/pkg/emvqr"
	"github.com/mono57/emvqr/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the input file.
	FilePath string

	// OutputFile is the result file, empty on failure or in a dry run.
	OutputFile string

	// ArchivedInput is where the input was moved, empty when not archived.
	ArchivedInput string

	// Success is true when every step up to writing the result succeeded.
	// Individual rows may still be invalid.
	Success bool

	// Error is the file-level failure.
	Error error

	// Rows holds one entry per record, in file order.
	Rows []types.PayloadRow

	// Errors are the error log entries for this file.
	Errors []utils.ErrorLogEntry

	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// RecordsRead is the number of records read from the file.
	RecordsRead int

	// Encoded is the number of rows with a verified payload.
	Encoded int

	// Invalid is the number of rows rejected by validation.
	Invalid int

	// Failed is the number of rows that could not be encoded or verified.
	Failed int

	// Warnings is the number of validation warnings.
	Warnings int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter handles the conversion of a single merchant record file.
type Converter struct {
	inputPath string
	cfg       *config.Config
	files     *utils.FileManager
	codec     *emvqr.Codec
	validator *validation.Validator
	logger    logging.Logger
	dryRun    bool
	now       func() time.Time
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the logger. The codec logs through it as well.
func WithLogger(l logging.Logger) Option {
	return func(c *Converter) { c.logger = logging.OrNop(l) }
}

// WithFileManager replaces the file manager built from the configuration.
func WithFileManager(fm *utils.FileManager) Option {
	return func(c *Converter) { c.files = fm }
}

// WithDryRun encodes every row but writes and archives nothing.
func WithDryRun(dryRun bool) Option {
	return func(c *Converter) { c.dryRun = dryRun }
}

// New creates a Converter for inputPath.
func New(inputPath string, cfg *config.Config, opts ...Option) *Converter {
	c := &Converter{
		inputPath: inputPath,
		cfg:       cfg,
		logger:    logging.NopLogger{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.files == nil {
		c.files = NewFileManager(cfg)
	}
	c.codec = emvqr.New(emvqr.WithLogger(c.logger))
	c.validator = validation.NewValidator()
	return c
}

// NewFileManager builds the file manager described by cfg.
func NewFileManager(cfg *config.Config) *utils.FileManager {
	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir, cfg.OutputArchiveDir)
	fm.ArchiveOnSuccess = cfg.ArchiveInputs
	return fm
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the pipeline for the file. It stops between records when ctx
// is cancelled.
func (c *Converter) Run(ctx context.Context) Result {
	start := c.now()
	result := Result{FilePath: c.inputPath}
	name := filepath.Base(c.inputPath)

	fail := func(err error) Result {
		result.Error = err
		result.Errors = append(result.Errors, utils.ErrorLogEntry{
			Timestamp:    c.now(),
			FileName:     name,
			ErrorType:    "file",
			ErrorMessage: err.Error(),
		})
		result.Stats.ProcessingTime = time.Since(start)
		c.logger.Error("file failed", logging.Fields{"file": name, "error": err.Error()})
		return result
	}

	c.logger.Info("processing file", logging.Fields{"file": name})

	// =========================================================================
	// STEP 1: READ RECORDS
	// =========================================================================

	set, err := c.readRecords()
	if err != nil {
		return fail(fmt.Errorf("failed to read records: %w", err))
	}
	result.Stats.RecordsRead = len(set.Records)
	c.logger.Debug("read records", logging.Fields{"file": name, "records": len(set.Records), "columns": len(set.Headers)})

	transformer, err := NewTransformer(c.cfg.Transformations)
	if err != nil {
		return fail(err)
	}

	// =========================================================================
	// STEPS 2-6: PER RECORD
	// =========================================================================

	for _, rec := range set.Records {
		if err := ctx.Err(); err != nil {
			return fail(fmt.Errorf("cancelled at row %d: %w", rec.Row, err))
		}

		row := c.processRecord(rec, transformer, &result)
		result.Rows = append(result.Rows, row)

		switch row.Status {
		case types.StatusOK:
			result.Stats.Encoded++
		case types.StatusInvalid:
			result.Stats.Invalid++
		default:
			result.Stats.Failed++
		}

		if row.Status != types.StatusOK && !c.cfg.ContinueOnError {
			return fail(fmt.Errorf("row %d: %s", rec.Row, row.Error))
		}
	}

	c.logger.Debug("encoded records", logging.Fields{
		"file":    name,
		"encoded": result.Stats.Encoded,
		"invalid": result.Stats.Invalid,
		"failed":  result.Stats.Failed,
	})

	if c.dryRun {
		result.Success = true
		result.Stats.ProcessingTime = time.Since(start)
		c.logger.Info("dry run, nothing written", logging.Fields{"file": name})
		return result
	}

	// =========================================================================
	// STEP 7: WRITE RESULT FILE
	// =========================================================================

	outputPath, err := c.writeOutput(set.Headers, result.Rows)
	if err != nil {
		return fail(fmt.Errorf("failed to write output: %w", err))
	}
	result.OutputFile = outputPath
	c.logger.Info("wrote results", logging.Fields{"file": name, "output": outputPath})

	// =========================================================================
	// STEP 8: ARCHIVE
	// =========================================================================
	// Archival problems are logged but do not fail the file.

	if c.files.ArchiveOnSuccess {
		archived, err := c.files.ArchiveInputFile(c.inputPath)
		if err != nil {
			c.logger.Warn("failed to archive input", logging.Fields{"file": name, "error": err.Error()})
		} else {
			result.ArchivedInput = archived
		}
		if _, err := c.files.ArchiveOutputFile(outputPath); err != nil {
			c.logger.Warn("failed to archive output", logging.Fields{"file": name, "error": err.Error()})
		}
	}

	result.Success = true
	result.Stats.ProcessingTime = time.Since(start)
	return result
}

// processRecord runs steps 2 to 6 for one record.
func (c *Converter) processRecord(rec types.MerchantRecord, transformer *Transformer, result *Result) types.PayloadRow {
	name := filepath.Base(c.inputPath)
	row := types.PayloadRow{Record: rec}

	fields := make(map[string]string, len(rec.Fields)+len(c.cfg.StaticFields))
	for k, v := range rec.Fields {
		fields[k] = v
	}
	for k, v := range c.cfg.StaticFields {
		if _, ok := fields[k]; !ok && v != "" {
			fields[k] = v
		}
	}

	if err := transformer.TransformRecord(fields); err != nil {
		return c.rowError(row, result, "transformation", err.Error())
	}

	problems := c.validator.ValidateRecord(types.MerchantRecord{Row: rec.Row, Fields: fields})
	var fatal []string
	for _, p := range problems {
		if !p.IsFatal() {
			result.Stats.Warnings++
			c.logger.Warn("validation warning", logging.Fields{"file": name, "row": rec.Row, "field": p.Field, "message": p.Message})
			continue
		}
		fatal = append(fatal, fmt.Sprintf("%s: %s", p.Field, p.Message))
		result.Errors = append(result.Errors, utils.ErrorLogEntry{
			Timestamp:    c.now(),
			FileName:     name,
			ErrorType:    "validation/" + p.Rule,
			ErrorMessage: p.Message,
			RowNumber:    rec.Row,
			FieldName:    p.Field,
			FieldValue:   p.Value,
		})
	}
	if len(fatal) > 0 {
		row.Status = types.StatusInvalid
		row.Error = strings.Join(fatal, "; ")
		return row
	}

	payload, err := c.codec.Encode(fields)
	if err != nil {
		return c.rowError(row, result, "encode", err.Error())
	}

	if c.cfg.VerifyOutput {
		if err := c.verify(payload); err != nil {
			return c.rowError(row, result, "verify", err.Error())
		}
	}

	row.Payload = payload
	row.CRC = payload[len(payload)-4:]
	row.Status = types.StatusOK
	return row
}

func (c *Converter) rowError(row types.PayloadRow, result *Result, kind, msg string) types.PayloadRow {
	row.Status = types.StatusError
	row.Error = msg
	result.Errors = append(result.Errors, utils.ErrorLogEntry{
		Timestamp:    c.now(),
		FileName:     filepath.Base(c.inputPath),
		ErrorType:    kind,
		ErrorMessage: msg,
		RowNumber:    row.Record.Row,
	})
	return row
}

// verify decodes payload and checks that encoding the decoded fields gives
// the same payload back.
func (c *Converter) verify(payload string) error {
	decoded, err := c.codec.DecodeRaw(payload)
	if err != nil {
		return fmt.Errorf("generated payload does not decode: %w", err)
	}
	again, err := c.codec.Encode(decoded.Map())
	if err != nil {
		return fmt.Errorf("decoded payload does not encode: %w", err)
	}
	if again != payload {
		return fmt.Errorf("generated payload does not round trip")
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// readRecords parses the input by extension.
func (c *Converter) readRecords() (*types.RecordSet, error) {
	switch ext := strings.ToLower(filepath.Ext(c.inputPath)); ext {
	case ".csv":
		return csvparser.Parse(c.inputPath, c.cfg.CSV, c.cfg.HeaderRow)
	case ".xlsx":
		return xlsxparser.Parse(c.inputPath, c.cfg.SheetName, c.cfg.HeaderRow)
	default:
		return nil, fmt.Errorf("unsupported input file type %q", ext)
	}
}

// writeOutput writes the result file to the output directory.
func (c *Converter) writeOutput(headers []string, rows []types.PayloadRow) (string, error) {
	fileName := c.files.GenerateOutputFileName(c.cfg.OutputNameFormat, c.inputPath, "."+c.cfg.OutputType, nil)
	outputPath := filepath.Join(c.files.OutputDir, fileName)

	opts := writer.ResultOptions{
		OutputType: c.cfg.OutputType,
		SheetName:  c.cfg.SheetName,
		CSV:        c.cfg.CSV,
	}
	if err := writer.WriteResults(outputPath, opts, headers, rows); err != nil {
		return "", err
	}
	return outputPath, nil
}
