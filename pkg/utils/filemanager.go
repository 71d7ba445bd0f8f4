// =============================================================================
// EMV QR Payload Toolkit - File Manager Utility
// =============================================================================
//
// File handling for the batch "process" command:
//   - Directory creation
//   - Input discovery (.csv and .xlsx merchant record files)
//   - Archival of processed inputs and generated outputs
//   - Output file naming
//   - Error and summary logs
//
// ARCHIVAL STRATEGY:
//   - Input files are moved to the input archive after successful processing
//   - Output files are copied to the output archive
//   - Failed files stay where they are
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// InputExtensions are the file extensions picked up by discovery.
var InputExtensions = []string{".csv", ".xlsx"}

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the batch command.
type FileManager struct {
	InputDir         string
	OutputDir        string
	InputArchiveDir  string
	OutputArchiveDir string

	// ArchiveOnSuccess enables ArchiveInputFile and ArchiveOutputFile.
	ArchiveOnSuccess bool

	// now is replaced in tests.
	now func() time.Time
}

// NewFileManager creates a FileManager with archival enabled.
func NewFileManager(inputDir, outputDir, inputArchiveDir, outputArchiveDir string) *FileManager {
	return &FileManager{
		InputDir:         inputDir,
		OutputDir:        outputDir,
		InputArchiveDir:  inputArchiveDir,
		OutputArchiveDir: outputArchiveDir,
		ArchiveOnSuccess: true,
		now:              time.Now,
	}
}

func (fm *FileManager) clock() time.Time {
	if fm.now == nil {
		return time.Now()
	}
	return fm.now()
}

// EnsureDirectories creates all directories that do not exist yet.
func (fm *FileManager) EnsureDirectories() error {
	for _, dir := range []string{fm.InputDir, fm.OutputDir, fm.InputArchiveDir, fm.OutputArchiveDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles lists the merchant record files directly inside the
// input directory, sorted by name. Hidden files and spreadsheet lock files
// ("~$...") are skipped.
func (fm *FileManager) DiscoverInputFiles() ([]string, error) {
	entries, err := os.ReadDir(fm.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
			continue
		}
		if IsInputFile(name) {
			files = append(files, filepath.Join(fm.InputDir, name))
		}
	}
	sort.Strings(files)
	return files, nil
}

// IsInputFile reports whether name has one of InputExtensions.
func IsInputFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range InputExtensions {
		if ext == want {
			return true
		}
	}
	return false
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves an input file to the input archive directory.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	if !fm.ArchiveOnSuccess {
		return filePath, nil
	}

	archivePath := fm.archivePath(fm.InputArchiveDir, filePath)
	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if err := os.Rename(filePath, archivePath); err != nil {
		// Rename fails across devices; fall back to copy and delete.
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

// ArchiveOutputFile copies an output file to the output archive directory.
func (fm *FileManager) ArchiveOutputFile(filePath string) (string, error) {
	if !fm.ArchiveOnSuccess {
		return filePath, nil
	}

	archivePath := fm.archivePath(fm.OutputArchiveDir, filePath)
	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}
	if err := copyFile(filePath, archivePath); err != nil {
		return "", fmt.Errorf("failed to copy file to archive: %w", err)
	}
	return archivePath, nil
}

// archivePath returns the destination in archiveDir. An existing file of the
// same name gets a timestamp suffix instead of being overwritten.
func (fm *FileManager) archivePath(archiveDir, filePath string) string {
	name := filepath.Base(filePath)
	dst := filepath.Join(archiveDir, name)
	if _, err := os.Stat(dst); os.IsNotExist(err) {
		return dst
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	return filepath.Join(archiveDir, fmt.Sprintf("%s_%s%s", stem, fm.clock().Format("20060102_150405.000000000"), ext))
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName expands format into a file name.
//
// Placeholders:
//
//	{uuid}      - a random UUID
//	{timestamp} - YYYYMMDD_HHMMSS
//	{date}      - YYYYMMDD
//	{input}     - input file name without extension
//
// Extra placeholders come from params. ext (".xlsx", ".csv") is appended
// unless the result already ends with it.
func (fm *FileManager) GenerateOutputFileName(format, inputPath, ext string, params map[string]string) string {
	now := fm.clock()
	input := filepath.Base(inputPath)
	input = strings.TrimSuffix(input, filepath.Ext(input))

	replacements := []string{
		"{uuid}", uuid.New().String(),
		"{timestamp}", now.Format("20060102_150405"),
		"{date}", now.Format("20060102"),
		"{input}", input,
	}
	for key, value := range params {
		replacements = append(replacements, "{"+key+"}", value)
	}

	result := strings.NewReplacer(replacements...).Replace(format)
	if ext != "" && !strings.HasSuffix(strings.ToLower(result), strings.ToLower(ext)) {
		result += ext
	}
	return result
}

// =============================================================================
// ERROR LOG GENERATION
// =============================================================================

// ErrorLogEntry is one line item of an error log.
type ErrorLogEntry struct {
	Timestamp    time.Time
	FileName     string
	ErrorType    string
	ErrorMessage string
	RowNumber    int
	FieldName    string
	FieldValue   string
}

// WriteErrorLog writes entries to error_log_<timestamp>_<run>.txt in
// outputDir. Nothing is written for an empty slice.
func (fm *FileManager) WriteErrorLog(entries []ErrorLogEntry, runID string) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	now := fm.clock()
	logPath := filepath.Join(fm.OutputDir, fmt.Sprintf("error_log_%s_%s.txt", now.Format("20060102_150405"), shortID(runID)))

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	fmt.Fprintf(w, "EMV QR Payload Toolkit - Error Log\n"+
		"Run:          %s\n"+
		"Generated:    %s\n"+
		"Total Errors: %d\n"+
		"%s\n\n", runID, now.Format("2006-01-02 15:04:05"), len(entries), rule)

	for i, entry := range entries {
		fmt.Fprintf(w, "Error #%d\n", i+1)
		fmt.Fprintf(w, "  Timestamp:  %s\n", entry.Timestamp.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(w, "  File:       %s\n", entry.FileName)
		fmt.Fprintf(w, "  Error Type: %s\n", entry.ErrorType)
		fmt.Fprintf(w, "  Message:    %s\n", entry.ErrorMessage)
		if entry.RowNumber > 0 {
			fmt.Fprintf(w, "  Row Number: %d\n", entry.RowNumber)
		}
		if entry.FieldName != "" {
			fmt.Fprintf(w, "  Field:      %s\n", entry.FieldName)
		}
		if entry.FieldValue != "" {
			fmt.Fprintf(w, "  Value:      %s\n", entry.FieldValue)
		}
		w.WriteString("\n")
	}
	w.WriteString(rule + "\nEnd of Error Log\n")

	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush error log: %w", err)
	}
	return logPath, nil
}

const rule = "================================================================================"

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary describes one batch run.
type ProcessingSummary struct {
	RunID           string
	StartTime       time.Time
	EndTime         time.Time
	TotalFiles      int
	SuccessfulFiles int
	FailedFiles     int
	TotalRecords    int
	EncodedRecords  int
	FailedRecords   int
	ProcessedFiles  []ProcessedFileInfo
	FailedFilesList []FailedFileInfo
}

// ProcessedFileInfo describes a successfully processed file.
type ProcessedFileInfo struct {
	InputFile   string
	OutputFile  string
	Records     int
	Encoded     int
	ProcessTime time.Duration
}

// FailedFileInfo describes a failed file.
type FailedFileInfo struct {
	InputFile    string
	ErrorMessage string
}

// WriteSummaryLog writes summary to processing_summary_<timestamp>_<run>.txt
// in outputDir.
func (fm *FileManager) WriteSummaryLog(summary ProcessingSummary) (string, error) {
	summaryPath := filepath.Join(fm.OutputDir, fmt.Sprintf("processing_summary_%s_%s.txt",
		summary.StartTime.Format("20060102_150405"), shortID(summary.RunID)))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	fmt.Fprintf(w, "EMV QR Payload Toolkit - Processing Summary\n%s\n\n"+
		"Run Information:\n"+
		"  Run:        %s\n"+
		"  Start Time: %s\n"+
		"  End Time:   %s\n"+
		"  Duration:   %s\n\n"+
		"Statistics:\n"+
		"  Total Files:     %d\n"+
		"  Successful:      %d\n"+
		"  Failed:          %d\n"+
		"  Total Records:   %d\n"+
		"  Encoded Records: %d\n"+
		"  Failed Records:  %d\n\n",
		rule,
		summary.RunID,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Sub(summary.StartTime),
		summary.TotalFiles,
		summary.SuccessfulFiles,
		summary.FailedFiles,
		summary.TotalRecords,
		summary.EncodedRecords,
		summary.FailedRecords)

	if len(summary.ProcessedFiles) > 0 {
		w.WriteString("Successful Files:\n")
		for _, pf := range summary.ProcessedFiles {
			fmt.Fprintf(w, "  Input:        %s\n", pf.InputFile)
			fmt.Fprintf(w, "  Output:       %s\n", pf.OutputFile)
			fmt.Fprintf(w, "  Records:      %d (%d encoded)\n", pf.Records, pf.Encoded)
			fmt.Fprintf(w, "  Process Time: %s\n\n", pf.ProcessTime)
		}
	}

	if len(summary.FailedFilesList) > 0 {
		w.WriteString("Failed Files:\n")
		for _, ff := range summary.FailedFilesList {
			fmt.Fprintf(w, "  File:  %s\n", ff.InputFile)
			fmt.Fprintf(w, "  Error: %s\n\n", ff.ErrorMessage)
		}
	}

	w.WriteString(rule + "\nEnd of Summary\n")
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}
	return summaryPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
