// =============================================================================
// EMV QR Payload Toolkit - Process Command
// =============================================================================
//
// The 'process' command generates payloads for whole merchant lists.
//
// COMMAND USAGE:
//   emvqr process [flags]
//
// FLAGS:
//   --dry-run : Encode and validate every row without writing or archiving
//   --file    : Process this file instead of scanning the input directory
//
// PROCESSING PIPELINE:
//   1. Create the working directories
//   2. Discover .csv and .xlsx files in the input directory
//   3. For each file (concurrently, up to max_concurrency):
//      a. Read, transform and validate the merchant records
//      b. Encode and verify one payload per record
//      c. Write the result file and archive the input
//   4. Write the error log and the processing summary
//
// Ctrl-C stops the run between records; files already written are kept.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mono57/emvqr/internal/converter"
	"github.com/mono57/emvqr/internal/logging"
	"github.com/mono57/emvqr/pkg/utils"
)

var (
	// dryRun encodes without writing output files.
	dryRun bool

	// filePath processes a single file.
	filePath string
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Generate payloads for merchant record files",
	Long: `The process command scans the input directory for .csv and .xlsx merchant
record files and writes one result file per input, listing the payload
generated for every row.

The header row names the fields, by raw tag id ("59") or friendly name
("merchant_name"). static_fields from the configuration fill in values that
every merchant shares, such as country_code.

On success:
  - The result file is placed in the output directory
  - The input file is moved to the input archive
  - A copy of the result goes to the output archive

Rows that fail validation or encoding are marked in the result file and
listed in the error log; the other rows are still encoded.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runProcess(ctx, cmd)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Encode and validate without writing output files")
	processCmd.Flags().StringVar(&filePath, "file", "", "Process only this file")
}

// runProcess is the main function of the batch pipeline.
func runProcess(ctx context.Context, cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	summary := utils.ProcessingSummary{RunID: uuid.New().String(), StartTime: time.Now()}
	files := converter.NewFileManager(cfg)

	// =========================================================================
	// STEP 1: DIRECTORIES
	// =========================================================================

	if err := files.EnsureDirectories(); err != nil {
		return err
	}

	// =========================================================================
	// STEP 2: DISCOVER INPUT FILES
	// =========================================================================

	var inputs []string
	if filePath != "" {
		if !utils.IsInputFile(filePath) {
			return fmt.Errorf("%s is not a .csv or .xlsx file", filePath)
		}
		inputs = []string{filePath}
	} else {
		found, err := files.DiscoverInputFiles()
		if err != nil {
			return fmt.Errorf("failed to discover input files: %w", err)
		}
		inputs = found
	}

	if len(inputs) == 0 {
		fmt.Fprintf(out, "No merchant record files found in %s\n", cfg.InputDir)
		return nil
	}

	logger.Info("starting run", logging.Fields{"run": summary.RunID, "files": len(inputs), "dry_run": dryRun})
	fmt.Fprintf(out, "Found %d file(s) to process\n", len(inputs))

	// =========================================================================
	// STEP 3: PROCESS FILES CONCURRENTLY
	// =========================================================================

	results := converter.RunAll(ctx, inputs, cfg,
		converter.WithLogger(logger),
		converter.WithFileManager(files),
		converter.WithDryRun(dryRun),
	)

	// =========================================================================
	// STEP 4: REPORT
	// =========================================================================

	var errorEntries []utils.ErrorLogEntry
	summary.TotalFiles = len(results)

	for _, r := range results {
		name := filepath.Base(r.FilePath)
		summary.TotalRecords += r.Stats.RecordsRead
		summary.EncodedRecords += r.Stats.Encoded
		summary.FailedRecords += r.Stats.Invalid + r.Stats.Failed
		errorEntries = append(errorEntries, r.Errors...)

		if r.Success {
			summary.SuccessfulFiles++
			summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
				InputFile:   r.FilePath,
				OutputFile:  r.OutputFile,
				Records:     r.Stats.RecordsRead,
				Encoded:     r.Stats.Encoded,
				ProcessTime: r.Stats.ProcessingTime,
			})
			fmt.Fprintf(out, "  ok   %s: %d/%d encoded", name, r.Stats.Encoded, r.Stats.RecordsRead)
			if r.OutputFile != "" {
				fmt.Fprintf(out, " -> %s", r.OutputFile)
			}
			fmt.Fprintln(out)
			continue
		}

		summary.FailedFiles++
		msg := "unknown error"
		if r.Error != nil {
			msg = r.Error.Error()
		}
		summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{InputFile: r.FilePath, ErrorMessage: msg})
		fmt.Fprintf(out, "  FAIL %s: %s\n", name, msg)
	}
	summary.EndTime = time.Now()

	fmt.Fprintf(out, "\nFiles: %d ok, %d failed. Records: %d encoded, %d failed. Time: %s\n",
		summary.SuccessfulFiles, summary.FailedFiles, summary.EncodedRecords, summary.FailedRecords,
		summary.EndTime.Sub(summary.StartTime).Round(time.Millisecond))

	if dryRun {
		return ctx.Err()
	}

	if path, err := files.WriteErrorLog(errorEntries, summary.RunID); err != nil {
		logger.Error("failed to write error log", logging.Fields{"error": err.Error()})
	} else if path != "" {
		fmt.Fprintf(out, "Errors have been logged to %s\n", path)
	}
	if path, err := files.WriteSummaryLog(summary); err != nil {
		logger.Error("failed to write summary", logging.Fields{"error": err.Error()})
	} else {
		logger.Info("run complete", logging.Fields{"run": summary.RunID, "summary": path})
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("run interrupted: %w", err)
	}
	if summary.FailedFiles > 0 && !cfg.ContinueOnError {
		return fmt.Errorf("%d file(s) failed", summary.FailedFiles)
	}
	return nil
}
