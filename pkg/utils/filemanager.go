// =============================================================================
// Sales Analytics - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the pipeline, including:
//   - Directory bootstrap
//   - Report archival (copying the previous report aside)
//   - Rejection log generation
//   - Run summary generation
//   - File naming utilities
//
// ARCHIVAL STRATEGY:
//   - The previous report is copied to the archive directory before it is
//     overwritten, under a timestamped name
//   - Nothing is archived when the archive directory is not configured
//   - Logs are created in the output directory
//
// =============================================================================

package utils

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/sales-analytics/internal/validation"
	"github.com/google/uuid"
)

const (
	timestampLayout = "20060102_150405"
	displayLayout   = "2006-01-02 15:04:05"
	ruleLine        = "================================================================================"
	sectionLine     = "--------------------------------------------------------------------------------"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for a pipeline run.
type FileManager struct {
	// DataDir holds the input ledger and the enriched side-file.
	DataDir string

	// OutputDir holds the report and the run logs.
	OutputDir string

	// ArchiveDir receives copies of previous reports. Empty disables archiving.
	ArchiveDir string

	// Now is the clock used for timestamps. Defaults to time.Now.
	Now func() time.Time
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(dataDir, outputDir, archiveDir string) *FileManager {
	return &FileManager{
		DataDir:    dataDir,
		OutputDir:  outputDir,
		ArchiveDir: archiveDir,
		Now:        time.Now,
	}
}

func (fm *FileManager) now() time.Time {
	if fm.Now == nil {
		return time.Now()
	}
	return fm.Now()
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates all configured directories if they don't exist.
// Empty entries are skipped.
//
// RETURNS:
//   - An error if any directory cannot be created.
func (fm *FileManager) EnsureDirectories() error {
	dirs := []string{
		fm.DataDir,
		fm.OutputDir,
		fm.ArchiveDir,
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveOutputFile copies an existing output file to the archive directory.
//
// PARAMETERS:
//   - filePath: The path to the file to archive.
//
// RETURNS:
//   - The path to the archived copy, or "" when nothing was archived
//     (archiving disabled or the file does not exist yet).
//   - An error if the copy fails.
//
// NOTE: The file is copied, not moved, so it stays in place until the caller
// overwrites it.
func (fm *FileManager) ArchiveOutputFile(filePath string) (string, error) {
	if fm.ArchiveDir == "" || !FileExists(filePath) {
		return "", nil
	}

	archivePath := fm.getArchivePath(filePath)

	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if err := copyFile(filePath, archivePath); err != nil {
		return "", fmt.Errorf("failed to copy file to archive: %w", err)
	}

	return archivePath, nil
}

// getArchivePath inserts a timestamp before the extension:
// sales_report.txt -> <archive>/sales_report_20240115_143022.txt
func (fm *FileManager) getArchivePath(filePath string) string {
	base := filepath.Base(filePath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(fm.ArchiveDir, fmt.Sprintf("%s_%s%s", stem, fm.now().Format(timestampLayout), ext))
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName generates a unique file name of the form
// <prefix>_<timestamp>_<short uuid><ext>.
//
// EXAMPLE:
//
//	GenerateOutputFileName("error_log", ".txt", now)
//	-> "error_log_20240115_143022_a1b2c3d4.txt"
func GenerateOutputFileName(prefix, ext string, now time.Time) string {
	id := strings.SplitN(uuid.New().String(), "-", 2)[0]
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return fmt.Sprintf("%s_%s_%s%s", prefix, now.Format(timestampLayout), id, ext)
}

// =============================================================================
// REJECTION LOG GENERATION
// =============================================================================

// WriteErrorLog writes rejected records to a log file in the output directory.
//
// PARAMETERS:
//   - rejections: The validation rejections to write.
//   - source: The input file the records came from.
//
// RETURNS:
//   - The path to the error log file, or "" when there was nothing to write.
//   - An error if writing fails.
func (fm *FileManager) WriteErrorLog(rejections []*validation.ValidationError, source string) (string, error) {
	if len(rejections) == 0 {
		return "", nil
	}

	now := fm.now()
	logPath := filepath.Join(fm.OutputDir, GenerateOutputFileName("error_log", ".txt", now))

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "Sales Analytics - Rejected Records\n"+
		"Generated: %s\n"+
		"Source: %s\n"+
		"Total Rejected: %d\n"+
		"%s\n\n",
		now.Format(displayLayout),
		source,
		len(rejections),
		ruleLine)

	for i, r := range rejections {
		fmt.Fprintf(writer, "Rejection #%d\n"+
			"  Rule:           %s\n"+
			"  Message:        %s\n",
			i+1,
			r.Rule,
			r.Message)

		if r.Row > 0 {
			fmt.Fprintf(writer, "  Row Number:     %d\n", r.Row)
		}
		if r.Field != "" {
			fmt.Fprintf(writer, "  Field:          %s\n", r.Field)
		}
		if r.Value != "" {
			fmt.Fprintf(writer, "  Value:          %s\n", r.Value)
		}
		if r.TransactionID != "" {
			fmt.Fprintf(writer, "  Transaction ID: %s\n", r.TransactionID)
		}

		writer.WriteString("\n")
	}

	writer.WriteString(ruleLine + "\nEnd of Error Log\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush error log: %w", err)
	}

	return logPath, nil
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary contains summary information about a processing run.
type ProcessingSummary struct {
	RunID          string
	StartTime      time.Time
	EndTime        time.Time
	InputFile      string
	Encoding       string
	RawLines       int
	ParsedRecords  int
	Validation     validation.Summary
	CatalogSource  string
	CatalogStatus  string
	Matched        int
	ReportFile     string
	EnrichedFile   string
	WorkbookFile   string
	ArchivedReport string
	ErrorLogFile   string
	DryRun         bool
}

// WriteSummaryLog writes a processing summary to a log file in the output
// directory.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func (fm *FileManager) WriteSummaryLog(summary ProcessingSummary) (string, error) {
	summaryPath := filepath.Join(fm.OutputDir, GenerateOutputFileName("processing_summary", ".txt", summary.EndTime))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	v := summary.Validation
	fmt.Fprintf(writer, "Sales Analytics - Processing Summary\n"+
		"%s\n\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n"+
		"  Dry Run:        %t\n\n"+
		"Input:\n"+
		"  File:           %s\n"+
		"  Encoding:       %s\n"+
		"  Raw Lines:      %d\n"+
		"  Parsed Records: %d\n\n"+
		"Validation:\n"+
		"  Total Input:        %d\n"+
		"  Invalid:            %d\n"+
		"  Filtered by Region: %d\n"+
		"  Filtered by Amount: %d\n"+
		"  Final Count:        %d\n\n"+
		"Enrichment:\n"+
		"  Catalog Source: %s\n"+
		"  Catalog Status: %s\n"+
		"  Matched:        %d of %d\n\n",
		ruleLine,
		summary.RunID,
		summary.StartTime.Format(displayLayout),
		summary.EndTime.Format(displayLayout),
		summary.EndTime.Sub(summary.StartTime).String(),
		summary.DryRun,
		summary.InputFile,
		summary.Encoding,
		summary.RawLines,
		summary.ParsedRecords,
		v.TotalInput,
		v.Invalid,
		v.FilteredByRegion,
		v.FilteredByAmount,
		v.FinalCount,
		summary.CatalogSource,
		summary.CatalogStatus,
		summary.Matched,
		v.FinalCount)

	outputs := []struct{ label, path string }{
		{"Report", summary.ReportFile},
		{"Enriched Data", summary.EnrichedFile},
		{"Workbook", summary.WorkbookFile},
		{"Archived Report", summary.ArchivedReport},
		{"Error Log", summary.ErrorLogFile},
	}
	writer.WriteString("Outputs:\n" + sectionLine + "\n")
	for _, o := range outputs {
		if o.path != "" {
			fmt.Fprintf(writer, "  %-16s %s\n", o.label+":", o.path)
		}
	}

	writer.WriteString("\n" + ruleLine + "\nEnd of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	_, err = io.Copy(destFile, sourceFile)
	if err != nil {
		return err
	}

	return destFile.Sync()
}

// FileExists checks if a regular file or directory exists at path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}
