package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/ginjaninja78/sales-analytics/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time {
	return time.Date(2024, 1, 15, 14, 30, 22, 0, time.UTC)
}

func newTestManager(t *testing.T) *FileManager {
	t.Helper()
	root := t.TempDir()
	fm := NewFileManager(filepath.Join(root, "data"), filepath.Join(root, "output"), filepath.Join(root, "archive"))
	fm.Now = fixedNow
	require.NoError(t, fm.EnsureDirectories())
	return fm
}

func TestEnsureDirectories(t *testing.T) {
	fm := newTestManager(t)

	for _, dir := range []string{fm.DataDir, fm.OutputDir, fm.ArchiveDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestEnsureDirectories_SkipsEmpty(t *testing.T) {
	root := t.TempDir()
	fm := NewFileManager(filepath.Join(root, "data"), filepath.Join(root, "output"), "")
	assert.NoError(t, fm.EnsureDirectories())
}

func TestGenerateOutputFileName(t *testing.T) {
	name := GenerateOutputFileName("error_log", "txt", fixedNow())
	assert.Regexp(t, regexp.MustCompile(`^error_log_20240115_143022_[0-9a-f]{8}\.txt$`), name)

	other := GenerateOutputFileName("error_log", ".txt", fixedNow())
	assert.NotEqual(t, name, other)
}

func TestArchiveOutputFile(t *testing.T) {
	fm := newTestManager(t)
	report := filepath.Join(fm.OutputDir, "sales_report.txt")

	// Nothing to archive yet.
	archived, err := fm.ArchiveOutputFile(report)
	require.NoError(t, err)
	assert.Empty(t, archived)

	require.NoError(t, os.WriteFile(report, []byte("previous run"), 0644))

	archived, err = fm.ArchiveOutputFile(report)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(fm.ArchiveDir, "sales_report_20240115_143022.txt"), archived)

	data, err := os.ReadFile(archived)
	require.NoError(t, err)
	assert.Equal(t, "previous run", string(data))
	assert.True(t, FileExists(report))
}

func TestArchiveOutputFile_Disabled(t *testing.T) {
	fm := newTestManager(t)
	fm.ArchiveDir = ""
	report := filepath.Join(fm.OutputDir, "sales_report.txt")
	require.NoError(t, os.WriteFile(report, []byte("x"), 0644))

	archived, err := fm.ArchiveOutputFile(report)
	require.NoError(t, err)
	assert.Empty(t, archived)
}

func TestWriteErrorLog(t *testing.T) {
	fm := newTestManager(t)

	path, err := fm.WriteErrorLog(nil, "data/sales_data.txt")
	require.NoError(t, err)
	assert.Empty(t, path)

	rejections := []*validation.ValidationError{
		{Rule: validation.RuleNonPositive, Field: "Quantity", Value: "0", Message: "Quantity must be greater than zero", TransactionID: "T1", Row: 3},
		{Rule: validation.RuleBlankField, Field: "Region", Message: "Region is blank", Row: 7},
	}

	path, err = fm.WriteErrorLog(rejections, "data/sales_data.txt")
	require.NoError(t, err)
	assert.Equal(t, fm.OutputDir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "error_log_20240115_143022_"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "Source: data/sales_data.txt\n")
	assert.Contains(t, content, "Total Rejected: 2\n")
	assert.Contains(t, content, "Rejection #1\n")
	assert.Contains(t, content, "  Transaction ID: T1\n")
	assert.Contains(t, content, "  Row Number:     7\n")
	assert.Equal(t, 1, strings.Count(content, "Transaction ID:"))
	assert.True(t, strings.HasSuffix(content, "End of Error Log\n"))
}

func TestWriteSummaryLog(t *testing.T) {
	fm := newTestManager(t)
	start := fixedNow()

	path, err := fm.WriteSummaryLog(ProcessingSummary{
		RunID:         "run-1",
		StartTime:     start,
		EndTime:       start.Add(1500 * time.Millisecond),
		InputFile:     "data/sales_data.txt",
		Encoding:      "utf-8",
		RawLines:      10,
		ParsedRecords: 9,
		Validation:    validation.Summary{TotalInput: 9, Invalid: 2, FilteredByRegion: 1, FinalCount: 6},
		CatalogSource: "none",
		CatalogStatus: "unavailable: catalog source disabled",
		ReportFile:    "output/sales_report.txt",
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "  Run ID:         run-1\n")
	assert.Contains(t, content, "  Duration:       1.5s\n")
	assert.Contains(t, content, "  Invalid:            2\n")
	assert.Contains(t, content, "  Matched:        0 of 6\n")
	assert.Contains(t, content, "  Report:          output/sales_report.txt\n")
	assert.NotContains(t, content, "Workbook:")
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	assert.True(t, FileExists(dir))
	assert.False(t, FileExists(filepath.Join(dir, "missing")))
}
