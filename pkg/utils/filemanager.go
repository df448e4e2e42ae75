// =============================================================================
// Sales Analytics - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the pipeline:
//   - Directory management
//   - Output file naming
//   - Rejection log generation
//
// Rejection logs are written next to the other outputs, one per run, and are
// skipped entirely when no row was rejected.
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates all required directories if they don't exist.
// Empty entries are ignored.
func EnsureDirectories(dirs ...string) error {
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
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName expands placeholders in a file name format.
//
// PARAMETERS:
//   - format: The format string for the file name.
//             Placeholders:
//               {uuid}      - A random UUID
//               {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//               {date}      - Current date (YYYYMMDD)
//               {time}      - Current time (HHMMSS)
//             Any key in params is also accepted, e.g. {run}.
//   - params: Extra placeholder values.
//
// RETURNS:
//   - The generated file name. The extension is whatever the format carries.
//
// EXAMPLE:
//   format: "sales_{date}_{run}.xlsx"
//   params: {"run": "1f0c..."}
//   output: "sales_20240115_1f0c....xlsx"
func GenerateOutputFileName(format string, params map[string]string) string {
	now := time.Now()

	replacements := map[string]string{
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	// Each {uuid} gets a fresh value.
	for strings.Contains(result, "{uuid}") {
		result = strings.Replace(result, "{uuid}", uuid.New().String(), 1)
	}

	return result
}

// =============================================================================
// REJECTION LOG GENERATION
// =============================================================================

// ErrorLogEntry represents one rejected ledger row.
type ErrorLogEntry struct {
	Line   int
	Kind   string
	Reason string
	Field  string
	Value  string
}

// WriteErrorLog writes rejection entries to a log file in outputDir.
//
// PARAMETERS:
//   - entries: The rejected rows, in ledger order.
//   - outputDir: The directory to write the log file.
//   - nameFormat: File name format, expanded with GenerateOutputFileName.
//   - sourceFile: The ledger the rows came from, printed in the log header.
//
// RETURNS:
//   - The path to the log file, or "" when there was nothing to write.
//   - An error if writing fails.
func WriteErrorLog(entries []ErrorLogEntry, outputDir, nameFormat, sourceFile string) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}
	if nameFormat == "" {
		nameFormat = "rejected_rows_{timestamp}.txt"
	}

	logPath := filepath.Join(outputDir, GenerateOutputFileName(nameFormat, nil))

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create rejection log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "Sales Analytics - Rejected Rows\n"+
		"Generated: %s\n"+
		"Source:    %s\n"+
		"Rejected:  %d\n"+
		"================================================================================\n\n",
		time.Now().Format("2006-01-02 15:04:05"),
		sourceFile,
		len(entries))

	for i, entry := range entries {
		fmt.Fprintf(writer, "Rejection #%d\n"+
			"  Line:    %d\n"+
			"  Kind:    %s\n"+
			"  Reason:  %s\n",
			i+1, entry.Line, entry.Kind, entry.Reason)
		if entry.Field != "" {
			fmt.Fprintf(writer, "  Field:   %s\n", entry.Field)
		}
		if entry.Value != "" {
			fmt.Fprintf(writer, "  Value:   %s\n", entry.Value)
		}
		writer.WriteString("\n")
	}

	writer.WriteString("================================================================================\n" +
		"End of Rejection Log\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush rejection log: %w", err)
	}

	return logPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// GetFileSize returns the size of a file in bytes.
func GetFileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
