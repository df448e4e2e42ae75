// =============================================================================
// Sales Analytics - Ledger Reader Module
// =============================================================================
//
// This module is responsible for turning a ledger file on disk into the raw
// text the validator consumes. It handles:
//   - Pipe-delimited text files in UTF-8 (with or without a BOM)
//   - Legacy exports in Windows-1252 / ISO-8859-1
//   - XLSX workbooks whose first sheet holds the ledger columns
//
// The output is always plain text with one ledger row per line, so the
// validator never needs to know where the data came from.
//
// =============================================================================

package ledgerparser

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Delimiter separates ledger columns.
const Delimiter = "|"

// ErrUnsupportedEncoding is returned for an encoding name we cannot decode.
var ErrUnsupportedEncoding = errors.New("unsupported encoding")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// =============================================================================
// LEDGER STRUCTURE
// =============================================================================

// Ledger is the decoded content of one ledger file.
type Ledger struct {
	// Content is the decoded text, one row per line, header first.
	Content string

	// SourceFile is the path the content was read from.
	SourceFile string

	// Encoding is the encoding that was actually used to decode the file.
	Encoding string

	// Format is "text" or "xlsx".
	Format string
}

// =============================================================================
// READER FUNCTIONS
// =============================================================================

// Read loads a ledger file and returns its decoded content.
//
// PARAMETERS:
//   - filePath: The path to the ledger (.txt/.psv/.csv or .xlsx).
//   - encodingName: "auto", "utf-8", "windows-1252" or "latin-1". Ignored for .xlsx.
//
// RETURNS:
//   - A pointer to the Ledger.
//   - An error if the file is missing, unreadable, or cannot be decoded.
//     This is the only fatal input condition of a run.
func Read(filePath, encodingName string) (*Ledger, error) {
	if strings.EqualFold(filepath.Ext(filePath), ".xlsx") {
		return readWorkbook(filePath)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}

	content, used, err := Decode(data, encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ledger %s: %w", filePath, err)
	}

	return &Ledger{
		Content:    content,
		SourceFile: filePath,
		Encoding:   used,
		Format:     "text",
	}, nil
}

// Decode converts raw ledger bytes to text.
//
// With "auto", valid UTF-8 is used as is and anything else is decoded as
// Windows-1252, which is a superset of the printable ISO-8859-1 range.
//
// RETURNS:
//   - The decoded text.
//   - The name of the encoding used.
//   - ErrUnsupportedEncoding (wrapped) for an unknown encoding name.
func Decode(data []byte, encodingName string) (string, string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	name := strings.ToLower(strings.TrimSpace(encodingName))
	switch name {
	case "", "auto":
		if utf8.Valid(data) {
			return string(data), "utf-8", nil
		}
		return decodeWith(charmap.Windows1252, data, "windows-1252")
	case "utf-8", "utf8":
		if !utf8.Valid(data) {
			return "", "", fmt.Errorf("input is not valid utf-8")
		}
		return string(data), "utf-8", nil
	case "windows-1252", "cp1252":
		return decodeWith(charmap.Windows1252, data, "windows-1252")
	case "latin-1", "latin1", "iso-8859-1":
		return decodeWith(charmap.ISO8859_1, data, "iso-8859-1")
	default:
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedEncoding, encodingName)
	}
}

func decodeWith(enc encoding.Encoding, data []byte, name string) (string, string, error) {
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", "", fmt.Errorf("decode %s: %w", name, err)
	}
	return string(out), name, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// SplitRow splits one ledger line into trimmed cells.
func SplitRow(line string) []string {
	cells := strings.Split(line, Delimiter)
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
