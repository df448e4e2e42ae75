package ledgerparser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// readWorkbook reads the first sheet of an XLSX ledger and flattens it to
// pipe-delimited text so it goes through exactly the same validation as a
// text ledger. Fully empty rows are dropped; a row keeps its trailing empty
// cells up to the header width so column counts stay comparable.
func readWorkbook(filePath string) (*Ledger, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("workbook %s has no sheets", filePath)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	var b strings.Builder
	width := 0
	for _, row := range rows {
		if len(row) == 0 || isRowEmpty(row) {
			continue
		}
		if width == 0 {
			width = len(row)
		}
		// GetRows trims trailing empty cells; pad back to the header width.
		for len(row) < width {
			row = append(row, "")
		}
		b.WriteString(strings.Join(row, Delimiter))
		b.WriteByte('\n')
	}

	return &Ledger{
		Content:    b.String(),
		SourceFile: filePath,
		Encoding:   "utf-8",
		Format:     "xlsx",
	}, nil
}
