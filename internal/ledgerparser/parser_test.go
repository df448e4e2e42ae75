package ledgerparser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const header = "transaction_id|date|customer_id|product_name|region|quantity|unit_price|amount"

func TestRead_MissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.txt"), "auto")
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist), "expected a not-exist error, got %v", err)
}

func TestRead_UTF8WithBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.txt")
	body := append([]byte{0xEF, 0xBB, 0xBF}, []byte(header+"\nT1|2024-01-01|C1|Café|North|1|2.00|2.00\n")...)
	require.NoError(t, os.WriteFile(path, body, 0o644))

	ledger, err := Read(path, "auto")
	require.NoError(t, err)

	assert.Equal(t, "utf-8", ledger.Encoding)
	assert.Equal(t, "text", ledger.Format)
	assert.Contains(t, ledger.Content, "Café")
	assert.Equal(t, header, ledger.Content[:len(header)], "BOM must be stripped")
}

func TestDecode_FallsBackToWindows1252(t *testing.T) {
	// 0xE9 is "é" in Windows-1252 and invalid as a lone UTF-8 byte.
	raw := []byte("T1|2024-01-01|C1|Caf\xe9|North|1|2.00|2.00")

	content, used, err := Decode(raw, "auto")
	require.NoError(t, err)
	assert.Equal(t, "windows-1252", used)
	assert.Contains(t, content, "Café")
}

func TestDecode_ExplicitEncodings(t *testing.T) {
	content, used, err := Decode([]byte("Caf\xe9"), "latin-1")
	require.NoError(t, err)
	assert.Equal(t, "iso-8859-1", used)
	assert.Equal(t, "Café", content)

	_, _, err = Decode([]byte("Caf\xe9"), "utf-8")
	assert.Error(t, err)

	_, _, err = Decode([]byte("x"), "ebcdic")
	assert.ErrorIs(t, err, ErrUnsupportedEncoding)
}

func TestSplitRow(t *testing.T) {
	assert.Equal(t, []string{"T1", "2024-01-01", "", "Widget"}, SplitRow(" T1 | 2024-01-01 ||Widget "))
}

func TestRead_Workbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{
		"transaction_id", "date", "customer_id", "product_name", "region", "quantity", "unit_price", "amount",
	}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{
		"T1", "2024-01-01", "C1", "Widget", "North", "2", "10.00", "20.00",
	}))
	// Row 3 left empty on purpose; row 4 has no amount cell.
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]interface{}{
		"T2", "2024-01-02", "C2", "Gadget", "South", "1", "5.00",
	}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	ledger, err := Read(path, "auto")
	require.NoError(t, err)

	assert.Equal(t, "xlsx", ledger.Format)
	assert.Equal(t, header+"\n"+
		"T1|2024-01-01|C1|Widget|North|2|10.00|20.00\n"+
		"T2|2024-01-02|C2|Gadget|South|1|5.00|\n", ledger.Content)
}
