// Package sheet converts between xlsx workbooks and header-keyed rows.
package sheet

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/unicode/norm"
)

// ErrNoSheet is returned for a workbook without any worksheet.
var ErrNoSheet = errors.New("workbook has no sheets")

// Row is one data row keyed by header text. Line is the 1-based line in the
// sheet, so the header row is line 1 and the first data row is line 2.
type Row struct {
	Line   int
	Values map[string]any
}

// Decode reads the first worksheet of an xlsx workbook. The first row is the
// header; fully blank rows are skipped and cells without a header are
// dropped. Header text is trimmed and NFKC-normalized so full-width
// variants match their ASCII aliases.
func Decode(data []byte) ([]Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheet
	}

	grid, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(grid) == 0 {
		return nil, nil
	}

	headers := make([]string, len(grid[0]))
	seen := map[string]bool{}
	for i, h := range grid[0] {
		h = CleanHeader(h)
		if h == "" || seen[h] {
			continue // first column wins on duplicate headers
		}
		seen[h] = true
		headers[i] = h
	}

	rows := make([]Row, 0, len(grid)-1)
	for i, cells := range grid[1:] {
		values := make(map[string]any, len(headers))
		blank := true
		for j, cell := range cells {
			if j >= len(headers) || headers[j] == "" {
				continue
			}
			if strings.TrimSpace(cell) != "" {
				blank = false
			}
			values[headers[j]] = cell
		}
		if blank {
			continue
		}
		rows = append(rows, Row{Line: i + 2, Values: values})
	}
	return rows, nil
}

// CleanHeader trims a header cell, removes a byte order mark and applies
// NFKC normalization.
func CleanHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.TrimSpace(norm.NFKC.String(h))
}

// Encode writes headers and rows into a single-sheet xlsx workbook. The
// header row is bold on a grey fill.
func Encode(sheetName string, headers []string, rows [][]any) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if sheetName == "" {
		sheetName = "Sheet1"
	}
	if sheetName != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheetName); err != nil {
			return nil, err
		}
	}

	head := make([]any, len(headers))
	for i, h := range headers {
		head[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &head); err != nil {
		return nil, err
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := r
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, err
		}
	}

	if len(headers) > 0 {
		style, err := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true},
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D9D9D9"}},
		})
		if err != nil {
			return nil, err
		}
		if err := f.SetRowStyle(sheetName, 1, 1, style); err != nil {
			return nil, err
		}
		last, err := excelize.ColumnNumberToName(len(headers))
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheetName, "A", last, 18); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
