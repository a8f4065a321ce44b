package file_service

import (
	"fmt"
	"io"
	"strconv"

	"tabular-file-service/model"

	"github.com/xuri/excelize/v2"
)

// XLSXDecoder spreadsheet-workbook decoder. Only the first sheet is read and
// its first row is the header. Cell values keep their spreadsheet type:
// numeric cells decode to float64, boolean cells to bool, string cells to
// string. Missing cells decode to an explicit nil so every record carries
// the full header key set; a string cell holding "" stays an empty string.
type XLSXDecoder struct{}

// Variant decoder variant name
func (d *XLSXDecoder) Variant() model.DecoderVariant {
	return model.DecoderXLSX
}

// Decode reads the first sheet into ordered records
func (d *XLSXDecoder) Decode(r io.Reader) ([]map[string]interface{}, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return []map[string]interface{}{}, nil
	}
	sheet := sheets[0]

	cells, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(cells) == 0 {
		return []map[string]interface{}{}, nil
	}

	header := cells[0]
	rows := make([]map[string]interface{}, 0, len(cells)-1)
	for rowIdx, line := range cells[1:] {
		row := make(map[string]interface{}, len(header))
		for i, col := range header {
			if i >= len(line) {
				row[col] = nil // trailing cells trimmed by the sheet reader
				continue
			}
			row[col] = cellValue(f, sheet, i, rowIdx+2, line[i])
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// cellValue converts a formatted cell string back to a typed value. The
// sheet reader formats every cell as a string; the stored cell type decides
// whether that string is really a number, a boolean or text. An empty value
// is nil unless the cell is string-typed, which means it holds "".
func cellValue(f *excelize.File, sheet string, colIdx, rowNum int, raw string) interface{} {
	axis, err := excelize.CoordinatesToCellName(colIdx+1, rowNum)
	if err != nil {
		return raw
	}

	cellType, err := f.GetCellType(sheet, axis)
	if err != nil {
		return raw
	}

	switch cellType {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		return raw
	case excelize.CellTypeBool:
		return raw == "TRUE"
	}

	if raw == "" {
		return nil
	}
	// Numeric cells carry no explicit type marker in the sheet XML
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n
	}
	return raw
}
