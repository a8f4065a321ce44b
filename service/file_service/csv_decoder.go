package file_service

import (
	"encoding/csv"
	"fmt"
	"io"

	"tabular-file-service/model"
)

// CSVDecoder delimited-text decoder. The first line is the header row and
// every following non-empty line becomes one record keyed by those headers.
// Short rows are padded with empty strings, extra trailing fields are
// dropped.
type CSVDecoder struct{}

// Variant decoder variant name
func (d *CSVDecoder) Variant() model.DecoderVariant {
	return model.DecoderCSV
}

// Decode reads the full stream into ordered records
func (d *CSVDecoder) Decode(r io.Reader) ([]map[string]interface{}, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // header reconciliation is handled below

	header, err := reader.Read()
	if err == io.EOF {
		return []map[string]interface{}{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	rows := make([]map[string]interface{}, 0)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed row %d: %w", len(rows)+2, err)
		}

		if isEmptyRow(record) {
			continue
		}

		row := make(map[string]interface{}, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = "" // pad missing trailing fields
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func isEmptyRow(record []string) bool {
	for _, field := range record {
		if field != "" {
			return false
		}
	}
	return true
}
