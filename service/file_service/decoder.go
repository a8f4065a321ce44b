package file_service

import (
	"io"
	"strings"

	"tabular-file-service/model"
)

// TabularDecoder turns a raw byte stream into ordered row records. Each row
// is keyed by the header columns of the source file.
type TabularDecoder interface {
	Variant() model.DecoderVariant
	Decode(r io.Reader) ([]map[string]interface{}, error)
}

// SelectDecoder picks the decoder from the declared content type and file
// name. Unrecognized inputs fall back to the delimited-text decoder, which
// fails during decode if the bytes are not actually delimited text.
func SelectDecoder(contentType, fileName string) TabularDecoder {
	ct := strings.ToLower(contentType)
	name := strings.ToLower(fileName)

	if strings.Contains(ct, "csv") || strings.Contains(name, "csv") {
		return &CSVDecoder{}
	}
	if strings.Contains(ct, "excel") || strings.Contains(ct, "spreadsheetml") ||
		strings.HasSuffix(name, ".xlsx") || strings.HasSuffix(name, ".xls") {
		return &XLSXDecoder{}
	}
	return &CSVDecoder{}
}
