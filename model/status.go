package model

// Status lifecycle state of a file record
type Status string

const (
	StatusUploading  Status = "uploading"  // Bytes still streaming in
	StatusProcessing Status = "processing" // Background parse in flight
	StatusReady      Status = "ready"      // Parsed content available
	StatusFailed     Status = "failed"     // Terminal failure
)

// IsTerminal reports whether the state can never change again.
func (s Status) IsTerminal() bool {
	return s == StatusReady || s == StatusFailed
}

// DecoderVariant format-specific decoder used for a file
type DecoderVariant string

const (
	DecoderCSV  DecoderVariant = "csv"
	DecoderXLSX DecoderVariant = "xlsx"
)
