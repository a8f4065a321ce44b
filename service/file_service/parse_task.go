package file_service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"tabular-file-service/model"
)

// runParseTask converts the stored blob into structured records and
// finalizes the record. Failures are terminal: the record flips to failed
// and the caller learns about it on the next poll.
func (s *FileService) runParseTask(fileId, storageKey, fileName, contentType string) {
	if err := s.recordDAO.UpdateFields(fileId, map[string]interface{}{
		"status":   model.StatusProcessing,
		"progress": processingPhaseFloor,
	}); err != nil {
		s.failRecord(fileId, fmt.Errorf("failed to enter processing state: %w", err))
		return
	}

	data, err := s.stor.Get(storageKey)
	if err != nil {
		s.failRecord(fileId, fmt.Errorf("failed to read blob %s: %w", storageKey, err))
		return
	}

	decoder := SelectDecoder(contentType, fileName)
	rows, err := decoder.Decode(bytes.NewReader(data))
	if err != nil {
		s.failRecord(fileId, fmt.Errorf("decode failed: %w", err))
		return
	}

	s.simulateProcessingProgress(fileId, len(rows))

	if len(rows) > s.opts.MaxRows {
		rows = rows[:s.opts.MaxRows] // resource bound, not an error
	}

	columnCount := 0
	if len(rows) > 0 {
		columnCount = len(rows[0])
	}

	content, err := json.Marshal(rows)
	if err != nil {
		s.failRecord(fileId, fmt.Errorf("failed to marshal parsed rows: %w", err))
		return
	}

	// Content, metadata, state and progress land in one update so a reader
	// can never observe ready without its content.
	if err := s.recordDAO.UpdateFields(fileId, map[string]interface{}{
		"status":          model.StatusReady,
		"progress":        100,
		"row_count":       len(rows),
		"column_count":    columnCount,
		"decoder_variant": decoder.Variant(),
		"content":         string(content),
	}); err != nil {
		s.failRecord(fileId, fmt.Errorf("failed to finalize record: %w", err))
		return
	}

	log.Printf("File %s parsed: rows=%d cols=%d variant=%s", fileId, len(rows), columnCount, decoder.Variant())
}

// simulateProcessingProgress advances the processing percentage through
// fixed chunks on a timer. The decode itself already finished; the
// simulation keeps polling clients moving instead of jumping straight from
// the floor to 100.
func (s *FileService) simulateProcessingProgress(fileId string, totalRows int) {
	total := totalRows
	if total <= 0 {
		total = 1
	}
	chunk := total / s.opts.ChunkCount
	if chunk < 1 {
		chunk = 1
	}

	ticker := time.NewTicker(s.opts.TickInterval)
	defer ticker.Stop()

	for processed := 0; processed < total; {
		<-ticker.C
		processed += chunk
		if processed > total {
			processed = total
		}

		pct := ProcessingPercent(processed, total)
		if err := s.recordDAO.UpdateFields(fileId, map[string]interface{}{"progress": pct}); err != nil {
			log.Printf("Failed to persist processing progress (fileId=%s): %v", fileId, err)
		}
	}
}

// ProcessingPercent maps processed/total work onto the processing phase's
// [60,99] range. 100 is reserved for the ready transition.
func ProcessingPercent(processed, total int) int {
	if total <= 0 {
		return processingPhaseFloor
	}
	pct := processingPhaseFloor + processed*40/total
	if pct > 99 {
		pct = 99
	}
	if pct < processingPhaseFloor {
		pct = processingPhaseFloor
	}
	return pct
}
