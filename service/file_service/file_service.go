package file_service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"tabular-file-service/model"
	"tabular-file-service/model/dao"
	"tabular-file-service/storage"
)

// Progress scale boundaries. The upload phase owns [1,55], the processing
// phase owns [56,99], 100 is written only together with the ready state.
const (
	uploadPhaseCeiling      = 55
	processingPhaseFloor    = 60
	unknownTotalPlaceholder = 10
)

var (
	// ErrMissingFilePart no file field was found in the multipart stream
	ErrMissingFilePart = errors.New("no file part found in multipart stream")
)

// ParserOptions tuning for the parsing stage
type ParserOptions struct {
	MaxRows      int           // Parsed content row cap, rows beyond it are dropped
	ChunkCount   int           // Simulated processing progress chunks
	TickInterval time.Duration // Simulated processing progress tick interval
}

// FileService coordinates streaming ingestion, background parsing and record
// retrieval.
type FileService struct {
	recordDAO *dao.FileRecordDAO
	stor      storage.Storage
	tracker   *UploadTracker
	opts      ParserOptions
}

// NewFileService create file service instance
func NewFileService(recordDAO *dao.FileRecordDAO, stor storage.Storage, tracker *UploadTracker, opts ParserOptions) *FileService {
	if opts.MaxRows <= 0 {
		opts.MaxRows = 5000
	}
	if opts.ChunkCount <= 0 {
		opts.ChunkCount = 5
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = 300 * time.Millisecond
	}

	return &FileService{
		recordDAO: recordDAO,
		stor:      stor,
		tracker:   tracker,
		opts:      opts,
	}
}

// Tracker exposes the upload tracker
func (s *FileService) Tracker() *UploadTracker {
	return s.tracker
}

// RequestUploadID pre-allocates an upload identifier and registers it with
// the tracker so progress is observable before any bytes arrive.
func (s *FileService) RequestUploadID() string {
	uploadId := newUploadID()
	s.tracker.Register(uploadId)
	return uploadId
}

// UploadResult returned to the caller as soon as the byte stream is fully
// written. Parsing continues in the background.
type UploadResult struct {
	FileId   string
	Status   model.Status
	Progress int
	UploadId string
}

// IngestStream consumes a multipart stream: the first file part is written
// to blob storage while byte-level progress is reported, the durable record
// is created as soon as the part is identified, and the record is handed off
// to the background parse task. Additional file parts are drained and
// ignored.
func (s *FileService) IngestStream(uploadId string, totalSize int64, mr *multipart.Reader) (*UploadResult, error) {
	if uploadId == "" {
		uploadId = newUploadID()
	}
	s.tracker.Register(uploadId)
	if totalSize > 0 {
		// Content-Length covers multipart framing too, close enough as a
		// size hint for percentage math.
		s.tracker.SetTotal(uploadId, totalSize)
	}

	part, err := nextFilePart(mr)
	if err != nil {
		s.tracker.Evict(uploadId)
		return nil, err
	}

	fileName := part.FileName()
	contentType := part.Header.Get("Content-Type")
	storageKey := newStorageKey(fileName)

	rec := &model.FileRecord{
		FileId:      newFileID(),
		FileName:    fileName,
		ContentType: contentType,
		StoragePath: storageKey,
		Status:      model.StatusUploading,
		Progress:    1,
	}
	if err := s.recordDAO.Create(rec); err != nil {
		s.tracker.Evict(uploadId)
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}
	s.tracker.Link(uploadId, rec.FileId)

	var lastPct int
	counter := &countingReader{r: part, onChunk: func(delta int64) {
		s.tracker.RecordBytes(uploadId, delta)

		pct := s.uploadPercent(uploadId)
		if pct <= lastPct {
			return
		}
		lastPct = pct

		// Best effort: a lost intermediate update is corrected by the next one
		if err := s.recordDAO.UpdateFields(rec.FileId, map[string]interface{}{"progress": pct}); err != nil {
			log.Printf("Failed to persist upload progress (fileId=%s): %v", rec.FileId, err)
		}
	}}

	written, err := s.stor.SaveStream(storageKey, counter)
	if err != nil {
		s.failRecord(rec.FileId, fmt.Errorf("stream write failed: %w", err))
		s.tracker.Evict(uploadId)
		return nil, fmt.Errorf("failed to write upload stream: %w", err)
	}

	drainRemainingParts(mr)

	if err := s.recordDAO.UpdateFields(rec.FileId, map[string]interface{}{
		"file_size": written,
		"progress":  uploadPhaseCeiling,
	}); err != nil {
		s.failRecord(rec.FileId, fmt.Errorf("failed to finalize upload: %w", err))
		s.tracker.Evict(uploadId)
		return nil, fmt.Errorf("failed to finalize upload: %w", err)
	}

	s.tracker.Evict(uploadId)

	// Hand off to the background parse task; the caller polls for the rest
	go s.runParseTask(rec.FileId, storageKey, fileName, contentType)

	return &UploadResult{
		FileId:   rec.FileId,
		Status:   model.StatusUploading,
		Progress: uploadPhaseCeiling,
		UploadId: uploadId,
	}, nil
}

// GetProgress fetches a record for progress polling
func (s *FileService) GetProgress(fileId string) (*model.FileRecord, error) {
	return s.recordDAO.GetByFileID(fileId)
}

// GetFileRecord fetches a record including parsed content
func (s *FileService) GetFileRecord(fileId string) (*model.FileRecord, error) {
	return s.recordDAO.GetByFileID(fileId)
}

// ListFileRecords lists all records without parsed content, newest first
func (s *FileService) ListFileRecords() ([]*model.FileRecord, error) {
	return s.recordDAO.List()
}

// DeleteFile removes the record and its blob. A blob already missing from
// storage is tolerated.
func (s *FileService) DeleteFile(fileId string) error {
	rec, err := s.recordDAO.GetByFileID(fileId)
	if err != nil {
		return err
	}

	if rec.StoragePath != "" && s.stor.Exists(rec.StoragePath) {
		if err := s.stor.Delete(rec.StoragePath); err != nil {
			log.Printf("Failed to delete blob %s: %v", rec.StoragePath, err)
		}
	}

	return s.recordDAO.Delete(fileId)
}

// failRecord marks a record terminally failed. Progress resets to 0; the
// cause is logged, a polling client only sees the failed state.
func (s *FileService) failRecord(fileId string, cause error) {
	log.Printf("File %s failed: %v", fileId, cause)

	if err := s.recordDAO.UpdateFields(fileId, map[string]interface{}{
		"status":   model.StatusFailed,
		"progress": 0,
	}); err != nil {
		log.Printf("Failed to mark record %s as failed: %v", fileId, err)
	}
}

// uploadPercent current upload-phase percentage for a tracked upload
func (s *FileService) uploadPercent(uploadId string) int {
	entry, ok := s.tracker.Snapshot(uploadId)
	if !ok {
		return 1
	}
	return UploadPercent(entry.Received, entry.Total)
}

// UploadPercent maps received/total bytes onto the upload phase's [1,55]
// range. An unknown total reports a fixed placeholder instead of dividing.
func UploadPercent(received, total int64) int {
	if total <= 0 {
		return unknownTotalPlaceholder
	}
	pct := int(received * uploadPhaseCeiling / total)
	if pct < 1 {
		pct = 1
	}
	if pct > uploadPhaseCeiling {
		pct = uploadPhaseCeiling
	}
	return pct
}

// nextFilePart advances to the first part carrying a file. Form-value parts
// are skipped.
func nextFilePart(mr *multipart.Reader) (*multipart.Part, error) {
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return nil, ErrMissingFilePart
		}
		if err != nil {
			return nil, fmt.Errorf("malformed multipart stream: %w", err)
		}
		if part.FileName() != "" {
			return part, nil
		}
	}
}

// drainRemainingParts consumes the rest of the stream so the client's write
// is not cut short. Only the first file part is honored.
func drainRemainingParts(mr *multipart.Reader) {
	for {
		part, err := mr.NextPart()
		if err != nil {
			return
		}
		io.Copy(io.Discard, part)
		part.Close()
	}
}

// countingReader invokes onChunk after every successful read
type countingReader struct {
	r       io.Reader
	onChunk func(delta int64)
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 && c.onChunk != nil {
		c.onChunk(int64(n))
	}
	return n, err
}

func newUploadID() string {
	return fmt.Sprintf("upload_%d_%s", time.Now().UnixNano(), randomHex(4))
}

func newFileID() string {
	return fmt.Sprintf("file_%d_%s", time.Now().UnixNano(), randomHex(4))
}

func newStorageKey(fileName string) string {
	return fmt.Sprintf("%d_%s_%s", time.Now().UnixNano(), randomHex(4), sanitizeFileName(fileName))
}

func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// Fall back to a time-derived suffix if the random source is unavailable
		return fmt.Sprintf("%x", time.Now().UnixNano()&0xffffffff)
	}
	return hex.EncodeToString(buf)
}

// sanitizeFileName reduces a client-supplied name to a safe storage key part
func sanitizeFileName(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	base = strings.ReplaceAll(base, " ", "_")

	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "upload.bin"
	}
	return b.String()
}
