package file_service

import "sync"

// UploadEntry live byte counters for one in-flight upload.
type UploadEntry struct {
	Received int64  // Bytes received so far
	Total    int64  // Declared total size, 0 when unknown
	FileId   string // Linked durable record, empty until created
}

// UploadTracker process-wide registry of in-flight upload progress.
// Entries are ephemeral: they never survive a restart and are evicted once
// the upload phase reaches a terminal outcome. The durable file record is
// the source of truth afterwards.
type UploadTracker struct {
	mu      sync.RWMutex
	entries map[string]*UploadEntry
}

// NewUploadTracker create tracker instance
func NewUploadTracker() *UploadTracker {
	return &UploadTracker{
		entries: make(map[string]*UploadEntry),
	}
}

// Register creates an entry with zero counters if absent. Idempotent.
func (t *UploadTracker) Register(uploadId string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.entries[uploadId]; !ok {
		t.entries[uploadId] = &UploadEntry{}
	}
}

// RecordBytes adds to the received-bytes counter. No-op for unknown ids.
func (t *UploadTracker) RecordBytes(uploadId string, delta int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.entries[uploadId]; ok {
		e.Received += delta
	}
}

// SetTotal records the declared total size. No-op for unknown ids.
func (t *UploadTracker) SetTotal(uploadId string, total int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.entries[uploadId]; ok {
		e.Total = total
	}
}

// Link associates the durable record identifier with the upload.
func (t *UploadTracker) Link(uploadId, fileId string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.entries[uploadId]; ok {
		e.FileId = fileId
	}
}

// Snapshot returns a copy of the entry. Second return is false for unknown ids.
func (t *UploadTracker) Snapshot(uploadId string) (UploadEntry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if e, ok := t.entries[uploadId]; ok {
		return *e, true
	}
	return UploadEntry{}, false
}

// Evict removes an entry once its upload reached a terminal outcome.
func (t *UploadTracker) Evict(uploadId string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, uploadId)
}

// Len returns the number of live entries.
func (t *UploadTracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
