package database

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"tabular-file-service/model"

	"github.com/cockroachdb/pebble"
)

// PebbleDatabase PebbleDB database implementation with multiple collections
type PebbleDatabase struct {
	collections map[string]*pebble.DB // Map of collection name to PebbleDB instance

	recordIDCounter atomic.Int64
	mu              sync.Mutex // serializes read-modify-write record updates
}

// PebbleConfig PebbleDB configuration
type PebbleConfig struct {
	DataDir string
}

// Collection names and their key-value formats
const (
	collectionFileRecord = "file_record" // key: {file_id}, value: JSON(FileRecord)
	collectionCounters   = "counters"    // key: record, value: {max_id}
)

// Counter keys
const (
	keyRecordCounter = "record"
)

// NewPebbleDatabase create PebbleDB database instance with multiple collections
func NewPebbleDatabase(config interface{}) (Database, error) {
	cfg, ok := config.(*PebbleConfig)
	if !ok {
		return nil, fmt.Errorf("invalid PebbleDB config type")
	}

	// Create data directory if not exists with full permissions
	if err := os.MkdirAll(cfg.DataDir, 0777); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", cfg.DataDir, err)
	}

	collectionNames := []string{
		collectionFileRecord,
		collectionCounters,
	}

	collections := make(map[string]*pebble.DB)
	for _, name := range collectionNames {
		db, err := pebble.Open(filepath.Join(cfg.DataDir, name), &pebble.Options{})
		if err != nil {
			for _, opened := range collections {
				opened.Close()
			}
			return nil, fmt.Errorf("failed to open collection %s: %w", name, err)
		}
		collections[name] = db
	}

	p := &PebbleDatabase{collections: collections}
	if err := p.loadCounters(); err != nil {
		p.Close()
		return nil, err
	}

	log.Printf("PebbleDB initialized: %s", cfg.DataDir)

	return p, nil
}

// loadCounters restore the record ID counter from the counters collection
func (p *PebbleDatabase) loadCounters() error {
	val, closer, err := p.collections[collectionCounters].Get([]byte(keyRecordCounter))
	if err == pebble.ErrNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load record counter: %w", err)
	}
	defer closer.Close()

	maxID, err := strconv.ParseInt(string(val), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid record counter value: %w", err)
	}
	p.recordIDCounter.Store(maxID)
	return nil
}

func (p *PebbleDatabase) nextRecordID() (int64, error) {
	id := p.recordIDCounter.Add(1)
	err := p.collections[collectionCounters].Set(
		[]byte(keyRecordCounter), []byte(strconv.FormatInt(id, 10)), pebble.Sync)
	if err != nil {
		return 0, fmt.Errorf("failed to persist record counter: %w", err)
	}
	return id, nil
}

func (p *PebbleDatabase) putRecord(rec *model.FileRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal file record: %w", err)
	}
	return p.collections[collectionFileRecord].Set([]byte(rec.FileId), data, pebble.Sync)
}

func (p *PebbleDatabase) getRecord(fileID string) (*model.FileRecord, error) {
	val, closer, err := p.collections[collectionFileRecord].Get([]byte(fileID))
	if err == pebble.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file record: %w", err)
	}
	defer closer.Close()

	var rec model.FileRecord
	if err := json.Unmarshal(val, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal file record: %w", err)
	}
	return &rec, nil
}

// FileRecord operations

func (p *PebbleDatabase) CreateFileRecord(rec *model.FileRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	id, err := p.nextRecordID()
	if err != nil {
		return err
	}
	rec.ID = id

	now := time.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	return p.putRecord(rec)
}

func (p *PebbleDatabase) GetFileRecordByFileID(fileID string) (*model.FileRecord, error) {
	return p.getRecord(fileID)
}

// UpdateFileRecordFields applies a partial update. Field names match the
// MySQL column names so callers stay adapter-agnostic.
func (p *PebbleDatabase) UpdateFileRecordFields(fileID string, fields map[string]interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	rec, err := p.getRecord(fileID)
	if err != nil {
		return err
	}

	for name, value := range fields {
		switch name {
		case "status":
			rec.Status = model.Status(toString(value))
		case "progress":
			rec.Progress = toInt(value)
		case "file_size":
			rec.FileSize = toInt64(value)
		case "row_count":
			rec.RowCount = toInt(value)
		case "column_count":
			rec.ColumnCount = toInt(value)
		case "decoder_variant":
			rec.DecoderVariant = model.DecoderVariant(toString(value))
		case "content":
			rec.Content = toString(value)
		case "storage_path":
			rec.StoragePath = toString(value)
		case "file_name":
			rec.FileName = toString(value)
		case "content_type":
			rec.ContentType = toString(value)
		default:
			return fmt.Errorf("unsupported field update: %s", name)
		}
	}
	rec.UpdatedAt = time.Now()

	return p.putRecord(rec)
}

func (p *PebbleDatabase) ListFileRecords() ([]*model.FileRecord, error) {
	iter, err := p.collections[collectionFileRecord].NewIter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create iterator: %w", err)
	}
	defer iter.Close()

	var recs []*model.FileRecord
	for iter.First(); iter.Valid(); iter.Next() {
		var rec model.FileRecord
		if err := json.Unmarshal(iter.Value(), &rec); err != nil {
			log.Printf("Skipping corrupt file record %s: %v", iter.Key(), err)
			continue
		}
		rec.Content = "" // list view excludes parsed content
		recs = append(recs, &rec)
	}

	sort.Slice(recs, func(i, j int) bool {
		return recs[i].ID > recs[j].ID
	})

	return recs, nil
}

func (p *PebbleDatabase) DeleteFileRecordByFileID(fileID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := p.getRecord(fileID); err != nil {
		return err
	}
	return p.collections[collectionFileRecord].Delete([]byte(fileID), pebble.Sync)
}

func (p *PebbleDatabase) GetStalledFileRecords(updatedBefore time.Time, limit int) ([]*model.FileRecord, error) {
	iter, err := p.collections[collectionFileRecord].NewIter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create iterator: %w", err)
	}
	defer iter.Close()

	var recs []*model.FileRecord
	for iter.First(); iter.Valid(); iter.Next() {
		var rec model.FileRecord
		if err := json.Unmarshal(iter.Value(), &rec); err != nil {
			continue
		}
		if rec.Status.IsTerminal() {
			continue
		}
		if !rec.UpdatedAt.Before(updatedBefore) {
			continue
		}
		rec.Content = ""
		recs = append(recs, &rec)
	}

	sort.Slice(recs, func(i, j int) bool {
		return recs[i].UpdatedAt.Before(recs[j].UpdatedAt)
	})

	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

// Close close all collections
func (p *PebbleDatabase) Close() error {
	var firstErr error
	for name, db := range p.collections {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close collection %s: %w", name, err)
		}
	}
	return firstErr
}

func toString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case model.Status:
		return string(s)
	case model.DecoderVariant:
		return string(s)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func toInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	}
	return 0
}
