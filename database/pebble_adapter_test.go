package database

import (
	"testing"
	"time"

	"tabular-file-service/model"
)

func newTestPebble(t *testing.T) Database {
	t.Helper()

	db, err := NewPebbleDatabase(&PebbleConfig{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("failed to open pebble database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func TestPebbleCreateAndGetFileRecord(t *testing.T) {
	db := newTestPebble(t)

	rec := &model.FileRecord{
		FileId:   "file_1",
		FileName: "data.csv",
		Status:   model.StatusUploading,
		Progress: 1,
	}
	if err := db.CreateFileRecord(rec); err != nil {
		t.Fatalf("CreateFileRecord failed: %v", err)
	}
	if rec.ID == 0 {
		t.Error("expected assigned ID after create")
	}

	got, err := db.GetFileRecordByFileID("file_1")
	if err != nil {
		t.Fatalf("GetFileRecordByFileID failed: %v", err)
	}
	if got.FileName != "data.csv" || got.Status != model.StatusUploading || got.Progress != 1 {
		t.Errorf("unexpected record: %+v", got)
	}
}

func TestPebbleGetMissingRecord(t *testing.T) {
	db := newTestPebble(t)

	if _, err := db.GetFileRecordByFileID("nope"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPebbleUpdateFileRecordFields(t *testing.T) {
	db := newTestPebble(t)

	rec := &model.FileRecord{FileId: "file_1", Status: model.StatusUploading, Progress: 1}
	if err := db.CreateFileRecord(rec); err != nil {
		t.Fatalf("CreateFileRecord failed: %v", err)
	}

	err := db.UpdateFileRecordFields("file_1", map[string]interface{}{
		"status":          model.StatusReady,
		"progress":        100,
		"row_count":       3,
		"column_count":    2,
		"decoder_variant": model.DecoderCSV,
		"content":         `[{"a":"1"}]`,
		"file_size":       int64(42),
	})
	if err != nil {
		t.Fatalf("UpdateFileRecordFields failed: %v", err)
	}

	got, err := db.GetFileRecordByFileID("file_1")
	if err != nil {
		t.Fatalf("GetFileRecordByFileID failed: %v", err)
	}
	if got.Status != model.StatusReady || got.Progress != 100 {
		t.Errorf("status/progress not updated: %+v", got)
	}
	if got.RowCount != 3 || got.ColumnCount != 2 || got.DecoderVariant != model.DecoderCSV {
		t.Errorf("parse metadata not updated: %+v", got)
	}
	if got.Content != `[{"a":"1"}]` {
		t.Errorf("content not updated: %q", got.Content)
	}
	if got.FileSize != 42 {
		t.Errorf("file size not updated: %d", got.FileSize)
	}
}

func TestPebbleUpdateMissingRecord(t *testing.T) {
	db := newTestPebble(t)

	err := db.UpdateFileRecordFields("nope", map[string]interface{}{"progress": 50})
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPebbleListFileRecords(t *testing.T) {
	db := newTestPebble(t)

	for _, id := range []string{"file_a", "file_b", "file_c"} {
		rec := &model.FileRecord{FileId: id, Status: model.StatusReady, Content: "payload"}
		if err := db.CreateFileRecord(rec); err != nil {
			t.Fatalf("CreateFileRecord failed: %v", err)
		}
	}

	recs, err := db.ListFileRecords()
	if err != nil {
		t.Fatalf("ListFileRecords failed: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}

	// Newest first
	if recs[0].FileId != "file_c" || recs[2].FileId != "file_a" {
		t.Errorf("unexpected order: %s, %s, %s", recs[0].FileId, recs[1].FileId, recs[2].FileId)
	}

	// List view excludes parsed content
	for _, rec := range recs {
		if rec.Content != "" {
			t.Errorf("expected content excluded from list, got %q for %s", rec.Content, rec.FileId)
		}
	}
}

func TestPebbleDeleteFileRecord(t *testing.T) {
	db := newTestPebble(t)

	rec := &model.FileRecord{FileId: "file_1", Status: model.StatusReady}
	if err := db.CreateFileRecord(rec); err != nil {
		t.Fatalf("CreateFileRecord failed: %v", err)
	}

	if err := db.DeleteFileRecordByFileID("file_1"); err != nil {
		t.Fatalf("DeleteFileRecordByFileID failed: %v", err)
	}
	if _, err := db.GetFileRecordByFileID("file_1"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := db.DeleteFileRecordByFileID("file_1"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound for double delete, got %v", err)
	}
}

func TestPebbleGetStalledFileRecords(t *testing.T) {
	db := newTestPebble(t)

	for _, tc := range []struct {
		fileId string
		status model.Status
	}{
		{"file_uploading", model.StatusUploading},
		{"file_processing", model.StatusProcessing},
		{"file_ready", model.StatusReady},
		{"file_failed", model.StatusFailed},
	} {
		rec := &model.FileRecord{FileId: tc.fileId, Status: tc.status}
		if err := db.CreateFileRecord(rec); err != nil {
			t.Fatalf("CreateFileRecord failed: %v", err)
		}
	}

	// Everything was just created, so a cutoff in the future catches all
	// non-terminal records and a cutoff in the past catches none.
	stalled, err := db.GetStalledFileRecords(time.Now().Add(time.Hour), 10)
	if err != nil {
		t.Fatalf("GetStalledFileRecords failed: %v", err)
	}
	if len(stalled) != 2 {
		t.Fatalf("expected 2 stalled records, got %d", len(stalled))
	}
	for _, rec := range stalled {
		if rec.Status.IsTerminal() {
			t.Errorf("terminal record %s returned as stalled", rec.FileId)
		}
	}

	none, err := db.GetStalledFileRecords(time.Now().Add(-time.Hour), 10)
	if err != nil {
		t.Fatalf("GetStalledFileRecords failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no stalled records for past cutoff, got %d", len(none))
	}

	// Limit applies
	one, err := db.GetStalledFileRecords(time.Now().Add(time.Hour), 1)
	if err != nil {
		t.Fatalf("GetStalledFileRecords failed: %v", err)
	}
	if len(one) != 1 {
		t.Errorf("expected 1 record with limit=1, got %d", len(one))
	}
}

func TestPebbleCounterSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	db, err := NewPebbleDatabase(&PebbleConfig{DataDir: dir})
	if err != nil {
		t.Fatalf("failed to open pebble database: %v", err)
	}
	rec := &model.FileRecord{FileId: "file_1"}
	if err := db.CreateFileRecord(rec); err != nil {
		t.Fatalf("CreateFileRecord failed: %v", err)
	}
	firstID := rec.ID
	if err := db.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	db, err = NewPebbleDatabase(&PebbleConfig{DataDir: dir})
	if err != nil {
		t.Fatalf("failed to reopen pebble database: %v", err)
	}
	defer db.Close()

	rec2 := &model.FileRecord{FileId: "file_2"}
	if err := db.CreateFileRecord(rec2); err != nil {
		t.Fatalf("CreateFileRecord failed: %v", err)
	}
	if rec2.ID <= firstID {
		t.Errorf("expected ID to advance across reopen: first=%d second=%d", firstID, rec2.ID)
	}
}
