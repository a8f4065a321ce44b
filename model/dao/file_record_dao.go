package dao

import (
	"fmt"
	"time"

	"tabular-file-service/database"
	"tabular-file-service/model"
)

// FileRecordDAO data access layer for file records.
type FileRecordDAO struct{}

// NewFileRecordDAO creates a new DAO instance.
func NewFileRecordDAO() *FileRecordDAO {
	return &FileRecordDAO{}
}

// Create inserts a new file record.
func (dao *FileRecordDAO) Create(rec *model.FileRecord) error {
	if rec == nil {
		return fmt.Errorf("record is nil")
	}
	return database.DB.CreateFileRecord(rec)
}

// GetByFileID fetches a record by its external file ID.
func (dao *FileRecordDAO) GetByFileID(fileID string) (*model.FileRecord, error) {
	if fileID == "" {
		return nil, fmt.Errorf("file ID is empty")
	}
	return database.DB.GetFileRecordByFileID(fileID)
}

// UpdateFields applies a partial update by column name.
func (dao *FileRecordDAO) UpdateFields(fileID string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return database.DB.UpdateFileRecordFields(fileID, fields)
}

// List returns all records without parsed content, newest first.
func (dao *FileRecordDAO) List() ([]*model.FileRecord, error) {
	return database.DB.ListFileRecords()
}

// Delete removes a record by its external file ID.
func (dao *FileRecordDAO) Delete(fileID string) error {
	if fileID == "" {
		return fmt.Errorf("file ID is empty")
	}
	return database.DB.DeleteFileRecordByFileID(fileID)
}

// GetStalled returns non-terminal records not updated since the given time.
func (dao *FileRecordDAO) GetStalled(updatedBefore time.Time, limit int) ([]*model.FileRecord, error) {
	return database.DB.GetStalledFileRecords(updatedBefore, limit)
}
