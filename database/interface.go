package database

import (
	"time"

	"tabular-file-service/model"
)

// Database interface for different database implementations
type Database interface {
	// FileRecord operations
	CreateFileRecord(rec *model.FileRecord) error
	GetFileRecordByFileID(fileID string) (*model.FileRecord, error)
	UpdateFileRecordFields(fileID string, fields map[string]interface{}) error
	ListFileRecords() ([]*model.FileRecord, error)
	DeleteFileRecordByFileID(fileID string) error
	GetStalledFileRecords(updatedBefore time.Time, limit int) ([]*model.FileRecord, error)

	// General operations
	Close() error
}

// DBType database type
type DBType string

const (
	DBTypeMySQL  DBType = "mysql"
	DBTypePebble DBType = "pebble"
)

// Global database instance
var DB Database

// currentDBType stores the current database type
var currentDBType DBType

// InitDatabase initialize database with specified type
func InitDatabase(dbType DBType, config interface{}) error {
	var err error

	switch dbType {
	case DBTypeMySQL:
		DB, err = NewMySQLDatabase(config)
		currentDBType = DBTypeMySQL
	case DBTypePebble:
		DB, err = NewPebbleDatabase(config)
		currentDBType = DBTypePebble
	default:
		return ErrUnsupportedDBType
	}

	return err
}

// GetDBType get current database type
func GetDBType() DBType {
	return currentDBType
}
