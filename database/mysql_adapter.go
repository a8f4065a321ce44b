package database

import (
	"errors"
	"fmt"
	"log"
	"time"

	"tabular-file-service/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MySQLDatabase MySQL database implementation
type MySQLDatabase struct {
	db *gorm.DB
}

// MySQLConfig MySQL configuration
type MySQLConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

// NewMySQLDatabase create MySQL database instance
func NewMySQLDatabase(config interface{}) (Database, error) {
	cfg, ok := config.(*MySQLConfig)
	if !ok {
		return nil, fmt.Errorf("invalid MySQL config type")
	}

	// Connect database
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect MySQL: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// Set connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&model.FileRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	log.Println("MySQL database connected successfully")

	return &MySQLDatabase{db: db}, nil
}

// FileRecord operations

func (m *MySQLDatabase) CreateFileRecord(rec *model.FileRecord) error {
	return m.db.Create(rec).Error
}

func (m *MySQLDatabase) GetFileRecordByFileID(fileID string) (*model.FileRecord, error) {
	var rec model.FileRecord
	err := m.db.Where("file_id = ?", fileID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (m *MySQLDatabase) UpdateFileRecordFields(fileID string, fields map[string]interface{}) error {
	result := m.db.Model(&model.FileRecord{}).Where("file_id = ?", fileID).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MySQLDatabase) ListFileRecords() ([]*model.FileRecord, error) {
	var recs []*model.FileRecord
	err := m.db.Omit("content").Order("id DESC").Find(&recs).Error
	return recs, err
}

func (m *MySQLDatabase) DeleteFileRecordByFileID(fileID string) error {
	result := m.db.Where("file_id = ?", fileID).Delete(&model.FileRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MySQLDatabase) GetStalledFileRecords(updatedBefore time.Time, limit int) ([]*model.FileRecord, error) {
	var recs []*model.FileRecord
	err := m.db.Omit("content").
		Where("status IN ? AND updated_at < ?",
			[]model.Status{model.StatusUploading, model.StatusProcessing}, updatedBefore).
		Order("updated_at ASC").
		Limit(limit).
		Find(&recs).Error
	return recs, err
}

// Close close database connection
func (m *MySQLDatabase) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
