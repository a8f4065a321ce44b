package model

import "time"

// FileRecord tracks one uploaded file through its whole lifecycle: byte
// ingestion, background parsing and final retrieval.
type FileRecord struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	FileId      string `gorm:"uniqueIndex;type:varchar(255);not null" json:"file_id"` // External identifier
	FileName    string `gorm:"type:varchar(255)" json:"file_name"`                    // Original file name
	ContentType string `gorm:"type:varchar(100)" json:"content_type"`                 // Declared MIME type

	StoragePath string `gorm:"type:varchar(500)" json:"storage_path"` // Blob key in storage
	FileSize    int64  `json:"file_size"`                             // Bytes written, set when the stream completes

	Status   Status `gorm:"type:varchar(20);default:'uploading'" json:"status"` // uploading/processing/ready/failed
	Progress int    `gorm:"type:int;default:0" json:"progress"`                 // Percent (0-100)

	RowCount       int            `gorm:"type:int;default:0" json:"row_count"`
	ColumnCount    int            `gorm:"type:int;default:0" json:"column_count"`
	DecoderVariant DecoderVariant `gorm:"type:varchar(20)" json:"decoder_variant"`
	Content        string         `gorm:"type:longtext" json:"content,omitempty"` // Parsed rows (JSON array), set on ready

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName sets custom table name
func (FileRecord) TableName() string {
	return "tb_file_record"
}
