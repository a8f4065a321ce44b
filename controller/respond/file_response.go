package respond

import (
	"encoding/json"
	"log"
	"time"

	"tabular-file-service/model"
)

// RequestUploadIdResponse pre-allocated upload identifier
type RequestUploadIdResponse struct {
	UploadId string `json:"uploadId"`
}

// UploadResponse returned as soon as the upload stream completes
type UploadResponse struct {
	FileId   string `json:"file_id"`
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	UploadId string `json:"uploadId"`
}

// FileProgressResponse polled upload/parse progress
type FileProgressResponse struct {
	FileId   string `json:"file_id"`
	Status   string `json:"status"`
	Progress int    `json:"progress"`
}

// ParseMeta parse result metadata
type ParseMeta struct {
	Rows    int    `json:"rows"`
	Cols    int    `json:"cols"`
	Variant string `json:"variant"`
}

// FileContentResponse parsed result for a ready record
type FileContentResponse struct {
	FileId    string                   `json:"file_id"`
	FileName  string                   `json:"filename"`
	ParseMeta ParseMeta                `json:"parseMeta"`
	Data      []map[string]interface{} `json:"data"`
}

// FileNotReadyResponse returned while parsing has not finished
type FileNotReadyResponse struct {
	Message string `json:"message"`
}

// FileListItem list view of a record, parsed content excluded
type FileListItem struct {
	FileId    string    `json:"file_id"`
	FileName  string    `json:"filename"`
	Status    string    `json:"status"`
	Progress  int       `json:"progress"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeleteResponse delete outcome
type DeleteResponse struct {
	Success bool `json:"success"`
}

// ToFileProgressResponse convert model to progress response
func ToFileProgressResponse(rec *model.FileRecord) FileProgressResponse {
	return FileProgressResponse{
		FileId:   rec.FileId,
		Status:   string(rec.Status),
		Progress: rec.Progress,
	}
}

// ToFileContentResponse convert a ready record to content response
func ToFileContentResponse(rec *model.FileRecord) FileContentResponse {
	var rows []map[string]interface{}
	if rec.Content != "" {
		if err := json.Unmarshal([]byte(rec.Content), &rows); err != nil {
			log.Printf("Failed to unmarshal parsed content for file %s: %v", rec.FileId, err)
		}
	}
	if rows == nil {
		rows = []map[string]interface{}{}
	}

	return FileContentResponse{
		FileId:   rec.FileId,
		FileName: rec.FileName,
		ParseMeta: ParseMeta{
			Rows:    rec.RowCount,
			Cols:    rec.ColumnCount,
			Variant: string(rec.DecoderVariant),
		},
		Data: rows,
	}
}

// ToFileListItems convert models to list items
func ToFileListItems(recs []*model.FileRecord) []FileListItem {
	items := make([]FileListItem, 0, len(recs))
	for _, rec := range recs {
		items = append(items, FileListItem{
			FileId:    rec.FileId,
			FileName:  rec.FileName,
			Status:    string(rec.Status),
			Progress:  rec.Progress,
			Size:      rec.FileSize,
			CreatedAt: rec.CreatedAt,
			UpdatedAt: rec.UpdatedAt,
		})
	}
	return items
}
