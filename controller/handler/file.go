package handler

import (
	"errors"
	"fmt"

	"tabular-file-service/conf"
	"tabular-file-service/controller/respond"
	"tabular-file-service/database"
	"tabular-file-service/model"
	"tabular-file-service/service/file_service"

	"github.com/gin-gonic/gin"
)

// FileHandler file upload and retrieval handler
type FileHandler struct {
	fileService *file_service.FileService
}

// NewFileHandler create file handler instance
func NewFileHandler(fileService *file_service.FileService) *FileHandler {
	return &FileHandler{
		fileService: fileService,
	}
}

func fileContentCacheKey(fileId string) string {
	return fmt.Sprintf("file:content:%s", fileId)
}

// RequestUploadId pre-allocate an upload identifier
// @Summary Request upload ID
// @Description Pre-allocates an upload identifier so progress is observable before any bytes arrive
// @Tags files
// @Produce json
// @Success 200 {object} respond.Response{data=respond.RequestUploadIdResponse}
// @Router /files/request-id [post]
func (h *FileHandler) RequestUploadId(c *gin.Context) {
	uploadId := h.fileService.RequestUploadID()
	respond.Success(c, respond.RequestUploadIdResponse{UploadId: uploadId})
}

// Upload stream a file upload
// @Summary Upload file
// @Description Streams a multipart file upload. Only the first file part is honored, the rest of the stream is drained. Returns as soon as the bytes are stored; parsing continues in the background.
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Param uploadId query string false "Pre-allocated upload identifier"
// @Param x-upload-id header string false "Pre-allocated upload identifier (alternative to query)"
// @Param file formData file true "File to upload"
// @Success 200 {object} respond.Response{data=respond.UploadResponse}
// @Failure 400 {object} respond.Response
// @Failure 500 {object} respond.Response
// @Router /files [post]
func (h *FileHandler) Upload(c *gin.Context) {
	uploadId := c.Query("uploadId")
	if uploadId == "" {
		uploadId = c.GetHeader("x-upload-id")
	}

	if max := conf.Cfg.Upload.MaxFileSize; max > 0 && c.Request.ContentLength > max {
		respond.InvalidParam(c, fmt.Sprintf("file exceeds the maximum allowed size of %d bytes", max))
		return
	}

	mr, err := c.Request.MultipartReader()
	if err != nil {
		respond.InvalidParam(c, "multipart body required: "+err.Error())
		return
	}

	result, err := h.fileService.IngestStream(uploadId, c.Request.ContentLength, mr)
	if err != nil {
		if errors.Is(err, file_service.ErrMissingFilePart) {
			respond.InvalidParam(c, "file part is required")
			return
		}
		respond.ServerError(c, err.Error())
		return
	}

	respond.Success(c, respond.UploadResponse{
		FileId:   result.FileId,
		Status:   string(result.Status),
		Progress: result.Progress,
		UploadId: result.UploadId,
	})
}

// GetProgress poll upload/parse progress
// @Summary Get file progress
// @Description Returns the current lifecycle state and progress percentage of a file record
// @Tags files
// @Produce json
// @Param fileId path string true "File ID"
// @Success 200 {object} respond.Response{data=respond.FileProgressResponse}
// @Failure 404 {object} respond.Response
// @Router /files/{fileId}/progress [get]
func (h *FileHandler) GetProgress(c *gin.Context) {
	fileId := c.Param("fileId")
	if fileId == "" {
		respond.InvalidParam(c, "file ID is required")
		return
	}

	rec, err := h.fileService.GetProgress(fileId)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respond.NotFound(c, "file not found: "+fileId)
			return
		}
		respond.ServerError(c, err.Error())
		return
	}

	respond.Success(c, respond.ToFileProgressResponse(rec))
}

// GetFile fetch the parsed result of a ready record
// @Summary Get parsed file content
// @Description Returns parsed rows and metadata once the record is ready. Before that a not-ready message is returned.
// @Tags files
// @Produce json
// @Param fileId path string true "File ID"
// @Success 200 {object} respond.Response{data=respond.FileContentResponse}
// @Failure 404 {object} respond.Response
// @Router /files/{fileId} [get]
func (h *FileHandler) GetFile(c *gin.Context) {
	fileId := c.Param("fileId")
	if fileId == "" {
		respond.InvalidParam(c, "file ID is required")
		return
	}

	// Parsed content is immutable once ready, so cache hits are always valid
	var cached respond.FileContentResponse
	if err := database.GetCache(fileContentCacheKey(fileId), &cached); err == nil {
		respond.Success(c, cached)
		return
	}

	rec, err := h.fileService.GetFileRecord(fileId)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respond.NotFound(c, "file not found: "+fileId)
			return
		}
		respond.ServerError(c, err.Error())
		return
	}

	if rec.Status != model.StatusReady {
		respond.Success(c, respond.FileNotReadyResponse{
			Message: "file is not ready yet, current status: " + string(rec.Status),
		})
		return
	}

	resp := respond.ToFileContentResponse(rec)
	database.SetCache(fileContentCacheKey(fileId), resp)

	respond.Success(c, resp)
}

// ListFiles list all file records
// @Summary List files
// @Description Lists all file records without their parsed content, newest first
// @Tags files
// @Produce json
// @Success 200 {object} respond.Response{data=[]respond.FileListItem}
// @Router /files [get]
func (h *FileHandler) ListFiles(c *gin.Context) {
	recs, err := h.fileService.ListFileRecords()
	if err != nil {
		respond.ServerError(c, err.Error())
		return
	}

	respond.Success(c, respond.ToFileListItems(recs))
}

// DeleteFile remove a file record and its stored blob
// @Summary Delete file
// @Description Removes the record and its blob. A blob already missing from storage is tolerated.
// @Tags files
// @Produce json
// @Param fileId path string true "File ID"
// @Success 200 {object} respond.Response{data=respond.DeleteResponse}
// @Failure 404 {object} respond.Response
// @Router /files/{fileId} [delete]
func (h *FileHandler) DeleteFile(c *gin.Context) {
	fileId := c.Param("fileId")
	if fileId == "" {
		respond.InvalidParam(c, "file ID is required")
		return
	}

	if err := h.fileService.DeleteFile(fileId); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respond.NotFound(c, "file not found: "+fileId)
			return
		}
		respond.ServerError(c, err.Error())
		return
	}

	database.DeleteCache(fileContentCacheKey(fileId))

	respond.Success(c, respond.DeleteResponse{Success: true})
}
