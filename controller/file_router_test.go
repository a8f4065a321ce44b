package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tabular-file-service/conf"
	"tabular-file-service/database"
	"tabular-file-service/model/dao"
	"tabular-file-service/service/file_service"
	"tabular-file-service/storage"

	"github.com/gin-gonic/gin"
)

type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T, maxRows int) (*httptest.Server, *storage.LocalStorage) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	conf.Cfg = &conf.Config{
		Port:           "0",
		SwaggerBaseUrl: "localhost",
	}

	if err := database.InitDatabase(database.DBTypePebble, &database.PebbleConfig{DataDir: t.TempDir()}); err != nil {
		t.Fatalf("failed to init database: %v", err)
	}
	t.Cleanup(func() {
		database.DB.Close()
	})

	stor, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to init storage: %v", err)
	}

	svc := file_service.NewFileService(dao.NewFileRecordDAO(), stor, file_service.NewUploadTracker(),
		file_service.ParserOptions{
			MaxRows:      maxRows,
			ChunkCount:   5,
			TickInterval: 5 * time.Millisecond, // keep the simulated phase short in tests
		})

	ts := httptest.NewServer(SetupFileRouter(svc))
	t.Cleanup(ts.Close)

	return ts, stor
}

func multipartBody(t *testing.T, fieldName, fileName, content string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(fieldName, fileName)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := io.WriteString(fw, content); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func doRequest(t *testing.T, method, url string, body io.Reader, contentType string) (*http.Response, apiResponse) {
	t.Helper()

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp, parsed
}

func waitForStatus(t *testing.T, ts *httptest.Server, fileId, want string, timeout time.Duration) int {
	t.Helper()

	deadline := time.Now().Add(timeout)
	lastProgress := -1
	for time.Now().Before(deadline) {
		_, parsed := doRequest(t, http.MethodGet, ts.URL+"/api/v1/files/"+fileId+"/progress", nil, "")

		var progress struct {
			Status   string `json:"status"`
			Progress int    `json:"progress"`
		}
		if err := json.Unmarshal(parsed.Data, &progress); err != nil {
			t.Fatalf("failed to decode progress: %v", err)
		}
		if progress.Status == want {
			return progress.Progress
		}
		lastProgress = progress.Progress
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("file %s never reached %s (last progress %d)", fileId, want, lastProgress)
	return 0
}

func TestUploadLifecycleCSV(t *testing.T) {
	ts, _ := newTestServer(t, 5000)

	body, contentType := multipartBody(t, "file", "data.csv", "a,b\n1,2\n")
	resp, parsed := doRequest(t, http.MethodPost, ts.URL+"/api/v1/files", body, contentType)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, parsed.Message)
	}

	var upload struct {
		FileId   string `json:"file_id"`
		Status   string `json:"status"`
		Progress int    `json:"progress"`
		UploadId string `json:"uploadId"`
	}
	if err := json.Unmarshal(parsed.Data, &upload); err != nil {
		t.Fatalf("failed to decode upload response: %v", err)
	}
	if upload.FileId == "" {
		t.Fatal("expected a file id")
	}
	if upload.Status != "uploading" {
		t.Errorf("expected status uploading right after upload, got %s", upload.Status)
	}
	if upload.Progress != 55 {
		t.Errorf("expected progress 55 at end of upload phase, got %d", upload.Progress)
	}
	if upload.UploadId == "" {
		t.Error("expected a generated upload id")
	}

	progress := waitForStatus(t, ts, upload.FileId, "ready", 5*time.Second)
	if progress != 100 {
		t.Errorf("expected progress 100 once ready, got %d", progress)
	}

	// Parsed content retrieval
	_, parsed = doRequest(t, http.MethodGet, ts.URL+"/api/v1/files/"+upload.FileId, nil, "")
	var content struct {
		FileId    string `json:"file_id"`
		FileName  string `json:"filename"`
		ParseMeta struct {
			Rows    int    `json:"rows"`
			Cols    int    `json:"cols"`
			Variant string `json:"variant"`
		} `json:"parseMeta"`
		Data []map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(parsed.Data, &content); err != nil {
		t.Fatalf("failed to decode content response: %v", err)
	}
	if content.FileName != "data.csv" {
		t.Errorf("expected filename data.csv, got %s", content.FileName)
	}
	if content.ParseMeta.Rows != 1 || content.ParseMeta.Cols != 2 || content.ParseMeta.Variant != "csv" {
		t.Errorf("unexpected parse meta: %+v", content.ParseMeta)
	}
	if len(content.Data) != 1 || content.Data[0]["a"] != "1" || content.Data[0]["b"] != "2" {
		t.Errorf("unexpected parsed data: %v", content.Data)
	}

	// Retrieval is idempotent
	_, again := doRequest(t, http.MethodGet, ts.URL+"/api/v1/files/"+upload.FileId, nil, "")
	if !bytes.Equal(parsed.Data, again.Data) {
		t.Error("repeated retrieval returned different content")
	}

	// The record appears in the list without content
	_, listResp := doRequest(t, http.MethodGet, ts.URL+"/api/v1/files", nil, "")
	var items []map[string]interface{}
	if err := json.Unmarshal(listResp.Data, &items); err != nil {
		t.Fatalf("failed to decode list response: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 record in list, got %d", len(items))
	}
	if items[0]["file_id"] != upload.FileId {
		t.Errorf("unexpected list entry: %v", items[0])
	}
	if _, hasData := items[0]["data"]; hasData {
		t.Error("list view must not carry parsed content")
	}
}

func TestRequestUploadId(t *testing.T) {
	ts, _ := newTestServer(t, 5000)

	resp, parsed := doRequest(t, http.MethodPost, ts.URL+"/api/v1/files/request-id", nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var data struct {
		UploadId string `json:"uploadId"`
	}
	if err := json.Unmarshal(parsed.Data, &data); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if data.UploadId == "" {
		t.Fatal("expected a pre-allocated upload id")
	}

	// The pre-allocated id is echoed back by the upload
	body, contentType := multipartBody(t, "file", "data.csv", "a\n1\n")
	_, uploadParsed := doRequest(t, http.MethodPost,
		ts.URL+"/api/v1/files?uploadId="+data.UploadId, body, contentType)

	var upload struct {
		UploadId string `json:"uploadId"`
	}
	if err := json.Unmarshal(uploadParsed.Data, &upload); err != nil {
		t.Fatalf("failed to decode upload response: %v", err)
	}
	if upload.UploadId != data.UploadId {
		t.Errorf("expected upload id %s echoed back, got %s", data.UploadId, upload.UploadId)
	}
}

func TestUploadMissingFilePart(t *testing.T) {
	ts, _ := newTestServer(t, 5000)

	// Multipart body with only a form value, no file
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("note", "no file here"); err != nil {
		t.Fatalf("failed to write field: %v", err)
	}
	w.Close()

	resp, _ := doRequest(t, http.MethodPost, ts.URL+"/api/v1/files", &buf, w.FormDataContentType())
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for missing file part, got %d", resp.StatusCode)
	}
}

func TestUploadRejectsOversizedBody(t *testing.T) {
	ts, _ := newTestServer(t, 5000)
	conf.Cfg.Upload.MaxFileSize = 16

	body, contentType := multipartBody(t, "file", "data.csv", strings.Repeat("x", 1024))
	resp, _ := doRequest(t, http.MethodPost, ts.URL+"/api/v1/files", body, contentType)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for oversized body, got %d", resp.StatusCode)
	}
}

func TestUploadNotMultipart(t *testing.T) {
	ts, _ := newTestServer(t, 5000)

	resp, _ := doRequest(t, http.MethodPost, ts.URL+"/api/v1/files",
		strings.NewReader("raw bytes"), "text/plain")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for non-multipart body, got %d", resp.StatusCode)
	}
}

func TestUnknownFileReturns404(t *testing.T) {
	ts, _ := newTestServer(t, 5000)

	for _, tc := range []struct {
		method, path string
	}{
		{http.MethodGet, "/api/v1/files/nope/progress"},
		{http.MethodGet, "/api/v1/files/nope"},
		{http.MethodDelete, "/api/v1/files/nope"},
	} {
		resp, _ := doRequest(t, tc.method, ts.URL+tc.path, nil, "")
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s %s: expected 404, got %d", tc.method, tc.path, resp.StatusCode)
		}
	}
}

func TestUploadUndecodableSpreadsheetFails(t *testing.T) {
	ts, _ := newTestServer(t, 5000)

	body, contentType := multipartBody(t, "file", "broken.xlsx", "definitely not a workbook")
	_, parsed := doRequest(t, http.MethodPost, ts.URL+"/api/v1/files", body, contentType)

	var upload struct {
		FileId string `json:"file_id"`
	}
	if err := json.Unmarshal(parsed.Data, &upload); err != nil {
		t.Fatalf("failed to decode upload response: %v", err)
	}

	progress := waitForStatus(t, ts, upload.FileId, "failed", 5*time.Second)
	if progress != 0 {
		t.Errorf("expected progress 0 for failed record, got %d", progress)
	}

	// Content retrieval reports not-ready for a failed record
	_, contentResp := doRequest(t, http.MethodGet, ts.URL+"/api/v1/files/"+upload.FileId, nil, "")
	var notReady struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(contentResp.Data, &notReady); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !strings.Contains(notReady.Message, "failed") {
		t.Errorf("expected not-ready message naming the failed state, got %q", notReady.Message)
	}
}

func TestUploadRowCapApplied(t *testing.T) {
	ts, _ := newTestServer(t, 3)

	var sb strings.Builder
	sb.WriteString("n\n")
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&sb, "%d\n", i)
	}

	body, contentType := multipartBody(t, "file", "big.csv", sb.String())
	_, parsed := doRequest(t, http.MethodPost, ts.URL+"/api/v1/files", body, contentType)

	var upload struct {
		FileId string `json:"file_id"`
	}
	if err := json.Unmarshal(parsed.Data, &upload); err != nil {
		t.Fatalf("failed to decode upload response: %v", err)
	}

	waitForStatus(t, ts, upload.FileId, "ready", 5*time.Second)

	_, contentResp := doRequest(t, http.MethodGet, ts.URL+"/api/v1/files/"+upload.FileId, nil, "")
	var content struct {
		ParseMeta struct {
			Rows int `json:"rows"`
		} `json:"parseMeta"`
		Data []map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(contentResp.Data, &content); err != nil {
		t.Fatalf("failed to decode content response: %v", err)
	}
	if content.ParseMeta.Rows != 3 || len(content.Data) != 3 {
		t.Errorf("expected 3 capped rows, got meta=%d data=%d", content.ParseMeta.Rows, len(content.Data))
	}
	if content.Data[0]["n"] != "0" {
		t.Errorf("cap must keep leading rows, got %v", content.Data[0])
	}
}

func TestDeleteRemovesRecordAndToleratesMissingBlob(t *testing.T) {
	ts, stor := newTestServer(t, 5000)

	body, contentType := multipartBody(t, "file", "data.csv", "a\n1\n")
	_, parsed := doRequest(t, http.MethodPost, ts.URL+"/api/v1/files", body, contentType)

	var upload struct {
		FileId string `json:"file_id"`
	}
	if err := json.Unmarshal(parsed.Data, &upload); err != nil {
		t.Fatalf("failed to decode upload response: %v", err)
	}
	waitForStatus(t, ts, upload.FileId, "ready", 5*time.Second)

	// Remove the blob behind the service's back; delete must still succeed
	rec, err := database.DB.GetFileRecordByFileID(upload.FileId)
	if err != nil {
		t.Fatalf("failed to load record: %v", err)
	}
	if err := stor.Delete(rec.StoragePath); err != nil {
		t.Fatalf("failed to remove blob: %v", err)
	}

	resp, delParsed := doRequest(t, http.MethodDelete, ts.URL+"/api/v1/files/"+upload.FileId, nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var del struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(delParsed.Data, &del); err != nil {
		t.Fatalf("failed to decode delete response: %v", err)
	}
	if !del.Success {
		t.Error("expected success=true")
	}

	// Record is gone afterwards
	resp, _ = doRequest(t, http.MethodGet, ts.URL+"/api/v1/files/"+upload.FileId, nil, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, 5000)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 from health endpoint, got %d", resp.StatusCode)
	}
}
