package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/imroc/req"
	"github.com/schollz/progressbar/v3"
	"github.com/tidwall/gjson"
)

// uploadctl uploads a file to the tabular file service, draws transfer
// progress locally and then polls the server until parsing finishes.

var (
	server   string
	filePath string
	pollMs   int
)

func init() {
	flag.StringVar(&server, "server", "http://localhost:7290", "File service base URL")
	flag.StringVar(&filePath, "file", "", "Path of the file to upload")
	flag.IntVar(&pollMs, "poll", 500, "Progress poll interval in milliseconds")
}

func main() {
	flag.Parse()
	if filePath == "" {
		log.Fatal("-file is required")
	}

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", filePath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		log.Fatalf("Failed to stat %s: %v", filePath, err)
	}

	uploadId := requestUploadID()

	bar := progressbar.NewOptions64(
		info.Size(),
		progressbar.OptionSetDescription("Uploading"),
		progressbar.OptionSetWidth(50),
		progressbar.OptionShowBytes(true),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
	)

	upload := req.FileUpload{
		File:      f,
		FieldName: "file",
		FileName:  filepath.Base(filePath),
	}
	progress := req.UploadProgress(func(current, total int64) {
		bar.Set64(current)
	})

	resp, err := req.Post(server+"/api/v1/files?uploadId="+uploadId, upload, progress)
	if err != nil {
		log.Fatalf("Upload failed: %v", err)
	}

	body, err := resp.ToString()
	if err != nil {
		log.Fatalf("Failed to read upload response: %v", err)
	}

	fileId := gjson.Get(body, "data.file_id").String()
	if fileId == "" {
		log.Fatalf("Upload rejected: %s", body)
	}

	bar.Finish()
	fmt.Printf("\nUploaded: fileId=%s uploadId=%s\n", fileId, gjson.Get(body, "data.uploadId").String())

	pollUntilDone(fileId)
}

// requestUploadID pre-registers an upload id so the server tracks progress
// from the first byte. Failure is not fatal, the server generates one.
func requestUploadID() string {
	resp, err := req.Post(server + "/api/v1/files/request-id")
	if err != nil {
		log.Printf("Failed to pre-register upload id (continuing without): %v", err)
		return ""
	}

	body, err := resp.ToString()
	if err != nil {
		return ""
	}
	return gjson.Get(body, "data.uploadId").String()
}

func pollUntilDone(fileId string) {
	for {
		resp, err := req.Get(fmt.Sprintf("%s/api/v1/files/%s/progress", server, fileId))
		if err != nil {
			log.Fatalf("Progress poll failed: %v", err)
		}

		body, err := resp.ToString()
		if err != nil {
			log.Fatalf("Failed to read progress response: %v", err)
		}

		status := gjson.Get(body, "data.status").String()
		progress := gjson.Get(body, "data.progress").Int()
		fmt.Printf("Status: %-10s progress: %d%%\n", status, progress)

		switch status {
		case "ready":
			fmt.Println("Parse completed")
			return
		case "failed":
			log.Fatal("Parse failed, check the file format and re-upload")
		}

		time.Sleep(time.Duration(pollMs) * time.Millisecond)
	}
}
