// Package docs holds the committed OpenAPI document registered with swag.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/files": {
            "get": {
                "produces": ["application/json"],
                "tags": ["files"],
                "summary": "List files",
                "description": "Lists all file records without their parsed content, newest first",
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["files"],
                "summary": "Upload file",
                "description": "Streams a multipart file upload. Only the first file part is honored. Returns as soon as the bytes are stored; parsing continues in the background.",
                "parameters": [
                    {"type": "string", "name": "uploadId", "in": "query", "description": "Pre-allocated upload identifier"},
                    {"type": "string", "name": "x-upload-id", "in": "header", "description": "Pre-allocated upload identifier (alternative to query)"},
                    {"type": "file", "name": "file", "in": "formData", "required": true, "description": "File to upload"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request"},
                    "500": {"description": "Internal Server Error"}
                }
            }
        },
        "/files/request-id": {
            "post": {
                "produces": ["application/json"],
                "tags": ["files"],
                "summary": "Request upload ID",
                "description": "Pre-allocates an upload identifier so progress is observable before any bytes arrive",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/files/{fileId}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["files"],
                "summary": "Get parsed file content",
                "description": "Returns parsed rows and metadata once the record is ready. Before that a not-ready message is returned.",
                "parameters": [
                    {"type": "string", "name": "fileId", "in": "path", "required": true, "description": "File ID"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["files"],
                "summary": "Delete file",
                "description": "Removes the record and its blob. A blob already missing from storage is tolerated.",
                "parameters": [
                    {"type": "string", "name": "fileId", "in": "path", "required": true, "description": "File ID"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/files/{fileId}/progress": {
            "get": {
                "produces": ["application/json"],
                "tags": ["files"],
                "summary": "Get file progress",
                "description": "Returns the current lifecycle state and progress percentage of a file record",
                "parameters": [
                    {"type": "string", "name": "fileId", "in": "path", "required": true, "description": "File ID"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:7290",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "Tabular File Service API",
	Description:      "Streaming file upload with asynchronous tabular parsing",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
