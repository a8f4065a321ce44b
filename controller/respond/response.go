package respond

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Response unified API response envelope
type Response struct {
	Code           int         `json:"code"`
	Message        string      `json:"message"`
	Data           interface{} `json:"data,omitempty"`
	ProcessingTime string      `json:"processing_time,omitempty"`
}

const startTimeKey = "respond_start_time"

// TimingMiddleware records the request start time so responses can report
// processing time.
func TimingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(startTimeKey, time.Now())
		c.Next()
	}
}

func processingTime(c *gin.Context) string {
	v, ok := c.Get(startTimeKey)
	if !ok {
		return ""
	}
	start, ok := v.(time.Time)
	if !ok {
		return ""
	}
	return time.Since(start).String()
}

// Success respond with 200 and data
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:           0,
		Message:        "success",
		Data:           data,
		ProcessingTime: processingTime(c),
	})
}

// InvalidParam respond with 400
func InvalidParam(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{
		Code:           http.StatusBadRequest,
		Message:        message,
		ProcessingTime: processingTime(c),
	})
}

// NotFound respond with 404
func NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, Response{
		Code:           http.StatusNotFound,
		Message:        message,
		ProcessingTime: processingTime(c),
	})
}

// ServerError respond with 500
func ServerError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, Response{
		Code:           http.StatusInternalServerError,
		Message:        message,
		ProcessingTime: processingTime(c),
	})
}
