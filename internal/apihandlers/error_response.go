package apihandlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Stable error codes surfaced to API clients.
const (
	CodeBadRequest         = "BAD_REQUEST"
	CodeNotFound           = "NOT_FOUND"
	CodeInternal           = "INTERNAL_ERROR"
	CodeLLMError           = "LLM_API_ERROR"
	CodeLLMNotConfigured   = "LLM_NOT_CONFIGURED"
	CodeSyncAlreadyRunning = "SYNC_ALREADY_RUNNING"
	CodeSyncNotRunning     = "SYNC_NOT_RUNNING"
)

type errorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// JSONError sends the standard error envelope:
// {"status": "error", "code": "...", "message": "..."}
func JSONError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, errorResponse{Status: "error", Code: code, Message: msg})
}

// JSONErrorData is JSONError with an attached data payload, e.g. the live
// sync job on a conflict.
func JSONErrorData(c *gin.Context, status int, code, msg string, data any) {
	c.JSON(status, errorResponse{Status: "error", Code: code, Message: msg, Data: data})
}

// JSONData sends the standard success envelope:
// {"status": "success", "data": ...}
func JSONData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"status": "success", "data": data})
}

func BadRequest(c *gin.Context, msg string) {
	JSONError(c, http.StatusBadRequest, CodeBadRequest, msg)
}

func NotFound(c *gin.Context, msg string) {
	JSONError(c, http.StatusNotFound, CodeNotFound, msg)
}

func Internal(c *gin.Context, msg string) {
	JSONError(c, http.StatusInternalServerError, CodeInternal, msg)
}
