package utils

import (
	"errors"
	"net/http"

	"github.com/Ayash-Bera/aidline/internal/models"
	"github.com/gin-gonic/gin"
)

type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Category  string      `json:"category,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

func SuccessResponse(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		RequestID: c.GetString(RequestIDKey),
	})
}

func ErrorResponse(c *gin.Context, code int, message string, err error) {
	response := APIResponse{
		Success:   false,
		Message:   message,
		RequestID: c.GetString(RequestIDKey),
	}

	if err != nil {
		response.Error = err.Error()
	}

	c.JSON(code, response)
}

// AppErrorResponse writes an AppError with its status code and category. Other
// errors become 500s.
func AppErrorResponse(c *gin.Context, err error) {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		appErr = models.NewInternalError("Internal server error", err)
	}

	response := APIResponse{
		Success:   false,
		Message:   appErr.Message,
		Category:  string(appErr.Category),
		RequestID: c.GetString(RequestIDKey),
	}
	if appErr.Err != nil && appErr.StatusCode < http.StatusInternalServerError {
		response.Error = appErr.Err.Error()
	}
	c.JSON(appErr.StatusCode, response)
}
