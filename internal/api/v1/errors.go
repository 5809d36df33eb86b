package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"salesboard/internal/parser"
	"salesboard/internal/store"
)

// fail 按错误类型输出失败响应：格式错误 400，存储错误 500 并带上失败的操作名
func (h *Handler) fail(c *gin.Context, message string, err error) {
	status := http.StatusInternalServerError
	body := gin.H{
		"success": false,
		"message": message,
		"error":   err.Error(),
	}

	var fe *parser.FormatError
	var oe *store.OpError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &fe):
		status = http.StatusBadRequest
	case errors.As(err, &tooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.As(err, &oe):
		body["operation"] = oe.Op
	}

	if status >= http.StatusInternalServerError {
		h.log.Error(message, "path", c.FullPath(), "error", err)
	} else {
		h.log.Warn(message, "path", c.FullPath(), "error", err)
	}
	c.JSON(status, body)
}
