package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"salesboard/internal/importer"
	"salesboard/internal/parser"
)

// UploadResponse 导入结果
type UploadResponse struct {
	Success           bool              `json:"success"`
	Message           string            `json:"message"`
	RecordCount       int               `json:"recordCount"`
	OriginalRowCount  int               `json:"originalRowCount"`
	ProcessedRowCount int               `json:"processedRowCount"`
	DeletedCount      int64             `json:"deletedCount"`
	ImportID          string            `json:"importId"`
	Mappings          map[string]string `json:"mappings"`
	UnmappedFields    []string          `json:"unmappedFields"`
}

// Upload 上传并导入文件（替换全部已有数据）
// POST /api/upload
func (h *Handler) Upload(c *gin.Context) {
	path, filename, ok := h.saveUpload(c)
	if !ok {
		return
	}
	defer os.Remove(path)

	result, err := h.coordinator.Run(c.Request.Context(), importer.ImportOptions{
		FilePath:         path,
		OriginalFilename: filename,
	}, nil)
	if err != nil {
		h.fail(c, "Error processing Excel file", err)
		return
	}

	c.JSON(http.StatusOK, UploadResponse{
		Success:           true,
		Message:           fmt.Sprintf("Successfully imported %d records", result.InsertedCount),
		RecordCount:       result.InsertedCount,
		OriginalRowCount:  result.TotalRows,
		ProcessedRowCount: result.ValidRows,
		DeletedCount:      result.DeletedCount,
		ImportID:          result.ImportID,
		Mappings:          result.Mappings,
		UnmappedFields:    result.UnmappedFields,
	})
}

// UploadStream 上传并导入文件 (SSE 流式响应)
// POST /api/upload/stream
func (h *Handler) UploadStream(c *gin.Context) {
	path, filename, ok := h.saveUpload(c)
	if !ok {
		return
	}

	// 清理临时文件
	defer os.Remove(path)

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "不支持流式响应"})
		return
	}

	// 设置 SSE 响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	progressChan := h.coordinator.Import(c.Request.Context(), importer.ImportOptions{
		FilePath:         path,
		OriginalFilename: filename,
	})

	// 流式发送进度事件
	for event := range progressChan {
		eventData, err := json.Marshal(event)
		if err != nil {
			continue
		}

		// SSE 格式: data: {json}\n\n
		fmt.Fprintf(c.Writer, "data: %s\n\n", eventData)
		flusher.Flush()
	}
}

// saveUpload 将 multipart 的 file 字段保存到上传目录，返回临时路径与原始文件名
//
// 返回 ok=false 时已写出错误响应。
func (h *Handler) saveUpload(c *gin.Context) (string, string, bool) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(c, "File too large", err)
			return "", "", false
		}
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "No file uploaded"})
		return "", "", false
	}

	filename := filepath.Base(fileHeader.Filename)
	if !parser.IsSupported(filename) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Only Excel (.xlsx) or CSV files are allowed",
			"error":   fmt.Sprintf("unsupported file %q", filename),
		})
		return "", "", false
	}

	dir := h.uploadDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		h.fail(c, "Failed to prepare upload directory", err)
		return "", "", false
	}

	path := filepath.Join(dir, uuid.NewString()+strings.ToLower(filepath.Ext(filename)))
	if err := c.SaveUploadedFile(fileHeader, path); err != nil {
		_ = os.Remove(path)
		h.fail(c, "Failed to save uploaded file", err)
		return "", "", false
	}
	return path, filename, true
}
