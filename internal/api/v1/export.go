package v1

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"salesboard/internal/exporter"
	"salesboard/internal/query"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Export 按当前筛选条件导出聚合结果
// GET /api/data/export
func (h *Handler) Export(c *gin.Context) {
	sel := query.ParseSelection(c.Request.URL.Query())

	started := time.Now()
	file, err := h.exporter.Export(c.Request.Context(), sel, h.combinator, func(stage exporter.Stage, rows int) {
		h.log.Debug("export progress", "stage", stage, "rows", rows, "elapsed", time.Since(started))
	})
	if err != nil {
		h.fail(c, "Error exporting data", err)
		return
	}
	defer file.Close()

	buf, err := file.WriteToBuffer()
	if err != nil {
		h.fail(c, "Error writing export file", err)
		return
	}

	filename := fmt.Sprintf("aggregated_sales_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
