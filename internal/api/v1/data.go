package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"salesboard/internal/model"
	"salesboard/internal/query"
)

// aggregatedWith 按固定的组合方式返回聚合查询处理函数
// GET /api/data/aggregated[/any|/all]
func (h *Handler) aggregatedWith(mode model.Combinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		params := c.Request.URL.Query()
		sel := query.ParseSelection(params)

		rows, err := h.store.Aggregate(c.Request.Context(), sel, mode)
		if err != nil {
			h.fail(c, "Error fetching data", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    rows,
			"count":   len(rows),
			"filters": params,
			"mode":    mode,
		})
	}
}

// FilterOptions 各维度可选值
// GET /api/data/filter-options
func (h *Handler) FilterOptions(c *gin.Context) {
	opts, err := h.store.DistinctValues(c.Request.Context())
	if err != nil {
		h.fail(c, "Error fetching filter options", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"filterOptions": opts,
	})
}

// Count 记录总数
// GET /api/data/count
func (h *Handler) Count(c *gin.Context) {
	n, err := h.store.Count(c.Request.Context())
	if err != nil {
		h.fail(c, "Error fetching record count", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   n,
	})
}

// Clear 删除全部记录
// DELETE /api/data/clear
func (h *Handler) Clear(c *gin.Context) {
	n, err := h.store.DeleteAll(c.Request.Context())
	if err != nil {
		h.fail(c, "Error clearing data", err)
		return
	}
	h.log.Info("all records cleared", "deleted", n)
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      fmt.Sprintf("Deleted %d records", n),
		"deletedCount": n,
	})
}
