package exporter

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"salesboard/internal/model"
	"salesboard/internal/store"
)

// SheetName 导出工作表名
const SheetName = "Aggregated Sales"

// 空维度在导出中的占位
const notApplicable = "N/A"

var headers = []interface{}{
	"Category", "Branch", "Supplier", "Article No", "Fabric", "Concept",
	"Net Sls Qty", "Amount", "Cost", "Margin",
}

// Stage 导出阶段
type Stage string

const (
	StageQuery Stage = "query"
	StageWrite Stage = "write"
	StageDone  Stage = "done"
)

// ProgressFunc 导出进度回调，rows 为已查询到的聚合行数
type ProgressFunc func(stage Stage, rows int)

// Exporter 聚合结果导出器
type Exporter struct {
	store store.Store
}

// NewExporter 创建导出器
func NewExporter(st store.Store) *Exporter {
	return &Exporter{store: st}
}

// Export 按筛选条件查询聚合结果并生成工作簿，progress 可为 nil
func (e *Exporter) Export(ctx context.Context, sel model.FilterSelection, mode model.Combinator, progress ProgressFunc) (*excelize.File, error) {
	if progress == nil {
		progress = func(Stage, int) {}
	}

	progress(StageQuery, 0)
	rows, err := e.store.Aggregate(ctx, sel, mode)
	if err != nil {
		return nil, err
	}
	progress(StageWrite, len(rows))
	f, err := WriteAggregates(rows)
	if err != nil {
		return nil, err
	}
	progress(StageDone, len(rows))
	return f, nil
}

// WriteAggregates 将聚合行写入新工作簿：表头、数据行、合计行
func WriteAggregates(rows []model.AggregateRow) (*excelize.File, error) {
	f := excelize.NewFile()

	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, SheetName); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rename sheet failed: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &headers); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write header failed: %w", err)
	}

	var total model.AggregateRow
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []interface{}{
			r.Category,
			r.Branch,
			r.Supplier,
			r.ArticleNo,
			orNA(r.Fabric),
			orNA(r.Concept),
			r.NetSlsQty,
			r.Amount,
			r.Cost,
			r.Amount - r.Cost,
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("write row %d failed: %w", i+2, err)
		}
		total.NetSlsQty += r.NetSlsQty
		total.Amount += r.Amount
		total.Cost += r.Cost
	}

	totalRow := len(rows) + 2
	cell, _ := excelize.CoordinatesToCellName(1, totalRow)
	totals := []interface{}{"Total", "", "", "", "", "", total.NetSlsQty, total.Amount, total.Cost, total.Amount - total.Cost}
	if err := f.SetSheetRow(SheetName, cell, &totals); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write total row failed: %w", err)
	}

	if err := applyLayout(f, totalRow); err != nil {
		_ = f.Close()
		return nil, err
	}

	f.SetActiveSheet(0)
	return f, nil
}

func applyLayout(f *excelize.File, totalRow int) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style failed: %w", err)
	}
	if err := f.SetRowStyle(SheetName, 1, 1, bold); err != nil {
		return fmt.Errorf("style header failed: %w", err)
	}
	if err := f.SetRowStyle(SheetName, totalRow, totalRow, bold); err != nil {
		return fmt.Errorf("style total row failed: %w", err)
	}

	number, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return fmt.Errorf("create number style failed: %w", err)
	}
	if totalRow > 2 {
		if err := f.SetCellStyle(SheetName, "G2", fmt.Sprintf("J%d", totalRow-1), number); err != nil {
			return fmt.Errorf("style numbers failed: %w", err)
		}
	}

	if err := f.SetColWidth(SheetName, "A", "F", 18); err != nil {
		return fmt.Errorf("set width failed: %w", err)
	}
	if err := f.SetColWidth(SheetName, "G", "J", 14); err != nil {
		return fmt.Errorf("set width failed: %w", err)
	}
	return f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func orNA(v string) string {
	if strings.TrimSpace(v) == "" {
		return notApplicable
	}
	return v
}
