package exporter

import (
	"context"
	"testing"

	"github.com/xuri/excelize/v2"

	"salesboard/internal/model"
	"salesboard/internal/store"
)

func TestWriteAggregates(t *testing.T) {
	t.Parallel()

	rows := []model.AggregateRow{
		{GroupKey: model.GroupKey{Category: "TOP", Branch: "B1", Supplier: "S1", ArticleNo: "A1", Fabric: "Cotton"}, NetSlsQty: 5, Amount: 50, Cost: 20},
		{GroupKey: model.GroupKey{Category: "TOP", Supplier: "S2", ArticleNo: "A2", Concept: "Casual"}, NetSlsQty: 1, Amount: 10, Cost: 4},
	}

	f, err := WriteAggregates(rows)
	if err != nil {
		t.Fatalf("WriteAggregates: %v", err)
	}
	defer f.Close()

	got, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("want header + 2 rows + total, got %d rows", len(got))
	}
	if got[0][3] != "Article No" {
		t.Errorf("header = %v", got[0])
	}
	if got[1][4] != "Cotton" || got[1][5] != "N/A" {
		t.Errorf("row 1 fabric/concept = %q/%q, want Cotton/N/A", got[1][4], got[1][5])
	}
	if got[2][4] != "N/A" || got[2][5] != "Casual" {
		t.Errorf("row 2 fabric/concept = %q/%q, want N/A/Casual", got[2][4], got[2][5])
	}

	margin, err := f.GetCellValue(SheetName, "J2", excelize.Options{RawCellValue: true})
	if err != nil || margin != "30" {
		t.Errorf("J2 margin = %q (%v), want 30", margin, err)
	}
	total, err := f.GetCellValue(SheetName, "H4", excelize.Options{RawCellValue: true})
	if err != nil || total != "60" {
		t.Errorf("H4 total amount = %q (%v), want 60", total, err)
	}
	if got[3][0] != "Total" {
		t.Errorf("last row label = %q, want Total", got[3][0])
	}
}

func TestWriteAggregates_Empty(t *testing.T) {
	t.Parallel()

	f, err := WriteAggregates(nil)
	if err != nil {
		t.Fatalf("WriteAggregates: %v", err)
	}
	defer f.Close()

	got, _ := f.GetRows(SheetName)
	if len(got) != 2 {
		t.Fatalf("want header + total, got %d rows", len(got))
	}
}

func TestExporter_Export(t *testing.T) {
	t.Parallel()

	st := store.NewMemoryStore()
	ctx := context.Background()
	_, _ = st.InsertBatch(ctx, []*model.Record{
		{Category: "TOP", Supplier: "S1", Amount: 10},
		{Category: "DRESS", Supplier: "S2", Amount: 20},
	})

	var stages []Stage
	var written int
	f, err := NewExporter(st).Export(ctx,
		model.FilterSelection{}.Set(model.DimensionCategory, "DRESS"),
		model.CombineAll,
		func(stage Stage, rows int) {
			stages = append(stages, stage)
			written = rows
		},
	)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	defer f.Close()

	got, _ := f.GetRows(SheetName)
	if len(got) != 3 || got[1][0] != "DRESS" {
		t.Fatalf("rows = %v", got)
	}
	if len(stages) != 3 || stages[0] != StageQuery || stages[2] != StageDone {
		t.Errorf("stages = %v", stages)
	}
	if written != 1 {
		t.Errorf("rows reported = %d, want 1", written)
	}
}
