package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"salesboard/internal/logger"
	"salesboard/internal/model"
	"salesboard/internal/parser"
	"salesboard/internal/store"
)

func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row %d: %v", i+1, err)
		}
	}

	path := filepath.Join(t.TempDir(), "sales.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

// failingStore 在指定操作上返回错误
type failingStore struct {
	store.Store
	failOn string
}

func (s *failingStore) DeleteAll(ctx context.Context) (int64, error) {
	if s.failOn == store.OpDeleteAll {
		return 0, &store.OpError{Op: store.OpDeleteAll, Err: errors.New("disk full")}
	}
	return s.Store.DeleteAll(ctx)
}

func (s *failingStore) InsertBatch(ctx context.Context, records []*model.Record) (int, error) {
	if s.failOn == store.OpInsertBatch {
		return 0, &store.OpError{Op: store.OpInsertBatch, Err: errors.New("constraint violation")}
	}
	return s.Store.InsertBatch(ctx, records)
}

func TestRun_TwoRowScenario(t *testing.T) {
	t.Parallel()

	path := writeWorkbook(t, [][]interface{}{
		{"Category", "Supplier", "ArticleNo", "Fabric", "NetSlsQty", "Amount"},
		{"TOP", "S1", "A1", "Cotton", 2, 20},
		{"TOP", "S1", "A1", "Cotton", 3, 30},
	})

	st := store.NewMemoryStore()
	c := NewCoordinator(st, 0, logger.Nop())
	ctx := context.Background()

	result, err := c.Run(ctx, ImportOptions{FilePath: path, OriginalFilename: "march.xlsx"}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.InsertedCount != 2 || result.TotalRows != 2 || result.ValidRows != 2 {
		t.Fatalf("counts = %+v, want 2/2/2", result)
	}
	if result.Filename != "march.xlsx" {
		t.Errorf("Filename = %q, want march.xlsx", result.Filename)
	}
	if result.ImportID == "" {
		t.Error("ImportID should be set")
	}
	if result.Mappings[string(parser.FieldArticleNo)] != "ArticleNo" {
		t.Errorf("mappings = %v", result.Mappings)
	}

	rows, err := st.Aggregate(ctx, model.FilterSelection{}, model.CombineAll)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("want 1 aggregate row, got %d", len(rows))
	}
	if rows[0].NetSlsQty != 5 || rows[0].Amount != 50 {
		t.Errorf("sums = (%v, %v), want (5, 50)", rows[0].NetSlsQty, rows[0].Amount)
	}
}

func TestRun_ReplacesExistingAndDropsEmptyRows(t *testing.T) {
	t.Parallel()

	st := store.NewMemoryStore()
	ctx := context.Background()
	if _, err := st.InsertBatch(ctx, []*model.Record{{Category: "OLD"}, {Category: "OLD"}, {Category: "OLD"}}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	path := writeWorkbook(t, [][]interface{}{
		{"Category", "Branch", "Amount"},
		{"TOP", "B1", 10},
		{"", "", 99}, // 无标识字段，丢弃
		{"DRESS", "", "abc"},
	})

	result, err := NewCoordinator(st, 1, logger.Nop()).Run(ctx, ImportOptions{FilePath: path}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.DeletedCount != 3 {
		t.Errorf("DeletedCount = %d, want 3", result.DeletedCount)
	}
	if result.TotalRows != 3 || result.ValidRows != 2 || result.InsertedCount != 2 {
		t.Errorf("counts total=%d valid=%d inserted=%d, want 3/2/2", result.TotalRows, result.ValidRows, result.InsertedCount)
	}

	opts, _ := st.DistinctValues(ctx)
	if fmt.Sprint(opts.Categories) != "[DRESS TOP]" {
		t.Errorf("categories = %v, want [DRESS TOP]", opts.Categories)
	}
	if len(result.UnmappedFields) == 0 {
		t.Error("unmapped fields should list supplier etc.")
	}
}

func TestRun_FormatErrorLeavesStoreUntouched(t *testing.T) {
	t.Parallel()

	st := store.NewMemoryStore()
	ctx := context.Background()
	if _, err := st.InsertBatch(ctx, []*model.Record{{Category: "KEEP"}}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	headerOnly := writeWorkbook(t, [][]interface{}{{"Category", "Branch"}})
	unsupported := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(unsupported, []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	c := NewCoordinator(st, 10, logger.Nop())
	for _, p := range []string{headerOnly, unsupported, filepath.Join(t.TempDir(), "missing.xlsx")} {
		_, err := c.Run(ctx, ImportOptions{FilePath: p}, nil)
		var fe *parser.FormatError
		if !errors.As(err, &fe) {
			t.Fatalf("Run(%s) error = %v, want *parser.FormatError", filepath.Base(p), err)
		}
	}

	if n, _ := st.Count(ctx); n != 1 {
		t.Errorf("store count = %d, want 1 (untouched)", n)
	}
}

func TestRun_StoreFailureNamesOperation(t *testing.T) {
	t.Parallel()

	path := writeWorkbook(t, [][]interface{}{
		{"Category"},
		{"TOP"},
	})

	for _, op := range []string{store.OpDeleteAll, store.OpInsertBatch} {
		st := &failingStore{Store: store.NewMemoryStore(), failOn: op}
		_, err := NewCoordinator(st, 10, logger.Nop()).Run(context.Background(), ImportOptions{FilePath: path}, nil)

		var oe *store.OpError
		if !errors.As(err, &oe) {
			t.Fatalf("failOn=%s: error = %v, want *store.OpError", op, err)
		}
		if oe.Op != op {
			t.Errorf("Op = %q, want %q", oe.Op, op)
		}
	}
}

func TestImport_EventStream(t *testing.T) {
	t.Parallel()

	path := writeWorkbook(t, [][]interface{}{
		{"Category", "Amount"},
		{"A", 1},
		{"B", 2},
		{"C", 3},
	})

	c := NewCoordinator(store.NewMemoryStore(), 2, logger.Nop())
	var types []string
	var done *model.ImportResult
	for evt := range c.Import(context.Background(), ImportOptions{FilePath: path}) {
		types = append(types, evt.Type)
		if evt.Type == EventDone {
			done, _ = evt.Data.(*model.ImportResult)
		}
		if evt.Type == EventError {
			t.Fatalf("unexpected error event: %s", evt.Message)
		}
	}

	want := []string{EventStart, EventInfo, EventInfo, EventBatch, EventBatch, EventDone}
	if fmt.Sprint(types) != fmt.Sprint(want) {
		t.Fatalf("events = %v, want %v", types, want)
	}
	if done == nil || done.InsertedCount != 3 {
		t.Fatalf("done payload = %+v", done)
	}
}

func TestImport_ErrorEvent(t *testing.T) {
	t.Parallel()

	st := &failingStore{Store: store.NewMemoryStore(), failOn: store.OpInsertBatch}
	path := writeWorkbook(t, [][]interface{}{{"Category"}, {"TOP"}})

	var last ProgressEvent
	for evt := range NewCoordinator(st, 10, logger.Nop()).Import(context.Background(), ImportOptions{FilePath: path}) {
		last = evt
	}
	if last.Type != EventError {
		t.Fatalf("last event = %s, want error", last.Type)
	}
	data, ok := last.Data.(map[string]string)
	if !ok {
		t.Fatalf("error data type %T", last.Data)
	}
	if data["operation"] != store.OpInsertBatch || data["kind"] != "store" {
		t.Errorf("error data = %v", data)
	}
}
