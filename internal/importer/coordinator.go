package importer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"salesboard/internal/logger"
	"salesboard/internal/model"
	"salesboard/internal/parser"
	"salesboard/internal/store"
	"salesboard/internal/tracing"
)

// 进度事件类型
const (
	EventStart = "start"
	EventInfo  = "info"
	EventBatch = "batch"
	EventDone  = "done"
	EventError = "error"
)

// DefaultBatchSize 默认每批写入条数
const DefaultBatchSize = 1000

// Coordinator 导入协调器
type Coordinator struct {
	store     store.Store
	aliases   parser.AliasTable
	batchSize int
	log       *logger.Logger
}

// NewCoordinator 创建导入协调器
func NewCoordinator(st store.Store, batchSize int, log *logger.Logger) *Coordinator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Coordinator{
		store:     st,
		aliases:   parser.DefaultAliases,
		batchSize: batchSize,
		log:       log.With("service", "ImportCoordinator"),
	}
}

// ImportOptions 导入选项
type ImportOptions struct {
	FilePath         string
	OriginalFilename string // 上传时的文件名，为空时取 FilePath 的文件名
}

func (o ImportOptions) filename() string {
	if o.OriginalFilename != "" {
		return o.OriginalFilename
	}
	return filepath.Base(o.FilePath)
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"`      // start/info/batch/done/error
	Message   string      `json:"message"`   // 事件消息
	Data      interface{} `json:"data"`      // 附加数据
	Timestamp time.Time   `json:"timestamp"` // 时间戳
}

// Import 异步执行导入，返回进度通道；done 事件的 Data 为 *model.ImportResult
func (c *Coordinator) Import(ctx context.Context, opts ImportOptions) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)

		send := func(evt ProgressEvent) {
			select {
			case progressChan <- evt:
			case <-ctx.Done():
			}
		}

		result, err := c.Run(ctx, opts, send)
		if err != nil {
			send(errorEvent(err))
			return
		}
		send(ProgressEvent{
			Type:      EventDone,
			Message:   fmt.Sprintf("导入完成，共写入 %d 条记录", result.InsertedCount),
			Data:      result,
			Timestamp: time.Now(),
		})
	}()

	return progressChan
}

// Run 同步执行导入：解析 → 映射列 → 组装记录 → 清空 → 分批写入
//
// 解析阶段的任何错误都发生在清空之前，原有数据保持不变。
// 清空之后的写入失败不回滚，已提交的批次保留。
func (c *Coordinator) Run(ctx context.Context, opts ImportOptions, progress func(ProgressEvent)) (*model.ImportResult, error) {
	if progress == nil {
		progress = func(ProgressEvent) {}
	}
	startTime := time.Now()
	importID := uuid.NewString()
	log := c.log.With("import_id", importID)

	ctx, span := tracing.Tracer("importer").Start(ctx, "import.run", trace.WithAttributes(
		attribute.String("import.id", importID),
		attribute.String("import.file", opts.filename()),
	))
	defer span.End()
	fail := func(err error) (*model.ImportResult, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	result := &model.ImportResult{
		ImportID: importID,
		Filename: opts.filename(),
	}

	log.Info("import started", "file", result.Filename)
	progress(ProgressEvent{
		Type:    EventStart,
		Message: "开始导入文件",
		Data: map[string]string{
			"filename":  result.Filename,
			"import_id": importID,
		},
		Timestamp: time.Now(),
	})

	table, err := parser.ReadTable(opts.FilePath)
	if err != nil {
		log.Warn("import source rejected", "error", err)
		return fail(err)
	}
	result.SheetName = table.SheetName
	result.TotalRows = len(table.Rows)

	cols := parser.ResolveColumns(table.Headers, c.aliases)
	result.Mappings = cols.Strings()
	result.UnmappedFields = parser.UnmappedFields(cols, c.aliases)
	log.Debug("columns resolved", "mappings", result.Mappings, "unmapped", result.UnmappedFields)

	progress(ProgressEvent{
		Type:    EventInfo,
		Message: fmt.Sprintf("读取到 %d 行数据，识别 %d 个字段", result.TotalRows, len(result.Mappings)),
		Data: map[string]interface{}{
			"sheet_name":      table.SheetName,
			"total_rows":      result.TotalRows,
			"mappings":        result.Mappings,
			"unmapped_fields": result.UnmappedFields,
		},
		Timestamp: time.Now(),
	})

	records := parser.AssembleRows(table, cols)
	result.ValidRows = len(records)

	deleted, err := c.store.DeleteAll(ctx)
	if err != nil {
		log.Error("clear existing records failed", "error", err)
		return fail(err)
	}
	result.DeletedCount = deleted

	progress(ProgressEvent{
		Type:    EventInfo,
		Message: fmt.Sprintf("已清空 %d 条旧记录，有效行 %d", deleted, result.ValidRows),
		Data: map[string]interface{}{
			"deleted_count": deleted,
			"valid_rows":    result.ValidRows,
		},
		Timestamp: time.Now(),
	})

	for start := 0; start < len(records); start += c.batchSize {
		end := start + c.batchSize
		if end > len(records) {
			end = len(records)
		}

		n, err := c.store.InsertBatch(ctx, records[start:end])
		if err != nil {
			log.Error("insert batch failed", "offset", start, "inserted_so_far", result.InsertedCount, "error", err)
			return fail(err)
		}
		result.InsertedCount += n

		progress(ProgressEvent{
			Type:    EventBatch,
			Message: fmt.Sprintf("已写入 %d/%d", result.InsertedCount, result.ValidRows),
			Data: map[string]int{
				"inserted": result.InsertedCount,
				"total":    result.ValidRows,
			},
			Timestamp: time.Now(),
		})
	}

	result.Duration = time.Since(startTime)
	span.SetAttributes(
		attribute.Int("import.total_rows", result.TotalRows),
		attribute.Int("import.valid_rows", result.ValidRows),
		attribute.Int("import.inserted", result.InsertedCount),
		attribute.Int64("import.deleted", result.DeletedCount),
	)
	log.Info("import finished",
		"total_rows", result.TotalRows,
		"valid_rows", result.ValidRows,
		"inserted", result.InsertedCount,
		"deleted", result.DeletedCount,
		"duration", result.Duration,
	)
	return result, nil
}

func errorEvent(err error) ProgressEvent {
	data := map[string]string{"error": err.Error()}
	msg := fmt.Sprintf("导入失败: %v", err)

	var fe *parser.FormatError
	var oe *store.OpError
	switch {
	case errors.As(err, &fe):
		data["kind"] = "format"
	case errors.As(err, &oe):
		data["kind"] = "store"
		data["operation"] = oe.Op
	}

	return ProgressEvent{
		Type:      EventError,
		Message:   msg,
		Data:      data,
		Timestamp: time.Now(),
	}
}
