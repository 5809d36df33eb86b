package store

import (
	"context"
	"fmt"
	"path/filepath"

	"salesboard/internal/config"
	"salesboard/internal/logger"
	"salesboard/internal/model"
)

// 存储操作名，用于错误定位
const (
	OpInsertBatch = "insert_batch"
	OpAggregate   = "aggregate"
	OpDistinct    = "distinct"
	OpCount       = "count"
	OpDeleteAll   = "delete_all"
)

// Store 销售记录存储
//
// 导入流程只依赖这组能力：批量写入、分组聚合、去重取值、计数、全部删除。
// 调用方的操作顺序即唯一的串行化手段，不提供跨操作的事务。
type Store interface {
	InsertBatch(ctx context.Context, records []*model.Record) (int, error)
	Aggregate(ctx context.Context, sel model.FilterSelection, mode model.Combinator) ([]model.AggregateRow, error)
	DistinctValues(ctx context.Context) (*model.FilterOptions, error)
	Count(ctx context.Context) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
	Close() error
}

// OpError 存储操作失败
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

func opErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Err: err}
}

// dimensionColumns 维度到列名的映射（同时作为列名白名单）
var dimensionColumns = map[model.Dimension]string{
	model.DimensionCategory: "category",
	model.DimensionBranch:   "branch",
	model.DimensionSupplier: "supplier",
	model.DimensionFabric:   "fabric",
	model.DimensionConcept:  "concept",
}

const groupColumns = "category, branch, supplier, article_no, fabric, concept"

// Open 根据配置打开存储
func Open(cfg *config.AppConfig, log *logger.Logger) (Store, error) {
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		dsn := cfg.Store.DSN
		if !filepath.IsAbs(dsn) {
			dsn = filepath.Join(config.ResolveDataDir(cfg), dsn)
		}
		log.Info("opening sqlite store", "path", dsn)
		s, err := NewSQLite(dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverPostgres:
		log.Info("opening postgres store")
		s, err := NewPostgres(cfg.Store.DSN, log)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverMemory:
		log.Warn("using in-memory store, data is lost on restart")
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
