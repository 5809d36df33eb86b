package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"salesboard/internal/logger"
	"salesboard/internal/model"
	"salesboard/internal/query"
)

// salesRecordRow sales_records 表的 gorm 映射
type salesRecordRow struct {
	ID          int64   `gorm:"primaryKey;autoIncrement"`
	Category    string  `gorm:"not null;default:'';index:idx_sales_records_dims,priority:1"`
	Branch      string  `gorm:"not null;default:'';index:idx_sales_records_dims,priority:2"`
	Supplier    string  `gorm:"not null;default:'';index:idx_sales_records_dims,priority:3"`
	ArticleNo   string  `gorm:"not null;default:''"`
	Fabric      string  `gorm:"not null;default:'';index:idx_sales_records_dims,priority:4"`
	Concept     string  `gorm:"not null;default:'';index:idx_sales_records_dims,priority:5"`
	NetSlsQty   float64 `gorm:"not null;default:0"`
	Amount      float64 `gorm:"not null;default:0"`
	Cost        float64 `gorm:"not null;default:0"`
	OriginalRow datatypes.JSON
	CreatedAt   time.Time
}

func (salesRecordRow) TableName() string { return "sales_records" }

// aggregateScan 聚合查询结果
type aggregateScan struct {
	Category  string
	Branch    string
	Supplier  string
	ArticleNo string
	Fabric    string
	Concept   string
	NetSlsQty float64
	Amount    float64
	Cost      float64
}

// GormStore 基于 gorm 的存储（生产使用 Postgres）
type GormStore struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewPostgres 连接 Postgres 并迁移表结构
func NewPostgres(dsn string, logg *logger.Logger) (*GormStore, error) {
	s, err := NewGorm(postgres.Open(dsn), logg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	return s, nil
}

// NewGorm 用任意 gorm 方言打开存储并迁移表结构
func NewGorm(dialector gorm.Dialector, logg *logger.Logger) (*GormStore, error) {
	// gorm 的告警与慢查询走 zap，跟随配置的日志模式
	stdLog, err := zap.NewStdLogAt(logg.SugaredLogger.Desugar(), zap.WarnLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to bridge gorm logger: %w", err)
	}
	gormLog := gormLogger.New(
		stdLog,
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&salesRecordRow{}); err != nil {
		if sqlDB, derr := db.DB(); derr == nil {
			_ = sqlDB.Close()
		}
		return nil, fmt.Errorf("failed to migrate sales_records: %w", err)
	}

	return &GormStore{db: db, log: logg.With("service", "GormStore", "dialect", dialector.Name())}, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormStore) InsertBatch(ctx context.Context, records []*model.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	rows := make([]salesRecordRow, 0, len(records))
	for _, r := range records {
		original, err := json.Marshal(r.OriginalRow)
		if err != nil {
			return 0, opErr(OpInsertBatch, fmt.Errorf("encode original row: %w", err))
		}
		if r.OriginalRow == nil {
			original = []byte("{}")
		}
		rows = append(rows, salesRecordRow{
			Category:    r.Category,
			Branch:      r.Branch,
			Supplier:    r.Supplier,
			ArticleNo:   r.ArticleNo,
			Fabric:      r.Fabric,
			Concept:     r.Concept,
			NetSlsQty:   r.NetSlsQty,
			Amount:      r.Amount,
			Cost:        r.Cost,
			OriginalRow: datatypes.JSON(original),
		})
	}

	// CreateInBatches 在单个事务内完成
	if err := s.db.WithContext(ctx).CreateInBatches(&rows, len(rows)).Error; err != nil {
		return 0, opErr(OpInsertBatch, err)
	}
	return len(rows), nil
}

func (s *GormStore) Aggregate(ctx context.Context, sel model.FilterSelection, mode model.Combinator) ([]model.AggregateRow, error) {
	q := s.db.WithContext(ctx).
		Model(&salesRecordRow{}).
		Select(groupColumns + ", SUM(net_sls_qty) AS net_sls_qty, SUM(amount) AS amount, SUM(cost) AS cost")
	if where, args := query.CompileSQL(sel, mode, dimensionColumns); where != "" {
		q = q.Where(where, args...)
	}

	var scanned []aggregateScan
	if err := q.Group(groupColumns).Scan(&scanned).Error; err != nil {
		return nil, opErr(OpAggregate, err)
	}

	out := make([]model.AggregateRow, 0, len(scanned))
	for _, r := range scanned {
		out = append(out, model.AggregateRow{
			GroupKey: model.GroupKey{
				Category:  r.Category,
				Branch:    r.Branch,
				Supplier:  r.Supplier,
				ArticleNo: r.ArticleNo,
				Fabric:    r.Fabric,
				Concept:   r.Concept,
			},
			NetSlsQty: r.NetSlsQty,
			Amount:    r.Amount,
			Cost:      r.Cost,
		})
	}
	query.SortRows(out)
	return out, nil
}

func (s *GormStore) DistinctValues(ctx context.Context) (*model.FilterOptions, error) {
	opts := &model.FilterOptions{}
	for _, d := range model.Dimensions {
		col := dimensionColumns[d]
		var values []string
		err := s.db.WithContext(ctx).
			Model(&salesRecordRow{}).
			Distinct(col).
			Where(fmt.Sprintf("TRIM(%s) <> ''", col)).
			Pluck(col, &values).Error
		if err != nil {
			return nil, opErr(OpDistinct, fmt.Errorf("distinct %s: %w", col, err))
		}
		opts.Set(d, query.SortDistinct(values))
	}
	return opts, nil
}

func (s *GormStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&salesRecordRow{}).Count(&n).Error; err != nil {
		return 0, opErr(OpCount, err)
	}
	return n, nil
}

func (s *GormStore) DeleteAll(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&salesRecordRow{})
	if res.Error != nil {
		return 0, opErr(OpDeleteAll, res.Error)
	}
	s.log.Debug("deleted sales records", "count", res.RowsAffected)
	return res.RowsAffected, nil
}
