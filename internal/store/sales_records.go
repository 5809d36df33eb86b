package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"salesboard/internal/model"
	"salesboard/internal/query"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore sales_records 的 SQLite 实现
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite 打开（不存在则创建）数据库文件并建表
func NewSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	// 单连接：批量写入与清空天然串行
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize sales_records in %s: %w", path, err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close 关闭数据库连接
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// InsertBatch 在一个事务内批量插入销售记录
func (s *SQLiteStore) InsertBatch(ctx context.Context, records []*model.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, opErr(OpInsertBatch, fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sales_records (
			category, branch, supplier, article_no, fabric, concept,
			net_sls_qty, amount, cost, original_row
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, opErr(OpInsertBatch, fmt.Errorf("failed to prepare statement: %w", err))
	}
	defer stmt.Close()

	for _, r := range records {
		original, err := encodeOriginalRow(r.OriginalRow)
		if err != nil {
			return 0, opErr(OpInsertBatch, err)
		}
		if _, err := stmt.ExecContext(ctx,
			r.Category, r.Branch, r.Supplier, r.ArticleNo, r.Fabric, r.Concept,
			r.NetSlsQty, r.Amount, r.Cost, original,
		); err != nil {
			return 0, opErr(OpInsertBatch, fmt.Errorf("failed to insert record: %w", err))
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, opErr(OpInsertBatch, fmt.Errorf("failed to commit transaction: %w", err))
	}

	return len(records), nil
}

// Aggregate 按筛选条件分组汇总
func (s *SQLiteStore) Aggregate(ctx context.Context, sel model.FilterSelection, mode model.Combinator) ([]model.AggregateRow, error) {
	q := "SELECT " + groupColumns + ", SUM(net_sls_qty), SUM(amount), SUM(cost) FROM sales_records"
	where, args := query.CompileSQL(sel, mode, dimensionColumns)
	if where != "" {
		q += " WHERE " + where
	}
	q += " GROUP BY " + groupColumns

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, opErr(OpAggregate, fmt.Errorf("failed to query: %w", err))
	}
	defer rows.Close()

	out := make([]model.AggregateRow, 0)
	for rows.Next() {
		var r model.AggregateRow
		if err := rows.Scan(
			&r.Category, &r.Branch, &r.Supplier, &r.ArticleNo, &r.Fabric, &r.Concept,
			&r.NetSlsQty, &r.Amount, &r.Cost,
		); err != nil {
			return nil, opErr(OpAggregate, fmt.Errorf("failed to scan row: %w", err))
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, opErr(OpAggregate, fmt.Errorf("rows error: %w", err))
	}

	query.SortRows(out)
	return out, nil
}

// DistinctValues 各维度去重后的非空取值
func (s *SQLiteStore) DistinctValues(ctx context.Context) (*model.FilterOptions, error) {
	opts := &model.FilterOptions{}
	for _, d := range model.Dimensions {
		col := dimensionColumns[d]
		rows, err := s.db.QueryContext(ctx,
			fmt.Sprintf("SELECT DISTINCT %s FROM sales_records WHERE TRIM(%s) <> ''", col, col))
		if err != nil {
			return nil, opErr(OpDistinct, fmt.Errorf("query distinct %s: %w", col, err))
		}

		var values []string
		for rows.Next() {
			var v string
			if err := rows.Scan(&v); err != nil {
				rows.Close()
				return nil, opErr(OpDistinct, fmt.Errorf("scan distinct %s: %w", col, err))
			}
			values = append(values, v)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, opErr(OpDistinct, fmt.Errorf("iterate distinct %s: %w", col, err))
		}

		opts.Set(d, query.SortDistinct(values))
	}
	return opts, nil
}

// Count 记录总数
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sales_records").Scan(&count); err != nil {
		return 0, opErr(OpCount, fmt.Errorf("failed to count: %w", err))
	}
	return count, nil
}

// DeleteAll 删除全部记录，返回删除条数
func (s *SQLiteStore) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM sales_records")
	if err != nil {
		return 0, opErr(OpDeleteAll, fmt.Errorf("failed to delete: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, opErr(OpDeleteAll, fmt.Errorf("failed to read affected rows: %w", err))
	}
	return n, nil
}

// OriginalRow 读取单条记录的原始行（排查用）
func (s *SQLiteStore) OriginalRow(ctx context.Context, id int64) (model.RawRow, error) {
	var raw string
	if err := s.db.QueryRowContext(ctx, "SELECT original_row FROM sales_records WHERE id = ?", id).Scan(&raw); err != nil {
		return nil, fmt.Errorf("failed to load original row: %w", err)
	}
	var row model.RawRow
	if err := json.Unmarshal([]byte(raw), &row); err != nil {
		return nil, fmt.Errorf("failed to decode original row: %w", err)
	}
	return row, nil
}

func encodeOriginalRow(row model.RawRow) ([]byte, error) {
	if row == nil {
		return []byte("{}"), nil
	}
	b, err := json.Marshal(row)
	if err != nil {
		return nil, fmt.Errorf("encode original row: %w", err)
	}
	return b, nil
}
