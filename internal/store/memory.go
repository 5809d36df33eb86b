package store

import (
	"context"
	"sync"

	"salesboard/internal/model"
	"salesboard/internal/query"
)

// MemoryStore 内存数据存储
type MemoryStore struct {
	records []*model.Record
	nextID  int64
	mu      sync.RWMutex
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

// InsertBatch 追加一批记录（按值复制，调用方后续修改不影响已存数据）
func (s *MemoryStore) InsertBatch(_ context.Context, records []*model.Record) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		c := *r
		c.ID = s.nextID
		s.nextID++
		s.records = append(s.records, &c)
	}
	return len(records), nil
}

// Aggregate 分组汇总
func (s *MemoryStore) Aggregate(_ context.Context, sel model.FilterSelection, mode model.Combinator) ([]model.AggregateRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return query.Aggregate(s.records, query.Compile(sel, mode)), nil
}

// DistinctValues 各维度去重取值
func (s *MemoryStore) DistinctValues(_ context.Context) (*model.FilterOptions, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return query.DistinctValues(s.records), nil
}

// Count 记录总数
func (s *MemoryStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.records)), nil
}

// DeleteAll 清空全部记录
func (s *MemoryStore) DeleteAll(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := int64(len(s.records))
	s.records = nil
	return n, nil
}

func (s *MemoryStore) Close() error { return nil }
