package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"salesboard/internal/config"
	"salesboard/internal/logger"
	"salesboard/internal/model"
	"salesboard/internal/store"
)

// FilterOptionsKey 筛选项缓存键
const FilterOptionsKey = "salesboard:filter-options"

// CachedStore 为 DistinctValues 加一层 Redis 缓存，其余操作直通
type CachedStore struct {
	store.Store
	rdb *goredis.Client
	ttl time.Duration
	log *logger.Logger
}

// Wrap 用已建立的 Redis 客户端包装存储
func Wrap(inner store.Store, rdb *goredis.Client, ttl time.Duration, log *logger.Logger) *CachedStore {
	return &CachedStore{
		Store: inner,
		rdb:   rdb,
		ttl:   ttl,
		log:   log.With("service", "CachedStore"),
	}
}

// Install 按配置安装缓存；未配置地址或 Redis 不可达时返回原存储
func Install(inner store.Store, cfg config.CacheConfig, log *logger.Logger) store.Store {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return inner
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		log.Warn("redis unavailable, filter options cache disabled", "addr", addr, "error", err)
		return inner
	}

	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	log.Info("filter options cache enabled", "addr", addr, "ttl", ttl)
	return Wrap(inner, rdb, ttl, log)
}

func (c *CachedStore) DistinctValues(ctx context.Context) (*model.FilterOptions, error) {
	raw, err := c.rdb.Get(ctx, FilterOptionsKey).Bytes()
	switch {
	case err == nil:
		var opts model.FilterOptions
		jerr := json.Unmarshal(raw, &opts)
		if jerr == nil {
			return &opts, nil
		}
		c.log.Warn("discarding malformed cached filter options", "error", jerr)
	case errors.Is(err, goredis.Nil):
	default:
		c.log.Warn("redis get failed", "key", FilterOptionsKey, "error", err)
	}

	opts, err := c.Store.DistinctValues(ctx)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(opts); err == nil {
		if err := c.rdb.Set(ctx, FilterOptionsKey, b, c.ttl).Err(); err != nil {
			c.log.Warn("redis set failed", "key", FilterOptionsKey, "error", err)
		}
	}
	return opts, nil
}

func (c *CachedStore) InsertBatch(ctx context.Context, records []*model.Record) (int, error) {
	n, err := c.Store.InsertBatch(ctx, records)
	c.invalidate(ctx)
	return n, err
}

func (c *CachedStore) DeleteAll(ctx context.Context) (int64, error) {
	n, err := c.Store.DeleteAll(ctx)
	c.invalidate(ctx)
	return n, err
}

func (c *CachedStore) Close() error {
	var errs []error
	if err := c.Store.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := c.rdb.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close redis: %w", err))
	}
	return errors.Join(errs...)
}

func (c *CachedStore) invalidate(ctx context.Context) {
	if err := c.rdb.Del(ctx, FilterOptionsKey).Err(); err != nil {
		c.log.Warn("redis del failed", "key", FilterOptionsKey, "error", err)
	}
}
