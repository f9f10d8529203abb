package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"
)

// BigCacheOptions 对应 bigcache.Config 中需要暴露的部分。零值字段沿用 bigcache 默认值。
type BigCacheOptions struct {
	LifeWindow       time.Duration
	CleanWindow      time.Duration
	Shards           int
	MaxEntrySize     int
	HardMaxCacheSize int // MB
}

// BigCache 使用 allegro/bigcache 实现 Cache。所有键共享同一个过期时间 LifeWindow。
type BigCache struct {
	cache *bigcache.BigCache
}

// NewBigCache 创建 BigCache。
func NewBigCache(ctx context.Context, opts BigCacheOptions) (*BigCache, error) {
	if opts.LifeWindow <= 0 {
		opts.LifeWindow = 10 * time.Minute
	}
	config := bigcache.DefaultConfig(opts.LifeWindow)
	if opts.CleanWindow > 0 {
		config.CleanWindow = opts.CleanWindow
	}
	if opts.Shards > 0 {
		config.Shards = opts.Shards
	}
	if opts.MaxEntrySize > 0 {
		config.MaxEntrySize = opts.MaxEntrySize
	}
	config.HardMaxCacheSize = opts.HardMaxCacheSize
	config.Verbose = false

	cache, err := bigcache.New(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("初始化 bigcache 失败: %w", err)
	}
	return &BigCache{cache: cache}, nil
}

// Get 未命中返回 ErrCacheMiss。
func (c *BigCache) Get(_ context.Context, key string) ([]byte, error) {
	data, err := c.cache.Get(key)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil, ErrCacheMiss
	}
	return data, err
}

// Set 写入键值，过期时间由 LifeWindow 决定。
func (c *BigCache) Set(_ context.Context, key string, value []byte) error {
	return c.cache.Set(key, value)
}

// Delete 删除一个或多个键，忽略不存在的键。
func (c *BigCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		if err := c.cache.Delete(key); err != nil && !errors.Is(err, bigcache.ErrEntryNotFound) {
			return err
		}
	}
	return nil
}

// Len 当前条目数。
func (c *BigCache) Len() int {
	return c.cache.Len()
}

// Close 释放后台清理协程。
func (c *BigCache) Close() error {
	return c.cache.Close()
}
