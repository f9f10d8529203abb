// Package cache 提供了渲染结果的本地缓存抽象，以及基于 singleflight 的回源合并。
package cache

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrCacheMiss 键不存在或已过期。
var ErrCacheMiss = errors.New("cache miss")

// DefaultLoadTimeout 回源函数的默认执行时限。
const DefaultLoadTimeout = 30 * time.Second

// Cache 定义字节缓存接口。
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// LoadFunc 缓存未命中时的回源函数。
type LoadFunc func(ctx context.Context) ([]byte, error)

// Loader 组合缓存与 singleflight：命中直接返回，未命中时同一个 key 并发只回源一次。
// cache 为 nil 时退化为单纯的请求合并。
//
// 回源在脱离调用方取消信号的上下文中执行，只受 Timeout 约束：
// 某个调用方超时只让它自己提前返回，不会让合并进来的其他调用方一起失败。
type Loader struct {
	cache Cache
	group singleflight.Group

	Timeout time.Duration
	OnHit   func()
	OnMiss  func()
}

// NewLoader 创建 Loader。
func NewLoader(c Cache) *Loader {
	return &Loader{cache: c, Timeout: DefaultLoadTimeout}
}

// Load 返回 key 对应的值，以及是否来自缓存。
// 写回缓存失败不影响本次结果。
func (l *Loader) Load(ctx context.Context, key string, fn LoadFunc) ([]byte, bool, error) {
	if l.cache != nil {
		if data, err := l.cache.Get(ctx, key); err == nil {
			if l.OnHit != nil {
				l.OnHit()
			}
			return data, true, nil
		}
	}
	if l.OnMiss != nil {
		l.OnMiss()
	}

	ch := l.group.DoChan(key, func() (any, error) {
		lctx := context.WithoutCancel(ctx)
		if l.Timeout > 0 {
			var cancel context.CancelFunc
			lctx, cancel = context.WithTimeout(lctx, l.Timeout)
			defer cancel()
		}
		data, err := fn(lctx)
		if err != nil {
			return nil, err
		}
		if l.cache != nil {
			_ = l.cache.Set(lctx, key, data)
		}
		return data, nil
	})
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		return res.Val.([]byte), false, nil
	}
}

// Close 关闭底层缓存。
func (l *Loader) Close() error {
	if l.cache == nil {
		return nil
	}
	return l.cache.Close()
}
