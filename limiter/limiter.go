// Package limiter 提供了基于令牌桶的本地限流器。
package limiter

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter 接口定义了限流器的通用行为。
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error) // 检查是否允许请求通过。
}

// LocalLimiter 是一个基于令牌桶算法的本地限流器，对整个实例全局生效，忽略 key。
type LocalLimiter struct {
	limiter *rate.Limiter
}

// NewLocalLimiter 创建并返回一个新的 LocalLimiter 实例。
// r: 每秒生成的令牌数；b: 令牌桶容量，即允许的瞬时突发请求数。
func NewLocalLimiter(r rate.Limit, b int) *LocalLimiter {
	return &LocalLimiter{
		limiter: rate.NewLimiter(r, b),
	}
}

// Allow 尝试从令牌桶中获取一个令牌。
func (l *LocalLimiter) Allow(_ context.Context, _ string) (bool, error) {
	return l.limiter.Allow(), nil
}

// KeyedLimiter 为每个 key（通常是客户端 IP）维护独立的令牌桶。
// 超过 idleTTL 未访问的桶在下一次清理时被移除。
type KeyedLimiter struct {
	mu      sync.Mutex
	r       rate.Limit
	b       int
	idleTTL time.Duration
	buckets map[string]*bucket
	lastGC  time.Time
	now     func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewKeyedLimiter 创建按 key 限流的本地限流器。
func NewKeyedLimiter(r rate.Limit, b int, idleTTL time.Duration) *KeyedLimiter {
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	return &KeyedLimiter{
		r:       r,
		b:       b,
		idleTTL: idleTTL,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

// Allow 检查 key 对应的令牌桶是否还有令牌。
func (l *KeyedLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if l.lastGC.IsZero() {
		l.lastGC = now
	}
	if now.Sub(l.lastGC) > l.idleTTL {
		for k, bk := range l.buckets {
			if now.Sub(bk.lastSeen) > l.idleTTL {
				delete(l.buckets, k)
			}
		}
		l.lastGC = now
	}

	bk, ok := l.buckets[key]
	if !ok {
		bk = &bucket{limiter: rate.NewLimiter(l.r, l.b)}
		l.buckets[key] = bk
	}
	bk.lastSeen = now
	return bk.limiter.AllowN(now, 1), nil
}

// Len 返回当前持有的令牌桶数量。
func (l *KeyedLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
