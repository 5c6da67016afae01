// Package throttle limits how often one key (usually a client IP) may hit
// sensitive endpoints such as login and password reset.
package throttle

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisLimiter 固定窗口计数；多实例共享
type RedisLimiter struct {
	RDB    *redis.Client
	Prefix string
	Limit  int
	Window time.Duration
}

func NewRedis(addr, pass string, db int, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		RDB:    redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}),
		Prefix: "throttle:",
		Limit:  limit,
		Window: window,
	}
}

// INCR 与过期时间在一个脚本里原子完成；没有 TTL 的键（含历史遗留）补上窗口
var incrWindow = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	n, err := incrWindow.Run(ctx, l.RDB, []string{l.Prefix + key}, l.Window.Milliseconds()).Int64()
	if err != nil {
		return false, err
	}
	return n <= int64(l.Limit), nil
}

func (l *RedisLimiter) Close() error { return l.RDB.Close() }

// MemoryLimiter 单实例令牌桶；每个 key 一个 rate.Limiter
type MemoryLimiter struct {
	mu      sync.Mutex
	every   rate.Limit
	burst   int
	buckets map[string]*entry
	now     func() time.Time
	ttl     time.Duration
}

type entry struct {
	lim  *rate.Limiter
	seen time.Time
}

// NewMemory 每 window 内最多 limit 次（突发 limit）
func NewMemory(limit int, window time.Duration) *MemoryLimiter {
	if limit <= 0 {
		limit = 1
	}
	return &MemoryLimiter{
		every:   rate.Every(window / time.Duration(limit)),
		burst:   limit,
		buckets: make(map[string]*entry),
		now:     time.Now,
		ttl:     2 * window,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	e, ok := l.buckets[key]
	if !ok {
		if len(l.buckets) > 10000 {
			l.sweep(now)
		}
		e = &entry{lim: rate.NewLimiter(l.every, l.burst)}
		l.buckets[key] = e
	}
	e.seen = now
	return e.lim.AllowN(now, 1), nil
}

// sweep 清理长时间没访问的桶
func (l *MemoryLimiter) sweep(now time.Time) {
	for k, e := range l.buckets {
		if now.Sub(e.seen) > l.ttl {
			delete(l.buckets, k)
		}
	}
}
