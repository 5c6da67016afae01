package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var hookFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "post_commit_hook_failures_total", Help: "Post-commit hooks that failed or panicked"},
	[]string{"hook"},
)

func init() { prometheus.MustRegister(hookFailures) }

type hook struct {
	name string
	fn   func(ctx context.Context) error
}

// AfterCommit 收集事务提交后才执行的尽力而为任务（发邮件等）。
// 每个任务独立隔离：失败或 panic 只记日志，不影响其他任务，也不回传给调用方。
type AfterCommit struct {
	log   *zap.Logger
	hooks []hook
}

func NewAfterCommit(l *zap.Logger) *AfterCommit {
	if l == nil {
		l = zap.NewNop()
	}
	return &AfterCommit{log: l}
}

func (a *AfterCommit) Add(name string, fn func(ctx context.Context) error) {
	a.hooks = append(a.hooks, hook{name: name, fn: fn})
}

func (a *AfterCommit) Len() int { return len(a.hooks) }

// Run 依次执行并清空；返回失败个数（仅用于观测）
func (a *AfterCommit) Run(ctx context.Context) int {
	// 请求结束不应打断已提交后的通知
	ctx = context.WithoutCancel(ctx)
	failed := 0
	for _, h := range a.hooks {
		if err := a.runOne(ctx, h); err != nil {
			failed++
			hookFailures.WithLabelValues(h.name).Inc()
			a.log.Warn("post-commit hook failed", zap.String("hook", h.name), zap.Error(err))
		}
	}
	a.hooks = nil
	return failed
}

// Go 在后台执行 Run，调用方不等待；wg 供关闭时等待在途通知
func (a *AfterCommit) Go(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.Run(ctx)
	}()
}

func (a *AfterCommit) runOne(ctx context.Context, h hook) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return h.fn(ctx)
}
