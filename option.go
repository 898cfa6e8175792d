package gtimer

import (
	"github.com/godyy/glog"
)

// Option Timer 选项.
type Option func(*Timer)

// WithLogger 日志工具选项.
func WithLogger(logger glog.Logger) Option {
	return func(t *Timer) {
		t.logger = logger.Named("gtimer")
	}
}

// WithRunner 执行循环策略选项, 替换默认的执行循环.
func WithRunner(runner Runner) Option {
	return func(t *Timer) {
		if runner == nil {
			panic("runner is nil")
		}
		t.runner = runner
	}
}
