// Package gtimer 提供基于后台 goroutine 的单回调定时器.
package gtimer

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/godyy/glog"
)

// Func 定时器回调函数.
type Func func()

// Timer 定时器.
// 通过 Start 激活后, 在后台 goroutine 中按 delay 间隔调用回调函数.
// 单次模式下仅在一个 delay 之后调用一次. 回调函数、模式和 delay 均可
// 在运行期修改, 修改在下一个 tick 边界生效, 不影响正在执行的 tick.
type Timer struct {
	stopped    int32 // 停止标记, 1=停止. 原子访问.
	singleShot int32 // 单次模式标记, 1=单次. 原子访问.

	runner Runner      // 执行循环策略.
	logger glog.Logger // 日志工具.

	mutex sync.RWMutex  // RWMutex for following.
	delay time.Duration // 回调间隔.
	fn    Func          // 回调函数.
	exec  *Execution    // 当前或最近一次激活.
	err   error         // 最近一次激活的回调 panic 错误.
}

// New 构造 Timer.
// singleShot 指定单次模式. delay 为负数或 fn 为 nil 时 panic.
// 构造完成的 Timer 处于停止状态, 不会启动任何 goroutine.
func New(delay time.Duration, singleShot bool, fn Func, options ...Option) *Timer {
	if delay < 0 {
		panic("delay must >= 0")
	}

	if fn == nil {
		panic("callback func is nil")
	}

	t := &Timer{
		stopped: 1,
		runner:  defaultRunner{},
		delay:   delay,
		fn:      fn,
	}

	if singleShot {
		t.singleShot = 1
	}

	// 选项.
	for _, opt := range options {
		opt(t)
	}

	// 初始化日志工具.
	t.initLogger()

	return t
}

// Start 启动 Timer.
// 若已在运行中则不产生任何效果. 否则清除停止标记并启动一个后台
// goroutine 运行执行循环. 每次启动都会创建新的激活, 旧激活残留的
// 循环无法影响新激活的状态.
func (t *Timer) Start() *Timer {
	t.mutex.Lock()

	if atomic.LoadInt32(&t.stopped) == 0 {
		t.mutex.Unlock()
		return t
	}

	x := newExecution(t)
	t.exec = x
	t.err = nil
	atomic.StoreInt32(&t.stopped, 0)

	t.mutex.Unlock()

	t.logger.DebugFields("start", lfdSingleShot(t.SingleShot()), lfdDelay(t.Delay()))

	go t.loop(x)

	return t
}

// Stop 停止 Timer.
// 置位停止标记并通知当前激活, 不等待执行循环退出. 正在睡眠中的循环
// 会被立即唤醒并退出. 对已停止的 Timer 调用不产生任何效果.
func (t *Timer) Stop() *Timer {
	t.mutex.Lock()
	atomic.StoreInt32(&t.stopped, 1)
	x := t.exec
	t.mutex.Unlock()

	if x != nil {
		x.signalStop()
	}

	return t
}

// StopWait 停止 Timer 并等待执行循环退出.
// 返回后后台 goroutine 已终止, 回调函数不会再被调用.
func (t *Timer) StopWait() *Timer {
	t.Stop()
	<-t.Done()
	return t
}

// Done 返回当前(或最近一次)激活的完成 chan, 执行循环退出时关闭.
// 从未启动过的 Timer 返回已关闭的 chan.
func (t *Timer) Done() <-chan struct{} {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	if t.exec == nil {
		return chClosed
	}
	return t.exec.chDone
}

// Running 返回 Timer 是否运行中.
func (t *Timer) Running() bool { return atomic.LoadInt32(&t.stopped) == 0 }

// Stopped 返回 Timer 是否已停止.
func (t *Timer) Stopped() bool { return atomic.LoadInt32(&t.stopped) == 1 }

// SingleShot 返回是否单次模式.
func (t *Timer) SingleShot() bool { return atomic.LoadInt32(&t.singleShot) == 1 }

// SetSingleShot 设置是否单次模式.
// 将运行中的循环模式切换为单次会使其在当前 tick 结束后终止.
func (t *Timer) SetSingleShot(singleShot bool) *Timer {
	if singleShot {
		atomic.StoreInt32(&t.singleShot, 1)
	} else {
		atomic.StoreInt32(&t.singleShot, 0)
	}
	return t
}

// Delay 返回回调间隔.
func (t *Timer) Delay() time.Duration {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return t.delay
}

// SetDelay 设置回调间隔. delay 为负数时 panic.
// 在下一个 tick 的睡眠开始时生效.
func (t *Timer) SetDelay(delay time.Duration) *Timer {
	if delay < 0 {
		panic("delay must >= 0")
	}

	t.mutex.Lock()
	t.delay = delay
	t.mutex.Unlock()
	return t
}

// Interval 返回回调间隔. Delay 的别名.
func (t *Timer) Interval() time.Duration { return t.Delay() }

// SetInterval 设置回调间隔. SetDelay 的别名.
func (t *Timer) SetInterval(interval time.Duration) *Timer { return t.SetDelay(interval) }

// Func 返回回调函数.
func (t *Timer) Func() Func {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return t.fn
}

// SetFunc 设置回调函数. fn 为 nil 时 panic.
// 在下一次调用时生效, 正在执行的 tick 仍使用旧回调.
func (t *Timer) SetFunc(fn Func) *Timer {
	if fn == nil {
		panic("callback func is nil")
	}

	t.mutex.Lock()
	t.fn = fn
	t.mutex.Unlock()
	return t
}

// Err 返回最近一次激活中回调 panic 产生的错误.
// 未发生过 panic 时返回 nil. Start 会清除该错误.
func (t *Timer) Err() error {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return t.err
}

// loop 在后台 goroutine 中驱动激活 x 的执行循环.
func (t *Timer) loop(x *Execution) {
	t.runner.Run(x)
	t.finish(x)
}

// finish 提交激活 x 的终止状态.
// 仅当 x 仍为当前激活时才置位停止标记并记录错误, 避免残留的旧循环
// 干扰 Stop 之后重新 Start 的新激活.
func (t *Timer) finish(x *Execution) {
	t.mutex.Lock()
	if t.exec == x {
		atomic.StoreInt32(&t.stopped, 1)
		t.err = x.err
	}
	t.mutex.Unlock()

	x.signalStop()
	close(x.chDone)
}

// initLogger 初始化日志工具.
func (t *Timer) initLogger() {
	if t.logger != nil {
		return
	}
	t.logger = createStdLogger(glog.ErrorLevel)
}

// chClosed 预先关闭的 chan, 供从未启动过的 Timer 的 Done 使用.
var chClosed = func() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}()
