package gtimer

import (
	"fmt"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
)

// Runner 执行循环策略.
// Run 在激活的后台 goroutine 中被调用, 返回时本次激活随即终止.
// 自定义策略通过 Execution 提供的原语驱动循环.
type Runner interface {
	Run(x *Execution)
}

// RunnerFunc 函数形式的 Runner.
type RunnerFunc func(*Execution)

func (f RunnerFunc) Run(x *Execution) { f(x) }

// Execution Timer 的一次激活.
// 持有本次激活专属的停止信号和完成信号, Stop 之后重新 Start 产生的
// 新激活不受旧激活影响.
type Execution struct {
	t        *Timer
	stopOnce sync.Once
	chStop   chan struct{} // 停止信号.
	chDone   chan struct{} // 完成信号, 执行循环退出时关闭.
	err      error         // 回调 panic 错误. 仅由循环 goroutine 写入.
}

// newExecution 构造 Execution.
func newExecution(t *Timer) *Execution {
	return &Execution{
		t:      t,
		chStop: make(chan struct{}),
		chDone: make(chan struct{}),
	}
}

// signalStop 发出停止信号.
func (x *Execution) signalStop() {
	x.stopOnce.Do(func() { close(x.chStop) })
}

// Stopped 返回本次激活是否已收到停止信号.
func (x *Execution) Stopped() bool {
	select {
	case <-x.chStop:
		return true
	default:
		return false
	}
}

// SingleShot 返回 Timer 当前是否单次模式.
func (x *Execution) SingleShot() bool { return x.t.SingleShot() }

// Sleep 等待一个 delay 间隔.
// delay 在进入睡眠时重新读取. 睡眠前、睡眠中和醒来后均检查停止信号,
// 任一检查命中时返回 false, 表示循环应当退出且不得再调用回调.
func (x *Execution) Sleep() bool {
	if x.Stopped() {
		return false
	}

	timer := time.NewTimer(x.t.Delay())
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-x.chStop:
		return false
	}

	return !x.Stopped()
}

// Invoke 调用回调函数.
// 回调在调用时刻重新读取, 运行期替换在此生效. 回调 panic 时恢复并
// 记录错误, 返回 false 表示循环应当终止.
func (x *Execution) Invoke() (ok bool) {
	fn := x.t.Func()

	defer func() {
		if r := recover(); r != nil {
			x.err = pkgerrors.WithStack(fmt.Errorf("%w: %v", ErrCallbackPanic, r))
			x.t.logger.ErrorFields("invoke callback panic", lfdError(x.err))
		}
	}()

	fn()
	return true
}

// defaultRunner 默认执行循环.
// 单次模式: 睡眠一个 delay 后调用一次回调. 循环模式: 每个 delay 间隔
// 调用一次回调, 模式在每轮迭代边界重新读取, 切换为单次后循环在当前
// tick 结束时退出.
type defaultRunner struct{}

func (defaultRunner) Run(x *Execution) {
	if x.SingleShot() {
		if !x.Sleep() {
			return
		}
		x.Invoke()
		return
	}

	for !x.SingleShot() {
		if !x.Sleep() {
			return
		}
		if !x.Invoke() {
			return
		}
	}
}
