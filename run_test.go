package gtimer

import (
	"sync/atomic"
	"testing"
	"time"
)

// testRunner 仅调用一次回调, 不睡眠.
type testRunner struct {
	runs *atomic.Int64
}

func (r *testRunner) Run(x *Execution) {
	r.runs.Add(1)
	if x.Stopped() {
		return
	}
	x.Invoke()
}

func TestWithRunner(t *testing.T) {
	count := new(atomic.Int64)
	runner := &testRunner{runs: new(atomic.Int64)}
	tm := New(time.Hour, false, func() { count.Add(1) }, WithRunner(runner))

	tm.Start()
	waitDone(t, tm, time.Second)

	if runner.runs.Load() != 1 {
		t.Fatalf("runner runs %d, want 1", runner.runs.Load())
	}
	if count.Load() != 1 {
		t.Fatalf("invocations %d, want 1", count.Load())
	}
	if !tm.Stopped() {
		t.Fatal("not stopped after runner returned")
	}
}

func TestRunnerFunc(t *testing.T) {
	count := new(atomic.Int64)
	tm := New(time.Millisecond, false, func() { count.Add(1) },
		WithRunner(RunnerFunc(func(x *Execution) {
			// 固定执行三个 tick.
			for i := 0; i < 3; i++ {
				if !x.Sleep() {
					return
				}
				if !x.Invoke() {
					return
				}
			}
		})))

	tm.Start()
	waitDone(t, tm, time.Second)

	if n := count.Load(); n != 3 {
		t.Fatalf("invocations %d, want 3", n)
	}
	if !tm.Stopped() {
		t.Fatal("not stopped")
	}
}

func TestExecutionSleepStopped(t *testing.T) {
	results := make(chan bool, 1)
	tm := New(time.Hour, false, func() {},
		WithRunner(RunnerFunc(func(x *Execution) {
			results <- x.Sleep()
		})))

	tm.Start()
	tm.Stop()

	select {
	case ok := <-results:
		if ok {
			t.Fatal("Sleep returned true after stop")
		}
	case <-time.After(time.Second):
		t.Fatal("Sleep did not wake on stop")
	}
}

func TestExecutionInvokePanic(t *testing.T) {
	tm := New(time.Millisecond, false, func() { panic("boom") },
		WithLogger(createTestLogger()),
		WithRunner(RunnerFunc(func(x *Execution) {
			if x.Invoke() {
				panic("Invoke must report callback panic")
			}
		})))

	tm.Start()
	waitDone(t, tm, time.Second)

	if tm.Err() == nil {
		t.Fatal("panic err not recorded")
	}
}
