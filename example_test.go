package gtimer

import (
	"fmt"
	"time"
)

func ExampleTimer() {
	tm := New(10*time.Millisecond, true, func() { fmt.Println("tick") })

	tm.Start()
	<-tm.Done()

	fmt.Println(tm.Stopped())

	// Output:
	// tick
	// true
}

func ExampleTimer_SetFunc() {
	ticks := make(chan string, 16)

	// 每 50ms 调用一次, 运行期替换回调, 下一个 tick 生效.
	tm := New(50*time.Millisecond, false, func() { ticks <- "A" })
	tm.Start()

	fmt.Println(<-ticks)
	tm.SetFunc(func() { ticks <- "B" })
	fmt.Println(<-ticks)

	tm.StopWait()

	// Output:
	// A
	// B
}
