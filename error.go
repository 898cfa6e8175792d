package gtimer

import (
	"errors"
)

// ErrCallbackPanic 回调函数 panic.
// 回调 panic 会终止本次激活, 包装后的错误可通过 Timer.Err 获取.
var ErrCallbackPanic = errors.New("callback panic")
