package errors

import "errors"

// ErrLockHeld 任务锁已被其他实例持有
var ErrLockHeld = errors.New("任务正在执行中，请稍后重试")

// ErrCacheMiss 缓存未命中
var ErrCacheMiss = errors.New("缓存未命中")
