package service

import "time"

// Clock 时间源（日期窗口解析与过期扫描统一走这里，便于测试）
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// NewClock returns the wall clock.
func NewClock() Clock { return realClock{} }
