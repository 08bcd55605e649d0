package service

import "errors"

// ValidationError 参数校验错误，消息直接面向用户展示
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

// 自定义日期范围的三种校验失败，各自携带独立的用户可见消息
var (
	ErrStartAfterEnd = &ValidationError{msg: "start date must not be after end date"}
	ErrEndInFuture   = &ValidationError{msg: "end date must not be in the future"}
	ErrRangeTooWide  = &ValidationError{msg: "date range must not exceed 365 days"}
)

var (
	// ErrNoData 报表生成结果为空（不产出空文件）
	ErrNoData = errors.New("no data available for the selected filters and date range")

	// ErrExpiredResource 下载已过期的历史条目
	ErrExpiredResource = errors.New("report has expired and is no longer downloadable")

	// ErrMissingHandle 下载时句柄已释放（与过期扫描竞争）。
	// 内部恢复为元数据报表，不向用户暴露
	ErrMissingHandle = errors.New("report handle has been released")

	// ErrNotFoundHistory 历史条目不存在
	ErrNotFoundHistory = errors.New("report history item not found")
)

// IsValidation reports whether err carries a user-visible validation message.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
