package logger

import (
	"context"
	"errors"
)

// LogIfError 当有错误时才记录日志，请求被取消的情况忽略
func LogIfError(ctx context.Context, log Logger, err error, msg string, fields ...interface{}) {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return
	}
	log.Error(ctx, msg, append(fields, "error", err)...)
}
