package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Repository 层的通用错误，Service 层据此判断具体情况
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// isDuplicateError 检查是否为唯一键冲突。TranslateError 打开时驱动会返回 gorm.ErrDuplicatedKey，
// 这里再按驱动错误信息兜底
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || // MySQL 1062
		strings.Contains(msg, "UNIQUE constraint failed") // SQLite
}
