// Package testutil 提供测试用的数据库
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"salesconvert.example/sales-convert/internal/models"
	"salesconvert.example/sales-convert/pkg/database"
)

// NewDB 在临时目录创建一个已迁移的 SQLite 库，测试结束自动关闭
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewConnection(database.Options{
		Driver: database.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}
