package models

import "gorm.io/gorm"

// AutoMigrate 创建 users 和 sales_data 两张表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &SalesRecord{})
}
