package repository

import (
	"context"

	"gorm.io/gorm"

	"salesconvert.example/sales-convert/internal/models"
)

// GormSalesRepository 是 SalesRepository 接口的 GORM 实现
type GormSalesRepository struct {
	db *gorm.DB
}

func NewGormSalesRepository(db *gorm.DB) SalesRepository {
	return &GormSalesRepository{db: db}
}

func (r *GormSalesRepository) Create(ctx context.Context, record *models.SalesRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// ListByUser 按日期倒序返回用户的全部记录，同一天内按 id 倒序
func (r *GormSalesRepository) ListByUser(ctx context.Context, userID uint) ([]models.SalesRecord, error) {
	var records []models.SalesRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC").
		Order("id DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *GormSalesRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.SalesRecord{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}
