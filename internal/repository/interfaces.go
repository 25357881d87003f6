package repository

import (
	"context"

	"salesconvert.example/sales-convert/internal/models"
)

// UserRepository 定义了对 users 表的操作接口
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
}

// SalesRepository 定义了对 sales_data 表的操作接口，所有查询都按用户隔离
type SalesRepository interface {
	Create(ctx context.Context, record *models.SalesRecord) error
	ListByUser(ctx context.Context, userID uint) ([]models.SalesRecord, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
}
