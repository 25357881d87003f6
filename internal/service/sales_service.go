package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"salesconvert.example/sales-convert/internal/models"
	"salesconvert.example/sales-convert/internal/repository"
	"salesconvert.example/sales-convert/pkg/logger"
)

// SalesService 负责销售记录的录入、查询和导出
type SalesService struct {
	salesRepo repository.SalesRepository
	userRepo  repository.UserRepository
	log       logger.Logger
}

func NewSalesService(salesRepo repository.SalesRepository, userRepo repository.UserRepository, log logger.Logger) *SalesService {
	return &SalesService{
		salesRepo: salesRepo,
		userRepo:  userRepo,
		log:       log,
	}
}

type salesInput struct {
	Revenue  float64 `validate:"gte=0"`
	Platform string  `validate:"required,platform"`
	Campaign string  `validate:"max=200"`
}

// AddSalesData 为用户新增一条销售记录，用户不存在时返回 ErrUserNotFound
func (s *SalesService) AddSalesData(ctx context.Context, userID uint, date time.Time, revenue float64, platform models.Platform, campaign string) error {
	if date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if math.IsNaN(revenue) || math.IsInf(revenue, 0) {
		return fmt.Errorf("%w: revenue must be a finite number", ErrInvalidInput)
	}
	in := salesInput{
		Revenue:  revenue,
		Platform: string(platform),
		Campaign: strings.TrimSpace(campaign),
	}
	if err := validateStruct(in); err != nil {
		return err
	}

	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	record := &models.SalesRecord{
		UserID:   userID,
		Date:     models.DateOnly(date),
		Revenue:  in.Revenue,
		Platform: platform,
		Campaign: in.Campaign,
	}
	if err := s.salesRepo.Create(ctx, record); err != nil {
		return err
	}

	s.log.Debug(ctx, "sales record added", "record_id", record.ID, "platform", platform)
	return nil
}

// GetUserSalesData 返回用户自己的记录，按日期倒序
func (s *SalesService) GetUserSalesData(ctx context.Context, userID uint) ([]models.SalesRecord, error) {
	return s.salesRepo.ListByUser(ctx, userID)
}

// CountUserSalesData 返回用户的记录条数
func (s *SalesService) CountUserSalesData(ctx context.Context, userID uint) (int64, error) {
	return s.salesRepo.CountByUser(ctx, userID)
}

type salesCSVRow struct {
	Date     string  `csv:"date"`
	Revenue  float64 `csv:"revenue"`
	Platform string  `csv:"platform"`
	Campaign string  `csv:"campaign"`
}

// ExportCSV 把用户的记录以 CSV 写入 w，列顺序为 date,revenue,platform,campaign
func (s *SalesService) ExportCSV(ctx context.Context, userID uint, w io.Writer) error {
	records, err := s.salesRepo.ListByUser(ctx, userID)
	if err != nil {
		return err
	}

	rows := make([]*salesCSVRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, &salesCSVRow{
			Date:     r.Date.Format("2006-01-02"),
			Revenue:  r.Revenue,
			Platform: string(r.Platform),
			Campaign: r.Campaign,
		})
	}
	return gocsv.Marshal(rows, w)
}
