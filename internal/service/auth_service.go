package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"salesconvert.example/sales-convert/internal/models"
	"salesconvert.example/sales-convert/internal/repository"
	"salesconvert.example/sales-convert/pkg/crypto"
	"salesconvert.example/sales-convert/pkg/logger"
)

// AuthService 封装了注册和登录校验的业务逻辑
type AuthService struct {
	userRepo   repository.UserRepository
	bcryptCost int
	log        logger.Logger
}

// NewAuthService bcryptCost 为 0 时使用 bcrypt 默认值
func NewAuthService(userRepo repository.UserRepository, bcryptCost int, log logger.Logger) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		bcryptCost: bcryptCost,
		log:        log,
	}
}

type registerInput struct {
	Name     string `validate:"required,max=100"`
	Email    string `validate:"required,email,max=255"`
	Password string `validate:"required,min=6,max=72"`
}

// CreateUser 注册新用户。email 已存在时返回 false 且不报错
func (s *AuthService) CreateUser(ctx context.Context, name, email, password string) (bool, error) {
	in := registerInput{
		Name:     strings.TrimSpace(name),
		Email:    normalizeEmail(email),
		Password: password,
	}
	if err := validateStruct(in); err != nil {
		return false, err
	}
	// validator 的 max 按字符计数，bcrypt 的上限按字节
	if len(in.Password) > crypto.MaxPasswordBytes {
		return false, fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidInput, crypto.MaxPasswordBytes)
	}

	hashed, err := crypto.HashPassword(in.Password, s.bcryptCost)
	if errors.Is(err, crypto.ErrTooLong) {
		return false, fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidInput, crypto.MaxPasswordBytes)
	}
	if err != nil {
		return false, err
	}

	user := &models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hashed,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.log.Info(ctx, "registration rejected: email already registered")
			return false, nil
		}
		return false, err
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return true, nil
}

// VerifyUser 校验邮箱和密码，成功返回用户 ID 和 true；邮箱不存在或密码错误返回 0, false
func (s *AuthService) VerifyUser(ctx context.Context, email, password string) (uint, bool, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}

	if err := crypto.ComparePassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, crypto.ErrMismatch) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return user.ID, true, nil
}

// GetUser 根据 ID 加载用户资料
func (s *AuthService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
