package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/gorm"

	"salesconvert.example/sales-convert/internal/config"
	"salesconvert.example/sales-convert/internal/models"
	"salesconvert.example/sales-convert/internal/server"
	"salesconvert.example/sales-convert/pkg/database"
	"salesconvert.example/sales-convert/pkg/logger"
)

// bootstrap 加载配置并创建 logger，所有子命令共用
func bootstrap() (*config.Config, logger.Logger, error) {
	path := configPath
	if _, err := os.Stat(path); os.IsNotExist(err) && path == "configs/config.yaml" {
		// 默认路径不存在时只用默认值和环境变量
		path = ""
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("could not load config: %w", err)
	}
	log, err := logger.NewFromOptions(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("could not create logger: %w", err)
	}
	return cfg, log, nil
}

// openDatabase 连接数据库并建表
func openDatabase(ctx context.Context, cfg *config.Config, log logger.Logger) (*gorm.DB, error) {
	db, err := database.NewConnection(cfg.DatabaseOptions())
	if err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}
	if err := models.AutoMigrate(db.WithContext(ctx)); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("could not migrate database: %w", err)
	}
	log.Info(ctx, "database ready", "driver", cfg.Database.Driver)
	return db, nil
}

func serverOptions(cfg *config.Config) server.Options {
	return server.Options{
		ReadTimeout:     time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout:    time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:     time.Duration(cfg.Server.IdleTimeoutSeconds) * time.Second,
		ShutdownTimeout: cfg.ShutdownTimeout(),
	}
}

// signalContext 在 SIGINT/SIGTERM 时取消
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
