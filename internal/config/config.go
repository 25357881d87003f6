package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"salesconvert.example/sales-convert/pkg/database"
	"salesconvert.example/sales-convert/pkg/logger"
)

// Config 应用配置
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Session   SessionConfig   `yaml:"session"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
	Log       logger.Options  `yaml:"log"`
}

// ServerConfig 两个站点的监听地址和超时
type ServerConfig struct {
	DashboardAddr          string `yaml:"dashboard_addr"`
	SiteAddr               string `yaml:"site_addr"`
	ReadTimeoutSeconds     int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds    int    `yaml:"write_timeout_seconds"`
	IdleTimeoutSeconds     int    `yaml:"idle_timeout_seconds"`
	ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds"`
}

// DatabaseConfig driver 为 sqlite 时 DSN 是数据库文件路径
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"`
	DSN                    string `yaml:"dsn"`
	Host                   string `yaml:"host"`
	Port                   int    `yaml:"port"`
	User                   string `yaml:"user"`
	Password               string `yaml:"password"`
	DBName                 string `yaml:"dbname"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	LogSQL                 bool   `yaml:"log_sql"`
	BcryptCost             int    `yaml:"bcrypt_cost"`
}

// SessionConfig 会话 cookie 和存储配置
type SessionConfig struct {
	Secret        string `yaml:"secret"`
	CookieName    string `yaml:"cookie_name"`
	CookieSecure  bool   `yaml:"cookie_secure"`
	TTLMinutes    int    `yaml:"ttl_minutes"`
	Store         string `yaml:"store"` // memory/redis
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

// RateLimitConfig 登录/注册接口的每 IP 限流。
// TrustProxyHeaders 打开后按 X-Forwarded-For/X-Real-Ip 识别客户端，只在可信反向代理之后使用
type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
	TrustProxyHeaders bool    `yaml:"trust_proxy_headers"`
}

// 可覆盖配置文件的环境变量
const (
	EnvDatabaseDSN   = "SALESCONVERT_DB_DSN"
	EnvSessionSecret = "SALESCONVERT_SESSION_SECRET"
	EnvRedisAddr     = "SALESCONVERT_REDIS_ADDR"
	EnvDashboardAddr = "SALESCONVERT_DASHBOARD_ADDR"
	EnvSiteAddr      = "SALESCONVERT_SITE_ADDR"
)

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			DashboardAddr:          ":8501",
			SiteAddr:               ":5000",
			ReadTimeoutSeconds:     5,
			WriteTimeoutSeconds:    10,
			IdleTimeoutSeconds:     120,
			ShutdownTimeoutSeconds: 30,
		},
		Database: DatabaseConfig{
			Driver:       database.DriverSQLite,
			DSN:          "sales_data.db",
			Port:         3306,
			MaxOpenConns: 25,
			MaxIdleConns: 5,
		},
		Session: SessionConfig{
			CookieName: "salesconvert_session",
			TTLMinutes: 24 * 60,
			Store:      "memory",
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 1,
			Burst:             5,
		},
		Log: logger.DefaultOptions(),
	}
}

// Load 加载配置文件；path 为空时只使用默认值。当前目录下的 .env 会先被加载，
// 环境变量优先于文件
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDatabaseDSN); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(EnvSessionSecret); v != "" {
		c.Session.Secret = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Session.RedisAddr = v
	}
	if v := os.Getenv(EnvDashboardAddr); v != "" {
		c.Server.DashboardAddr = v
	}
	if v := os.Getenv(EnvSiteAddr); v != "" {
		c.Server.SiteAddr = v
	}
}

// Validate 检查配置组合是否合法
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case database.DriverSQLite:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for sqlite")
		}
	case database.DriverMySQL:
		if c.Database.DSN == "" && c.Database.Host == "" {
			return fmt.Errorf("database.dsn or database.host is required for mysql")
		}
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}

	switch c.Session.Store {
	case "memory":
	case "redis":
		if c.Session.RedisAddr == "" {
			return fmt.Errorf("session.redis_addr is required when session.store is redis")
		}
	default:
		return fmt.Errorf("unsupported session.store %q", c.Session.Store)
	}

	if c.Session.TTLMinutes <= 0 {
		return fmt.Errorf("session.ttl_minutes must be positive")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("ratelimit.requests_per_second and ratelimit.burst must be positive")
	}
	return nil
}

// DatabaseOptions 转换为 database.NewConnection 的参数，mysql 未给出 dsn 时按 host 等字段拼接
func (c *Config) DatabaseOptions() database.Options {
	dsn := c.Database.DSN
	if c.Database.Driver == database.DriverMySQL && dsn == "" {
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.Database.Username(),
			c.Database.Password,
			c.Database.Host,
			c.Database.Port,
			c.Database.DBName,
		)
	}
	return database.Options{
		Driver:          c.Database.Driver,
		DSN:             dsn,
		MaxOpenConns:    c.Database.MaxOpenConns,
		MaxIdleConns:    c.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(c.Database.ConnMaxLifetimeMinutes) * time.Minute,
		LogSQL:          c.Database.LogSQL,
	}
}

// Username mysql 用户名，未配置时为 root
func (d DatabaseConfig) Username() string {
	if d.User == "" {
		return "root"
	}
	return d.User
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLMinutes) * time.Minute
}

func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutSeconds) * time.Second
}
