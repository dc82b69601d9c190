package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"job-portal/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config 数据库配置，Driver 取 sqlite、postgres 或 mysql。
type Config struct {
	Driver   string `yaml:"driver" json:"driver"`
	DSN      string `yaml:"dsn" json:"dsn"`
	Path     string `yaml:"path" json:"path"`
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// Store 封装数据库访问，负责管理员、企业、职位、申请与求职者数据。
type Store struct {
	db *gorm.DB
}

// NewStore 按配置打开数据库并自动迁移数据表。
func NewStore(cfg Config) (*Store, error) {
	dialector, err := openDialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(parseLogLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName(cfg), err)
	}

	if err := db.AutoMigrate(
		&model.Admin{},
		&model.Company{},
		&model.PendingCompany{},
		&model.Job{},
		&model.JobApplication{},
		&model.User{},
		&model.SavedJob{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate models: %w", err)
	}

	return &Store{db: db}, nil
}

// Close 关闭底层数据库连接。
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	return nil
}

func openDialector(cfg Config) (gorm.Dialector, error) {
	switch driverName(cfg) {
	case "sqlite":
		path := cfg.Path
		if path == "" {
			path = "job-portal.db"
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
		return sqlite.Open(path), nil
	case "postgres":
		if cfg.DSN == "" {
			return nil, errors.New("postgres driver requires dsn")
		}
		return postgres.Open(cfg.DSN), nil
	case "mysql":
		if cfg.DSN == "" {
			return nil, errors.New("mysql driver requires dsn")
		}
		return mysql.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func driverName(cfg Config) string {
	d := strings.ToLower(strings.TrimSpace(cfg.Driver))
	switch d {
	case "", "sqlite", "sqlite3":
		return "sqlite"
	case "postgresql", "pg":
		return "postgres"
	}
	return d
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// translate 将 GORM 的通用错误转换为业务错误类别。
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return model.NotFound("%s not found", what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return model.Conflict("%s already exists", what)
	}
	return err
}
