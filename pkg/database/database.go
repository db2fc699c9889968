package database

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// Config 数据库连接配置
type Config struct {
	Driver          string
	DSN             string
	LogLevel        string // silent | error | warn | info
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// Open 按驱动打开数据库连接并设置连接池
func Open(cfg Config) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(parseLogLevel(cfg.LogLevel)),
		// 唯一键/外键冲突统一翻译为 gorm.ErrDuplicatedKey / gorm.ErrForeignKeyViolated
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	if cfg.Driver == DriverSQLite {
		// 内存库每个连接都是独立的库，只能用单连接
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("enable sqlite foreign keys: %w", err)
		}
		if err := registerSQLiteForeignKeyTranslation(db); err != nil {
			return nil, fmt.Errorf("register sqlite callbacks: %w", err)
		}
		return db, nil
	}

	maxIdle, maxOpen, lifetime := cfg.MaxIdleConns, cfg.MaxOpenConns, cfg.ConnMaxLifetime
	if maxIdle <= 0 {
		maxIdle = 10
	}
	if maxOpen <= 0 {
		maxOpen = 100
	}
	if lifetime <= 0 {
		lifetime = time.Hour
	}
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetConnMaxLifetime(lifetime)

	return db, nil
}

// Migrate 自动建表/迁移
func Migrate(db *gorm.DB, models ...interface{}) error {
	if len(models) == 0 {
		return nil
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// sqliteForeignKeyMessage sqlite 驱动不会把外键冲突翻译为 gorm.ErrForeignKeyViolated
const sqliteForeignKeyMessage = "FOREIGN KEY constraint failed"

// registerSQLiteForeignKeyTranslation 在写操作之后补做外键错误翻译，保留原始错误文本
func registerSQLiteForeignKeyTranslation(db *gorm.DB) error {
	translate := func(tx *gorm.DB) {
		if tx.Error == nil || errors.Is(tx.Error, gorm.ErrForeignKeyViolated) {
			return
		}
		if strings.Contains(tx.Error.Error(), sqliteForeignKeyMessage) {
			tx.Error = fmt.Errorf("%w: %s", gorm.ErrForeignKeyViolated, tx.Error.Error())
		}
	}

	cb := db.Callback()
	if err := cb.Create().After("gorm:create").Register("sqlite:fk_create", translate); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("sqlite:fk_update", translate); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register("sqlite:fk_delete", translate); err != nil {
		return err
	}
	return cb.Raw().After("gorm:raw").Register("sqlite:fk_raw", translate)
}

// SupportsRowLocking 是否支持 SELECT ... FOR UPDATE
func SupportsRowLocking(db *gorm.DB) bool {
	return db.Dialector.Name() != DriverSQLite
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverPostgres:
		return postgres.Open(dsn), nil
	case DriverMySQL:
		return mysql.Open(dsn), nil
	case DriverSQLite:
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
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
