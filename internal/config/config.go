package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，例如 STOREFRONT_DATABASE_DSN
const EnvPrefix = "STOREFRONT"

// Config 应用配置
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Task      TaskConfig      `mapstructure:"task"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres | mysql | sqlite
	DSN             string        `mapstructure:"dsn"`
	LogLevel        string        `mapstructure:"log_level"`
	MaxIdle         int           `mapstructure:"max_idle"`
	MaxOpen         int           `mapstructure:"max_open"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	AccessTTL  time.Duration `mapstructure:"access_ttl"`
	RefreshTTL time.Duration `mapstructure:"refresh_ttl"`
	Issuer     string        `mapstructure:"issuer"`
}

// NotifyConfig 下单后通知渠道，留空即不启用
type NotifyConfig struct {
	WebhookURLs    []string      `mapstructure:"webhook_urls"`
	WebhookTimeout time.Duration `mapstructure:"webhook_timeout"`
	KafkaBrokers   []string      `mapstructure:"kafka_brokers"`
	KafkaTopic     string        `mapstructure:"kafka_topic"`
	RedisAddr      string        `mapstructure:"redis_addr"`
	RedisChannel   string        `mapstructure:"redis_channel"`
}

type TaskConfig struct {
	CartCleanupCron string        `mapstructure:"cart_cleanup_cron"`
	CartMaxAge      time.Duration `mapstructure:"cart_max_age"`
}

type RateLimitConfig struct {
	// 同一 IP 两次创建购物车的最小间隔，0 表示不限制
	CartCreateInterval time.Duration `mapstructure:"cart_create_interval"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "host=localhost user=postgres password=postgres dbname=storefront port=5432 sslmode=disable TimeZone=UTC")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.max_idle", 10)
	v.SetDefault("database.max_open", 100)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.access_ttl", 2*time.Hour)
	v.SetDefault("jwt.refresh_ttl", 7*24*time.Hour)
	v.SetDefault("jwt.issuer", "storefront")

	v.SetDefault("notify.webhook_urls", []string{})
	v.SetDefault("notify.webhook_timeout", 5*time.Second)
	v.SetDefault("notify.kafka_brokers", []string{})
	v.SetDefault("notify.kafka_topic", "orders.created")
	v.SetDefault("notify.redis_addr", "")
	v.SetDefault("notify.redis_channel", "orders.created")

	v.SetDefault("task.cart_cleanup_cron", "0 0 3 * * *")
	v.SetDefault("task.cart_max_age", 30*24*time.Hour)

	v.SetDefault("ratelimit.cart_create_interval", time.Duration(0))

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// Load 按 默认值 -> 配置文件 -> 环境变量 的顺序加载配置
// path 为空时不读取配置文件
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验启动必须项
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		return errors.New("jwt ttl must be positive")
	}
	return nil
}
