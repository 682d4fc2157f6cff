package config

import (
	"fmt"
	"strings"

	"github.com/freshcart/internal/constants"
	"github.com/freshcart/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Cart     CartConfig     `mapstructure:"cart"`
	Checkout CheckoutConfig `mapstructure:"checkout"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Security SecurityConfig `mapstructure:"security"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host                string `mapstructure:"host"`
	Port                string `mapstructure:"port"`
	Mode                string `mapstructure:"mode"` // debug / release
	ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds"`
	IdleTimeoutSeconds  int    `mapstructure:"idle_timeout_seconds"`
}

// Addr 监听地址
func (c ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Level:      c.Level,
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // 数据库驱动（sqlite/postgres）
	DSN    string             `mapstructure:"dsn"`    // 数据库连接串
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// StorageConfig 商品图片对象存储配置
type StorageConfig struct {
	Provider           string `mapstructure:"provider"` // s3 / public
	Bucket             string `mapstructure:"bucket"`
	Region             string `mapstructure:"region"`
	Endpoint           string `mapstructure:"endpoint"`        // 自定义 S3 兼容端点（MinIO 等）
	PublicBaseURL      string `mapstructure:"public_base_url"` // 公开访问地址前缀
	Prefix             string `mapstructure:"prefix"`
	LookupTimeoutMS    int    `mapstructure:"lookup_timeout_ms"`
	URLCacheTTLSeconds int    `mapstructure:"url_cache_ttl_seconds"`
	Concurrency        int    `mapstructure:"concurrency"`
}

// CatalogConfig 商品目录配置
type CatalogConfig struct {
	CacheTTLSeconds int      `mapstructure:"cache_ttl_seconds"`
	Categories      []string `mapstructure:"categories"`
}

// CartConfig 购物车配置
type CartConfig struct {
	SlotPrefix string `mapstructure:"slot_prefix"`
}

// CheckoutConfig 下单配置
type CheckoutConfig struct {
	WhatsAppNumber        string  `mapstructure:"whatsapp_number"`
	FreeDeliveryThreshold float64 `mapstructure:"free_delivery_threshold"`
	DeliveryFee           float64 `mapstructure:"delivery_fee"`
	CurrencySymbol        string  `mapstructure:"currency_symbol"`
	SuccessRedirect       string  `mapstructure:"success_redirect"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	CheckoutRateLimit RateLimitConfig `mapstructure:"checkout_rate_limit"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxRequests   int `mapstructure:"max_requests"`
}

// Load 从 config.yml 加载配置
func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")     // 从当前目录查找
	viper.AddConfigPath("../")   // 如果从 cmd/server 运行
	viper.AddConfigPath("./etc") // etc 文件夹

	setDefaults(viper.GetViper())

	// 环境变量支持
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // server.port -> SERVER_PORT

	if err := viper.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", viper.ConfigFileUsed())
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}

	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 30)
	v.SetDefault("server.idle_timeout_seconds", 60)
	v.SetDefault("log.level", "")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "app.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./db/freshcart.db")
	v.SetDefault("database.pool.max_open_conns", 1)
	v.SetDefault("database.pool.max_idle_conns", 1)
	v.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	v.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "fc")
	v.SetDefault("queue.enabled", false)
	v.SetDefault("queue.host", "127.0.0.1")
	v.SetDefault("queue.port", 6379)
	v.SetDefault("queue.password", "")
	v.SetDefault("queue.db", 1)
	v.SetDefault("queue.concurrency", 10)
	v.SetDefault("queue.queues", map[string]int{
		constants.QueueDefault: 5,
		constants.QueueImages:  5,
	})
	v.SetDefault("storage.provider", constants.StorageProviderPublic)
	v.SetDefault("storage.bucket", "images")
	v.SetDefault("storage.region", "ap-south-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.public_base_url", "")
	v.SetDefault("storage.prefix", "")
	v.SetDefault("storage.lookup_timeout_ms", 3000)
	v.SetDefault("storage.url_cache_ttl_seconds", 3600)
	v.SetDefault("storage.concurrency", 8)
	v.SetDefault("catalog.cache_ttl_seconds", 60)
	v.SetDefault("catalog.categories", constants.DefaultCategories)
	v.SetDefault("cart.slot_prefix", constants.CartSlotPrefix)
	v.SetDefault("checkout.whatsapp_number", "")
	v.SetDefault("checkout.free_delivery_threshold", constants.FreeDeliveryThreshold)
	v.SetDefault("checkout.delivery_fee", constants.DeliveryFee)
	v.SetDefault("checkout.currency_symbol", constants.CurrencySymbol)
	v.SetDefault("checkout.success_redirect", "/")
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Cache-Control",
		"X-Requested-With",
		"X-Request-ID",
		"X-Cart-Session",
	})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 600)
	v.SetDefault("security.checkout_rate_limit.window_seconds", 60)
	v.SetDefault("security.checkout_rate_limit.max_requests", 10)
}
