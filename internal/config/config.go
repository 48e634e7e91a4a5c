package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix 环境变量前缀，例如 SHORTURL_SERVER_PORT
const EnvPrefix = "SHORTURL"

// 主配置结构
type Config struct {
	App       App       `yaml:"app"`
	Server    Server    `yaml:"server"`
	Database  DB        `yaml:"database"`
	Cache     Cache     `yaml:"cache"`
	Log       Log       `yaml:"log"`
	Geo       Geo       `yaml:"geo"`
	Shortlink Shortlink `yaml:"shortlink"`
	CORS      CORS      `yaml:"cors"`
}

// 应用配置
type App struct {
	Name    string `yaml:"name"`
	Mode    string `yaml:"mode"`
	Version string `yaml:"version"`
}

// 服务器配置，超时单位为秒
type Server struct {
	Port            int    `yaml:"port"`
	ReadTimeout     int    `yaml:"read_timeout" split_words:"true"`
	WriteTimeout    int    `yaml:"write_timeout" split_words:"true"`
	ShutdownTimeout int    `yaml:"shutdown_timeout" split_words:"true"`
	BaseURL         string `yaml:"base_url" split_words:"true"`
}

// 数据库配置
type DB struct {
	Driver          string `yaml:"driver"`
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	Name            string `yaml:"name"`
	Charset         string `yaml:"charset"`
	SSLMode         string `yaml:"sslmode" split_words:"true"`
	Path            string `yaml:"path"`
	MaxOpenConns    int    `yaml:"max_open_conns" split_words:"true"`
	MaxIdleConns    int    `yaml:"max_idle_conns" split_words:"true"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime" split_words:"true"` // 秒
	LogLevel        string `yaml:"log_level" split_words:"true"`
}

// 缓存配置（Redis），Host 为空时不启用缓存
type Cache struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size" split_words:"true"`
	TTL      int    `yaml:"ttl"` // 秒
}

// 日志配置
type Log struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size" split_words:"true"`
	MaxBackups int    `yaml:"max_backups" split_words:"true"`
	MaxAge     int    `yaml:"max_age" split_words:"true"`
	Compress   bool   `yaml:"compress"`
}

// 地理位置配置，DatabasePath 为空时所有点击记为 Unknown
type Geo struct {
	DatabasePath       string `yaml:"database_path" split_words:"true"`
	LoopbackSubstitute string `yaml:"loopback_substitute" split_words:"true"`
}

// 短链接业务配置
type Shortlink struct {
	DefaultValidityMinutes int  `yaml:"default_validity_minutes" split_words:"true"`
	GenerateRetries        int  `yaml:"generate_retries" split_words:"true"`
	StrictClickRecording   bool `yaml:"strict_click_recording" split_words:"true"`
	PoolSize               int  `yaml:"pool_size" split_words:"true"`
}

// 跨域配置
type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" split_words:"true"`
}

// Default 返回默认配置，配置文件和环境变量在此基础上覆盖
func Default() *Config {
	return &Config{
		App: App{Name: "shorturl-analytics", Mode: "development", Version: "1.0.0"},
		Server: Server{
			Port:            8080,
			ReadTimeout:     10,
			WriteTimeout:    10,
			ShutdownTimeout: 15,
		},
		Database: DB{
			Driver:          "sqlite",
			Path:            "shorturl.db",
			Charset:         "utf8mb4",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    10,
			ConnMaxLifetime: 300,
			LogLevel:        "warn",
		},
		Cache: Cache{Port: 6379, PoolSize: 10, TTL: 86400},
		Log: Log{
			Level:      "info",
			File:       "./logs/app.log",
			MaxSize:    10,
			MaxBackups: 5,
			MaxAge:     30,
		},
		Geo: Geo{LoopbackSubstitute: "8.8.8.8"},
		Shortlink: Shortlink{
			DefaultValidityMinutes: 30,
			GenerateRetries:        3,
			StrictClickRecording:   true,
			PoolSize:               1000,
		},
		CORS: CORS{AllowedOrigins: []string{"*"}},
	}
}

// Load 依次应用默认值、YAML 文件、.env 文件和 SHORTURL_ 环境变量。
// 配置文件不存在时只使用默认值和环境变量。
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("解析配置文件失败: %w", err)
			}
		}
	}

	// .env 只补充未设置的环境变量
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("加载 .env 失败: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("解析环境变量失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 检查配置取值
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("无效的服务端口: %d", c.Server.Port)
	}
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("不支持的数据库驱动: %q", c.Database.Driver)
	}
	if c.Shortlink.GenerateRetries < 1 {
		return fmt.Errorf("shortlink.generate_retries 至少为 1")
	}
	return nil
}

func (s Server) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

func (s Server) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

func (s Server) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(s.ShutdownTimeout) * time.Second
}

func (c Cache) TTLDuration() time.Duration {
	return time.Duration(c.TTL) * time.Second
}

func (d DB) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}
