package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"shorturl-analytics/internal/model"
)

// Options 数据库连接参数
type Options struct {
	Driver          string // mysql、postgres 或 sqlite
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	Charset         string
	SSLMode         string
	Path            string // sqlite 文件路径，":memory:" 表示内存库
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogLevel        string
}

// Open 按驱动打开数据库并迁移表结构。开启 TranslateError 后，
// 唯一索引冲突会被翻译为 gorm.ErrDuplicatedKey。
func Open(opts *Options, logger *zap.SugaredLogger) (*gorm.DB, error) {
	dialector, err := dialectorFor(opts)
	if err != nil {
		return nil, err
	}

	connection, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         newGormLogger(logger, opts.LogLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}

	sqlDB, err := connection.DB()
	if err != nil {
		return nil, fmt.Errorf("获取连接池失败: %w", err)
	}
	if opts.Driver == "sqlite" {
		// sqlite 只允许单写者，串行化连接避免 database is locked
		sqlDB.SetMaxOpenConns(1)
	} else {
		if opts.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
		}
		if opts.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
		}
		if opts.ConnMaxLifetime > 0 {
			sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
		}
	}

	if err := Migrate(connection); err != nil {
		return nil, err
	}

	return connection, nil
}

// Migrate 自动迁移表
func Migrate(db *gorm.DB) error {
	if db.Dialector.Name() == "mysql" {
		// 短码区分大小写，MySQL 默认排序规则不区分
		db = db.Set("gorm:table_options", "COLLATE=utf8mb4_bin")
	}
	if err := db.AutoMigrate(&model.Link{}, &model.Click{}); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}
	return nil
}

func dialectorFor(opts *Options) (gorm.Dialector, error) {
	switch opts.Driver {
	case "mysql", "":
		charset := opts.Charset
		if charset == "" {
			charset = "utf8mb4"
		}
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=UTC",
			opts.User, opts.Password, opts.Host, opts.Port, opts.Name, charset)
		return mysql.Open(dsn), nil
	case "postgres":
		sslMode := opts.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			opts.Host, opts.Port, opts.User, opts.Password, opts.Name, sslMode)
		return postgres.Open(dsn), nil
	case "sqlite":
		path := opts.Path
		if path == "" {
			path = "shorturl.db"
		}
		return sqlite.Open(path), nil
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", opts.Driver)
	}
}

// newGormLogger 把 gorm 的 SQL 日志输出到 zap
func newGormLogger(logger *zap.SugaredLogger, level string) gormlogger.Interface {
	lvl := gormlogger.Warn
	switch level {
	case "silent":
		lvl = gormlogger.Silent
	case "error":
		lvl = gormlogger.Error
	case "info":
		lvl = gormlogger.Info
	}
	return gormlogger.New(zapPrinter{logger.Named("gorm")}, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  lvl,
		IgnoreRecordNotFoundError: true,
	})
}

type zapPrinter struct {
	logger *zap.SugaredLogger
}

func (p zapPrinter) Printf(format string, args ...interface{}) {
	p.logger.Infof(format, args...)
}
