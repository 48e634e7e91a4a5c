package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	redisClient "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "shorturl-analytics/docs"
	"shorturl-analytics/internal/config"
	"shorturl-analytics/internal/geo"
	"shorturl-analytics/internal/handler"
	"shorturl-analytics/internal/middleware"
	"shorturl-analytics/internal/repository"
	"shorturl-analytics/internal/service"
	"shorturl-analytics/internal/shortcode"
	"shorturl-analytics/pkg/database"
	"shorturl-analytics/pkg/logger"
	"shorturl-analytics/pkg/redis"
)

// @title 短链接与访问统计 API
// @version 1.0
// @description 短链接创建、重定向和点击统计服务
// @host localhost:8080
// @BasePath /
func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "配置加载失败:", err)
		os.Exit(1)
	}

	if err := logger.InitLogger(logger.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	}); err != nil {
		fmt.Fprintln(os.Stderr, "日志初始化失败:", err)
		os.Exit(1)
	}
	defer func() {
		if err := logger.Logger.Sync(); err != nil {
			fmt.Println("日志同步失败:", err)
		}
	}()
	sugaredLogger := zap.S()

	db, err := database.Open(&database.Options{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Name:            cfg.Database.Name,
		Charset:         cfg.Database.Charset,
		SSLMode:         cfg.Database.SSLMode,
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetimeDuration(),
		LogLevel:        cfg.Database.LogLevel,
	}, sugaredLogger)
	if err != nil {
		sugaredLogger.Fatalf("数据库初始化失败: %v", err)
	}
	defer closeDatabase(db, sugaredLogger)
	sugaredLogger.Infof("✅ 数据库连接成功 (%s)", cfg.Database.Driver)

	rdb, err := redis.NewClient(&redis.Options{
		Host:     cfg.Cache.Host,
		Port:     cfg.Cache.Port,
		Password: cfg.Cache.Password,
		DB:       cfg.Cache.DB,
		PoolSize: cfg.Cache.PoolSize,
	})
	if err != nil {
		// 缓存不可用时直接查库
		sugaredLogger.Warnf("缓存连接失败，不启用缓存: %v", err)
	} else if rdb != nil {
		defer closeRedis(rdb, sugaredLogger)
		sugaredLogger.Info("✅ 缓存连接成功")
	}

	var locator geo.Locator
	if cfg.Geo.DatabasePath != "" {
		mm, err := geo.OpenMaxMind(cfg.Geo.DatabasePath)
		if err != nil {
			sugaredLogger.Warnf("地理位置数据库不可用，所有点击记为 Unknown: %v", err)
		} else {
			defer mm.Close()
			locator = mm
			sugaredLogger.Info("✅ 地理位置数据库加载成功")
		}
	}
	resolver := geo.NewResolver(locator, cfg.Geo.LoopbackSubstitute, sugaredLogger)

	// 初始化并启动短码池
	codePool := shortcode.NewPool(shortcode.NewGenerator(), cfg.Shortlink.PoolSize, sugaredLogger)
	codePool.Start()
	defer codePool.Stop()
	sugaredLogger.Info("✅ 短码生成器已启动")

	repo := repository.NewLinkRepository(db)
	var cache service.LinkCache
	var cachePinger handler.Pinger
	if rdb != nil {
		linkCache := repository.NewLinkCache(rdb, cfg.Cache.TTLDuration())
		cache = linkCache
		cachePinger = linkCache
	}

	linkService := service.NewLinkService(repo, cache, codePool, resolver, service.Config{
		DefaultValidityMinutes: cfg.Shortlink.DefaultValidityMinutes,
		GenerateRetries:        cfg.Shortlink.GenerateRetries,
		StrictClickRecording:   cfg.Shortlink.StrictClickRecording,
	}, sugaredLogger)
	analytics := service.NewAnalyticsReader(repo)

	if cfg.App.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.GinZapRecovery(logger.Logger, true))
	router.Use(middleware.GinZapLogger(logger.Logger))
	router.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	linkHandler := handler.NewShortLinkHandler(linkService, analytics, cfg.Server.BaseURL, sugaredLogger)
	healthHandler := handler.NewHealthHandler(cfg.App.Version, map[string]handler.Pinger{
		"database": repo,
		"cache":    cachePinger,
	})
	registerRoutes(router, linkHandler, healthHandler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	go func() {
		sugaredLogger.Infof("🚀 服务启动成功, 访问 http://localhost:%d", cfg.Server.Port)
		sugaredLogger.Infof("📚 Swagger 文档地址: http://localhost:%d/swagger/index.html", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugaredLogger.Fatalf("服务启动失败: %v", err)
		}
	}()

	gracefulShutdown(server, cfg.Server.ShutdownTimeoutDuration(), sugaredLogger)
}

func registerRoutes(router *gin.Engine, linkHandler *handler.ShortLinkHandler, healthHandler *handler.HealthHandler) {
	router.GET("/", handler.Index)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.Ready)
	linkHandler.Register(router)
}

// gracefulShutdown 等待退出信号，在超时时间内处理完进行中的请求
func gracefulShutdown(server *http.Server, timeout time.Duration, log *zap.SugaredLogger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Infof("收到退出信号 %s，正在关闭服务...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("服务关闭失败: %v", err)
		return
	}
	log.Info("✅ 服务已关闭")
}

func closeDatabase(db *gorm.DB, log *zap.SugaredLogger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Errorf("关闭数据库连接失败: %v", err)
	}
}

func closeRedis(rdb *redisClient.Client, log *zap.SugaredLogger) {
	if err := rdb.Close(); err != nil {
		log.Errorf("关闭 Redis 连接失败: %v", err)
	}
}
