package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/freshcart/internal/app"
	"github.com/freshcart/internal/config"
	"github.com/freshcart/internal/logger"
	"github.com/freshcart/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiDim   = "\033[2m"
	ansiGreen = "\033[32m"
	ansiCyan  = "\033[36m"
)

func main() {
	// 解析命令行参数
	var mode string
	flag.StringVar(&mode, "mode", app.ModeAll, "启动模式: all (默认), api, worker")
	flag.Parse()

	printStartupBanner()

	// 加载配置
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	stdLog := logger.StdLogger()

	if cfg.Server.Mode == "release" && strings.TrimSpace(cfg.Checkout.WhatsAppNumber) == "" {
		stdLog.Printf("警告: 未配置 checkout.whatsapp_number，下单跳转链接将缺少收件号码")
	}

	// 初始化数据库
	debug := strings.EqualFold(cfg.Server.Mode, "debug")
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, debug); err != nil {
		stdLog.Fatalf("数据库初始化失败: %v", err)
	}

	// 自动迁移数据库表
	if err := models.AutoMigrate(models.DB); err != nil {
		stdLog.Fatalf("数据库迁移失败: %v", err)
	}

	// 设置 Gin 模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	}); err != nil {
		stdLog.Fatalf("服务运行失败: %v", err)
	}
}

func printStartupBanner() {
	fmt.Println(ansiCyan + ansiBold + "FreshCart API" + ansiReset)
	fmt.Println(ansiGreen + "grocery storefront: catalog / cart / checkout hand-off" + ansiReset)
	fmt.Println(ansiDim + "--------------------------------------------------------------" + ansiReset)
}
