package main

import (
	"log"

	"github.com/selftrack/internal/cli"
	"github.com/selftrack/internal/config"
	"github.com/selftrack/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLogger, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer appLogger.Sync()

	// 初始化数据库与状态
	app, err := cli.NewApp(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("failed to initialize app", "error", err)
	}

	// 设置并运行 Gin 服务器
	appLogger.Info("server listening", "addr", cfg.ListenAddr)
	if err := app.Router().Run(cfg.ListenAddr); err != nil {
		appLogger.Fatal("failed to run server", "error", err)
	}
}
