package main

import (
	"flag"
	"fmt"
	"os"
	"syscall"

	"github.com/stockdesk/internal/app"
	"github.com/stockdesk/internal/config"
	"github.com/stockdesk/internal/logger"
	"github.com/stockdesk/internal/models"

	"github.com/gin-gonic/gin"
)

const banner = `
  ___ _            _   ___         _
 / __| |_ ___  __ | |_|   \ ___ __| |__
 \__ \  _/ _ \/ _|| / / |) / -_|_-< / /
 |___/\__\___/\__||_\_\___/\___/__/_\_\
`

func main() {
	mode := flag.String("mode", app.ModeAll, "启动模式: all / api / worker")
	configPath := flag.String("config", "", "配置文件路径，留空时依次查找 ./、./etc、../ 下的 config.yml")
	flag.Parse()

	fmt.Print("\033[36m" + banner + "\033[0m")
	fmt.Println("库存 / 销售 / 退货 / 分析 管理后台  ·  /api/v1/admin  ·  /health")

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "配置无效: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Server.Mode, cfg.Log.LoggerOptions())
	defer logger.Sync()
	log := logger.S()

	if cfg.JWT.WeakSecret() {
		log.Warnw("jwt_secret_weak", "hint", "set SD_JWT_SECRET before going to release mode")
	}
	if err := prepareDatabase(cfg); err != nil {
		log.Errorw("database_prepare_failed", "error", err)
		os.Exit(1)
	}
	if cfg.Server.Release() {
		gin.SetMode(gin.ReleaseMode)
	}

	err = app.Run(app.Options{
		Config:  cfg,
		Logger:  log,
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    *mode,
	})
	if err != nil {
		log.Errorw("app_exit_with_error", "error", err)
		logger.Sync()
		os.Exit(1)
	}
}

// prepareDatabase 连接、迁移，并在没有账号时创建首个超级管理员
func prepareDatabase(cfg *config.Config) error {
	if err := models.InitDB(cfg.Database, cfg.Log.SQLLevel); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	if err := models.AutoMigrate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	username := os.Getenv("SD_DEFAULT_ADMIN_USERNAME")
	password := os.Getenv("SD_DEFAULT_ADMIN_PASSWORD")
	if cfg.Server.Release() && password == "" {
		logger.Warnw("bootstrap_admin_skipped", "reason", "SD_DEFAULT_ADMIN_PASSWORD unset in release mode")
		return nil
	}
	if err := models.InitDefaultAdmin(username, password); err != nil {
		logger.Warnw("bootstrap_admin_failed", "error", err)
	}
	return nil
}
