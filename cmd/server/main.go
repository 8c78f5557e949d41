package main

import (
	"flag"
	"fmt"
	"os"
	"syscall"

	"github.com/pressdesk/internal/app"
	"github.com/pressdesk/internal/config"
	"github.com/pressdesk/internal/logger"

	"github.com/gin-gonic/gin"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiDim   = "\033[2m"
	ansiCyan  = "\033[36m"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径，缺省在 . ../ ./etc 下查找 config.yml")
	rawMode := flag.String("mode", string(app.ModeAll), "启动模式: all (默认), api, worker")
	flag.Parse()

	fmt.Println(ansiCyan + ansiBold + "pressdesk" + ansiReset + ansiDim + " · 内容发布状态机 / DOI 登记 / 审核队列" + ansiReset)

	if err := run(*configPath, *rawMode); err != nil {
		fmt.Fprintf(os.Stderr, "pressdesk: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, rawMode string) error {
	mode, err := app.ParseMode(rawMode)
	if err != nil {
		return err
	}
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer func() { _ = logger.Z().Sync() }()

	if cfg.WeakJWTSecret() {
		if cfg.IsRelease() {
			return fmt.Errorf("jwt.secret 过弱或仍为示例值，生产环境必须配置至少 32 字节的随机密钥")
		}
		logger.Warnw("jwt_secret_weak", "hint", "生产环境前请更换 jwt.secret")
	}
	if cfg.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := app.PrepareDatabase(cfg); err != nil {
		return err
	}

	return app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	})
}
