package app

import (
	"errors"
	"fmt"
	"os"

	"github.com/pressdesk/internal/config"
	"github.com/pressdesk/internal/logger"
	"github.com/pressdesk/internal/models"
)

// 默认管理员的环境变量
const (
	EnvDefaultAdminEmail    = "PD_DEFAULT_ADMIN_EMAIL"
	EnvDefaultAdminPassword = "PD_DEFAULT_ADMIN_PASSWORD"
)

// PrepareDatabase 打开全局连接、迁移表结构并确保存在管理员账号
// release 模式下未设置管理员密码时跳过初始化，绝不使用内置默认密码。
func PrepareDatabase(cfg *config.Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	pool := cfg.Database.Pool
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           pool.MaxOpenConns,
		MaxIdleConns:           pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := models.AutoMigrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	email := os.Getenv(EnvDefaultAdminEmail)
	password := os.Getenv(EnvDefaultAdminPassword)
	if cfg.IsRelease() && password == "" {
		logger.Warnw("default_admin_skipped", "reason", EnvDefaultAdminPassword+" not set")
		return nil
	}
	result, err := models.EnsureDefaultAdmin(models.DB, email, password)
	if err != nil {
		// 管理员初始化失败不阻止启动
		logger.Warnw("default_admin_init_failed", "error", err)
		return nil
	}
	switch result {
	case models.AdminCreatedFallback:
		logger.Warnw("default_admin_created_with_builtin_password", "email", email, "action", "change password after first login")
	case models.AdminCreated, models.AdminPromoted:
		logger.Infow("default_admin_ready", "email", email, "result", string(result))
	}
	return nil
}
