package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pressdesk/internal/config"
	"github.com/pressdesk/internal/constants"
)

// Backend 文件存储后端
type Backend interface {
	// Put 写入对象，返回对外访问地址
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	// URL 返回对象访问地址
	URL(key string) string
	Delete(ctx context.Context, key string) error
}

// New 按配置创建存储后端
func New(cfg config.StorageConfig) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", constants.StorageDriverLocal:
		return NewLocalBackend(cfg.Local.Dir, cfg.Local.URLPrefix), nil
	case constants.StorageDriverS3:
		return NewS3Backend(context.Background(), cfg.S3)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}

// cleanKey 归一化对象键，拒绝越级路径
func cleanKey(key string) (string, error) {
	key = strings.TrimLeft(strings.ReplaceAll(strings.TrimSpace(key), "\\", "/"), "/")
	if key == "" {
		return "", fmt.Errorf("storage key is empty")
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == ".." {
			return "", fmt.Errorf("storage key is invalid: %s", key)
		}
	}
	return key, nil
}
