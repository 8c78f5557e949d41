package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalBackend 本地磁盘存储
type LocalBackend struct {
	dir       string
	urlPrefix string
}

// NewLocalBackend 创建本地存储
func NewLocalBackend(dir, urlPrefix string) *LocalBackend {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = "./uploads"
	}
	urlPrefix = strings.TrimRight(strings.TrimSpace(urlPrefix), "/")
	if urlPrefix == "" {
		urlPrefix = "/uploads"
	}
	return &LocalBackend{dir: dir, urlPrefix: urlPrefix}
}

// Dir 返回存储根目录
func (b *LocalBackend) Dir() string {
	return b.dir
}

// URLPrefix 返回静态访问前缀
func (b *LocalBackend) URLPrefix() string {
	return b.urlPrefix
}

// Put 写入文件
func (b *LocalBackend) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	savePath := filepath.Join(b.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(savePath), 0o755); err != nil {
		return "", err
	}
	dst, err := os.Create(savePath)
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, body); err != nil {
		return "", err
	}
	return b.URL(key), nil
}

// URL 返回访问地址
func (b *LocalBackend) URL(key string) string {
	return b.urlPrefix + "/" + strings.TrimLeft(key, "/")
}

// Delete 删除文件，不存在时忽略
func (b *LocalBackend) Delete(_ context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(b.dir, filepath.FromSlash(key))); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
