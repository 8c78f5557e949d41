package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const defaultPublicContentTTL = 5 * time.Minute

func publicContentKey(slug string) string {
	return fmt.Sprintf("content:public:%s", strings.ToLower(strings.TrimSpace(slug)))
}

// GetPublicContent 读取公开内容详情缓存
func GetPublicContent(ctx context.Context, slug string, dest interface{}) (bool, error) {
	if strings.TrimSpace(slug) == "" {
		return false, nil
	}
	return GetJSON(ctx, publicContentKey(slug), dest)
}

// SetPublicContent 写入公开内容详情缓存
func SetPublicContent(ctx context.Context, slug string, value interface{}, ttl time.Duration) error {
	if strings.TrimSpace(slug) == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultPublicContentTTL
	}
	return SetJSON(ctx, publicContentKey(slug), value, ttl)
}

// DelPublicContent 删除公开内容详情缓存
func DelPublicContent(ctx context.Context, slug string) error {
	if strings.TrimSpace(slug) == "" {
		return nil
	}
	return Del(ctx, publicContentKey(slug))
}
