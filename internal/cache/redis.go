package cache

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pressdesk/internal/config"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "pd"

// store 进程内唯一的 Redis 句柄；未启用时所有读写都是空操作
type store struct {
	mu     sync.RWMutex
	client *redis.Client
	prefix string
}

var shared = &store{prefix: defaultKeyPrefix}

func (s *store) get() (*redis.Client, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client, s.prefix
}

func (s *store) set(client *redis.Client, prefix string) *redis.Client {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	previous := s.client
	s.client = client
	s.prefix = prefix
	return previous
}

// InitRedis 按配置创建客户端；未启用时清空现有客户端
func InitRedis(cfg *config.RedisConfig) error {
	if cfg == nil || !cfg.Enabled {
		return Use(nil, "")
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	return Use(redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(host, strconv.Itoa(port)),
		Password: cfg.Password,
		DB:       cfg.DB,
	}), cfg.Prefix)
}

// Use 替换共享客户端并关闭旧客户端，测试中可注入自建客户端
func Use(client *redis.Client, prefix string) error {
	if previous := shared.set(client, prefix); previous != nil && previous != client {
		return previous.Close()
	}
	return nil
}

// Ping 检查 Redis 连通性，未启用时直接返回
func Ping(ctx context.Context) error {
	client, _ := shared.get()
	if client == nil {
		return nil
	}
	return client.Ping(ctx).Err()
}

// Close 关闭并移除共享客户端
func Close() error {
	return Use(nil, "")
}

// Enabled 判断缓存是否启用
func Enabled() bool {
	client, _ := shared.get()
	return client != nil
}

// Client 共享客户端，未启用时为 nil（限流中间件据此放行）
func Client() *redis.Client {
	client, _ := shared.get()
	return client
}

// GetJSON 读取 JSON 缓存，未命中返回 false
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	client, prefix := shared.get()
	if client == nil {
		return false, nil
	}
	raw, err := client.Get(ctx, joinKey(prefix, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON 写入 JSON 缓存
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	client, prefix := shared.get()
	if client == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return client.Set(ctx, joinKey(prefix, key), payload, ttl).Err()
}

// Del 删除一个或多个缓存 key
func Del(ctx context.Context, keys ...string) error {
	client, prefix := shared.get()
	if client == nil || len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, key := range keys {
		full = append(full, joinKey(prefix, key))
	}
	return client.Del(ctx, full...).Err()
}

func joinKey(prefix, key string) string {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return prefix
	}
	return prefix + ":" + trimmed
}
