package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/reyesbrostec/deceAUM/config"
)

// ErrLockNotAcquired 锁已被其他实例持有
var ErrLockNotAcquired = errors.New("redis: 未获取到锁")

// Client Redis 客户端封装
// 用于考试写入的分布式锁、导出文档缓存与接口限流
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return NewFromGoRedis(rdb, logger), nil
}

// NewFromGoRedis 包装已有的 go-redis 客户端（测试时可接 miniredis 等）
func NewFromGoRedis(rdb *goredis.Client, logger *zap.Logger) *Client {
	return &Client{rdb: rdb, logger: logger}
}

// ── 分布式锁 ──

const lockPrefix = "dece:lock:"

// 仅当值与 token 一致时删除，避免释放别人的锁
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Lock 已持有的锁
type Lock struct {
	client *Client
	key    string
	token  string
}

// AcquireLock 以 SET NX PX 获取锁，在 wait 时间内重试
func (c *Client) AcquireLock(ctx context.Context, name string, ttl, wait time.Duration) (*Lock, error) {
	key := lockPrefix + name
	token := uuid.NewString()
	deadline := time.Now().Add(wait)

	for {
		ok, err := c.rdb.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("获取锁 %s 失败: %w", name, err)
		}
		if ok {
			return &Lock{client: c, key: key, token: token}, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrLockNotAcquired
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(25 * time.Millisecond):
		}
	}
}

// Release 释放锁；锁已过期或被他人持有时静默返回
func (l *Lock) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, l.client.rdb, []string{l.key}, l.token).Err(); err != nil && !errors.Is(err, goredis.Nil) {
		l.client.logger.Warn("释放锁失败", zap.String("key", l.key), zap.Error(err))
		return err
	}
	return nil
}

// ── 导出缓存 ──

const exportPrefix = "dece:export:"

// CacheExport 以排考摘要为键缓存导出文档
func (c *Client) CacheExport(ctx context.Context, digest string, doc []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, exportPrefix+digest, doc, ttl).Err()
}

// GetCachedExport 读取缓存；未命中返回 (nil, nil)
func (c *Client) GetCachedExport(ctx context.Context, digest string) ([]byte, error) {
	b, err := c.rdb.Get(ctx, exportPrefix+digest).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ── 限流 ──

// CheckRateLimit 固定窗口计数，返回本次请求是否放行
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	n, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		if err := c.rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return n <= int64(limit), nil
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
