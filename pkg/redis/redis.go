package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"dimission-forecast/config"
	pkgerrors "dimission-forecast/pkg/errors"
)

// Client Redis 客户端封装
// 用于任务互斥锁、预测结果缓存与手动任务限流
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

	return NewFromRaw(rdb, logger), nil
}

// NewFromRaw 包装已有的 go-redis 客户端
func NewFromRaw(rdb *goredis.Client, logger *zap.Logger) *Client {
	return &Client{rdb: rdb, logger: logger}
}

// ── 任务锁 ──

const lockPrefix = "dimission:lock:"

// 仅当锁仍属于自己时才删除
var unlockScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// TryLock 以 SET NX 获取任务锁，已被持有时返回 ErrLockHeld
// 返回的 release 只删除自己持有的锁
func (c *Client) TryLock(ctx context.Context, name string, ttl time.Duration) (func(context.Context) error, error) {
	key, token := lockPrefix+name, uuid.NewString()
	ok, err := c.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("获取任务锁失败: %w", err)
	}
	if !ok {
		return nil, pkgerrors.ErrLockHeld
	}

	release := func(ctx context.Context) error {
		if err := unlockScript.Run(ctx, c.rdb, []string{key}, token).Err(); err != nil {
			c.logger.Warn("释放任务锁失败", zap.String("key", key), zap.Error(err))
			return err
		}
		return nil
	}
	return release, nil
}

// ── 预测结果缓存 ──

const cachePrefix = "dimission:cache:"

// SetCache 写入缓存
func (c *Client) SetCache(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, cachePrefix+key, value, ttl).Err()
}

// GetCache 读取缓存，未命中返回 ErrCacheMiss
func (c *Client) GetCache(ctx context.Context, key string) ([]byte, error) {
	b, err := c.rdb.Get(ctx, cachePrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, pkgerrors.ErrCacheMiss
	}
	return b, err
}

// DeleteCache 删除缓存
func (c *Client) DeleteCache(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, cachePrefix+key).Err()
}

// ── 限流 ──

const rateLimitPrefix = "dimission:rate:"

// CheckRateLimit 固定窗口计数，窗口内第 limit+1 次起返回 false
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	key = rateLimitPrefix + key
	pipe := c.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() <= int64(limit), nil
}

// Ping 健康检查
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
