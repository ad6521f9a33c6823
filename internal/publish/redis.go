package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"geo-signals/internal/signals"
)

// ErrNotFound：键不存在或已过期
var ErrNotFound = errors.New("publish: scan not found")

// KeyPrefix：Redis 键前缀，键为 scan:<id>
const KeyPrefix = "scan:"

// 文档注释：Redis 发布目标
// 背景：前端在扫描完成后按 ID 取回完整信封（刷新页面、分享链接），Redis 以 TTL 保存近期结果。
// 约束：值为信封 JSON；TTL ≤0 时不过期。
type RedisPublisher struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisPublisher(client *redis.Client, ttl time.Duration) *RedisPublisher {
	if client == nil {
		return nil
	}
	return &RedisPublisher{client: client, ttl: ttl}
}

func (r *RedisPublisher) Name() string { return "redis" }

func (r *RedisPublisher) Publish(ctx context.Context, env *signals.Envelope) error {
	if env.ScanID == "" {
		return errors.New("publish: envelope without scan id")
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, KeyPrefix+env.ScanID, raw, r.ttl).Err()
}

// Fetch：按 ID 取回信封
func (r *RedisPublisher) Fetch(ctx context.Context, scanID string) (*signals.Envelope, error) {
	raw, err := r.client.Get(ctx, KeyPrefix+scanID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("publish: redis get: %w", err)
	}
	var env signals.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("publish: decode envelope: %w", err)
	}
	return &env, nil
}
