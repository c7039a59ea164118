// Package presence 基于 Redis 维护在线状态，TTL 依赖心跳续期。
package presence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// 在线状态 TTL: 2 分钟，心跳续期
	presenceTTL = 2 * time.Minute

	presencePrefix = "im:presence:"
)

// Location 在线用户的连接信息
type Location struct {
	UserID    int64     `json:"userId"`
	DeviceID  string    `json:"deviceId"`
	Platform  string    `json:"platform"`
	LoginTime time.Time `json:"loginTime"`
}

// Registry 在线状态注册表
type Registry struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRegistry 创建在线状态注册表
func NewRegistry(client *redis.Client) *Registry {
	return &Registry{
		client: client,
		logger: slog.Default(),
	}
}

// buildKey 构建在线状态 Key: im:presence:{userId}
func buildKey(userID int64) string {
	return fmt.Sprintf("%s%d", presencePrefix, userID)
}

// Register 注册上线，新连接覆盖旧连接
func (r *Registry) Register(ctx context.Context, loc *Location) error {
	data, err := json.Marshal(loc)
	if err != nil {
		return fmt.Errorf("failed to marshal location: %w", err)
	}

	if err := r.client.Set(ctx, buildKey(loc.UserID), data, presenceTTL).Err(); err != nil {
		return err
	}

	r.logger.Debug("Registered presence",
		"userId", loc.UserID,
		"platform", loc.Platform)
	return nil
}

// Unregister 下线
func (r *Registry) Unregister(ctx context.Context, userID int64) error {
	return r.client.Del(ctx, buildKey(userID)).Err()
}

// Refresh 心跳续期
func (r *Registry) Refresh(ctx context.Context, userID int64) error {
	return r.client.Expire(ctx, buildKey(userID), presenceTTL).Err()
}

// Lookup 查询用户在线信息，离线返回 nil
func (r *Registry) Lookup(ctx context.Context, userID int64) (*Location, error) {
	data, err := r.client.Get(ctx, buildKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var loc Location
	if err := json.Unmarshal([]byte(data), &loc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal location: %w", err)
	}
	return &loc, nil
}

// ListOnline 扫描全部在线用户ID
func (r *Registry) ListOnline(ctx context.Context) ([]int64, error) {
	var userIDs []int64
	iter := r.client.Scan(ctx, 0, presencePrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		var id int64
		if _, err := fmt.Sscanf(iter.Val(), presencePrefix+"%d", &id); err == nil {
			userIDs = append(userIDs, id)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return userIDs, nil
}
