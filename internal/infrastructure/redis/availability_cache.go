package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sanosuguru/go-airline-reservation/internal/domain/seat"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

// AvailabilityCache はフライト・クラス別の空席数キャッシュを管理する
// 正とするのはあくまでデータベースのカウンタで、ここは照会の高速化のみを担う
type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAvailabilityCache は新しいAvailabilityCacheインスタンスを作成する
func NewAvailabilityCache(client *redis.Client, ttl time.Duration) *AvailabilityCache {
	return &AvailabilityCache{client: client, ttl: ttl}
}

// GetAvailableCount はフライトの指定クラスの空席数をキャッシュから取得する
func (c *AvailabilityCache) GetAvailableCount(ctx context.Context, flightID int64, class seat.Class) (int, error) {
	key := c.availableCountKey(flightID, class)
	val, err := c.client.Get(ctx, key).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrCacheMiss
		}
		return 0, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	return val, nil
}

// SetAvailableCount はフライトの指定クラスの空席数をキャッシュに保存する
func (c *AvailabilityCache) SetAvailableCount(ctx context.Context, flightID int64, class seat.Class, count int) error {
	key := c.availableCountKey(flightID, class)
	err := c.client.Set(ctx, key, count, c.ttl).Err()
	if err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate はフライトの指定クラスのキャッシュを無効化する
func (c *AvailabilityCache) Invalidate(ctx context.Context, flightID int64, class seat.Class) error {
	key := c.availableCountKey(flightID, class)
	err := c.client.Del(ctx, key).Err()
	if err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

// InvalidateFlight はフライトの全クラスのキャッシュを無効化する
// フライトキャンセルのように全クラスに影響する操作で使用する
func (c *AvailabilityCache) InvalidateFlight(ctx context.Context, flightID int64) error {
	keys := []string{
		c.availableCountKey(flightID, seat.ClassEconomy),
		c.availableCountKey(flightID, seat.ClassBusiness),
		c.availableCountKey(flightID, seat.ClassFirst),
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func (c *AvailabilityCache) availableCountKey(flightID int64, class seat.Class) string {
	return fmt.Sprintf("seats:available:%d:%s", flightID, class)
}
