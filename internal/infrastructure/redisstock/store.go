package redisstock

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	domain "github.com/shopcore/shopcore/internal/domain/product"
)

// Store keeps product stock in Redis. The check-and-adjust runs as a Lua
// script, so it is atomic per key even across processes sharing the same
// Redis.
type Store struct {
	client *redis.Client
	adjust *redis.Script
}

const (
	resultNotFound  = -2
	resultShortfall = -1
)

var adjustScript = redis.NewScript(`
local stock = redis.call('GET', KEYS[1])
if not stock then
  return {-2, 0}
end
stock = tonumber(stock)
local delta = tonumber(ARGV[1])
local next = stock + delta
if next < 0 then
  return {-1, stock}
end
redis.call('SET', KEYS[1], next)
return {0, next}
`)

func New(client *redis.Client) *Store {
	return &Store{client: client, adjust: adjustScript}
}

func key(id string) string {
	return fmt.Sprintf("stock:{%s}", id)
}

func (s *Store) Stock(ctx context.Context, id string) (int, error) {
	v, err := s.client.Get(ctx, key(id)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, domain.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("redis stock: get: %w", err)
	}
	return v, nil
}

func (s *Store) AdjustStock(ctx context.Context, id string, delta int) (int, error) {
	res, err := s.adjust.Run(ctx, s.client, []string{key(id)}, delta).Result()
	if err != nil {
		return 0, fmt.Errorf("redis stock: adjust: %w", err)
	}

	vals, ok := res.([]interface{})
	if !ok || len(vals) != 2 {
		return 0, fmt.Errorf("redis stock: unexpected script result %T", res)
	}
	code, _ := vals[0].(int64)
	stock, _ := vals[1].(int64)

	switch code {
	case resultNotFound:
		return 0, domain.ErrNotFound
	case resultShortfall:
		return 0, &domain.StockShortfallError{
			ProductID:    id,
			Requested:    -delta,
			CurrentStock: int(stock),
		}
	default:
		return int(stock), nil
	}
}

func (s *Store) SetStock(ctx context.Context, id string, stock int) error {
	if stock < 0 {
		return domain.ErrInvalidStock
	}
	if err := s.client.Set(ctx, key(id), stock, 0).Err(); err != nil {
		return fmt.Errorf("redis stock: set: %w", err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("redis stock: del: %w", err)
	}
	return nil
}
