package redisstore

import (
	"context"
	"time"

	"fxledger-service/internal/application"

	"github.com/redis/go-redis/v9"
)

const idempotencyKeyPrefix = "idem:v1:"

var _ application.IdempotencyStore = (*IdempotencyStore)(nil)

type IdempotencyStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{Client: client, TTL: ttl}
}

func (s *IdempotencyStore) TryReserve(ctx context.Context, key string) (bool, error) {
	ok, err := s.Client.SetNX(ctx, idempotencyKeyPrefix+key, "1", s.TTL).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.Client.Del(ctx, idempotencyKeyPrefix+key).Err()
}
