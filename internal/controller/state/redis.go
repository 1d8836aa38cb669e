package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Freeeeeet/intake_bot/internal/model"
	"github.com/go-redis/redis/v8"
)

const sessionKeyPrefix = "intake:session:"

// RedisStore хранит сессии в Redis, чтобы диалог переживал перезапуск бота.
// Ключи создаются без TTL.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, userID string) (*model.Session, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var sess model.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

func (s *RedisStore) Put(ctx context.Context, sess *model.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+sess.UserID, data, 0).Err(); err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
