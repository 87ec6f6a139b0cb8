package form

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"vouch/internal/verification/models"
	id "vouch/pkg/domain"
	"vouch/pkg/platform/sentinel"
)

// RedisStore persists drafts as JSON blobs with a TTL so abandoned wizards
// expire on their own.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore constructs a Redis-backed draft store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func draftKey(userID id.UserID) string {
	return "verification:draft:" + userID.String()
}

func (s *RedisStore) Get(ctx context.Context, userID id.UserID) (*models.FormState, error) {
	raw, err := s.client.Get(ctx, draftKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get draft: %w", err)
	}

	var draft models.FormState
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	return &draft, nil
}

func (s *RedisStore) Put(ctx context.Context, f *models.FormState) error {
	raw, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := s.client.Set(ctx, draftKey(f.UserID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("put draft: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, userID id.UserID) error {
	if err := s.client.Del(ctx, draftKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}
