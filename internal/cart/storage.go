package cart

import (
	"context"
	"errors"
	"time"

	redislib "github.com/redis/go-redis/v9"

	pkgerrors "github.com/yazbox/yazbox-backend/pkg/errors"
	redisclient "github.com/yazbox/yazbox-backend/pkg/redis"
)

// Storage persists serialized carts keyed by session.
type Storage interface {
	Load(ctx context.Context, sessionID string) ([]byte, error)
	Save(ctx context.Context, sessionID string, blob []byte) error
	Delete(ctx context.Context, sessionID string) error
}

type redisStorage struct {
	client *redisclient.Client
	ttl    time.Duration
}

// NewRedisStorage stores each cart as a single JSON blob under a namespaced
// session key. A missing key reads as an empty cart.
func NewRedisStorage(client *redisclient.Client, ttl time.Duration) (Storage, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "redis client required")
	}
	if ttl <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "cart ttl must be positive")
	}
	return &redisStorage{client: client, ttl: ttl}, nil
}

func (s *redisStorage) Load(ctx context.Context, sessionID string) ([]byte, error) {
	raw, err := s.client.Get(ctx, s.client.CartKey(sessionID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return []byte(raw), nil
}

func (s *redisStorage) Save(ctx context.Context, sessionID string, blob []byte) error {
	return s.client.Set(ctx, s.client.CartKey(sessionID), string(blob), s.ttl)
}

func (s *redisStorage) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.client.CartKey(sessionID))
}
