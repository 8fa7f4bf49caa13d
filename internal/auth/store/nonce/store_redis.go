package nonce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/redis/go-redis/v9"

	"mintgate/internal/auth/models"
	"mintgate/pkg/platform/sentinel"
)

const challengeKeyPrefix = "auth:challenge:"

// RedisStore shares challenges across instances. Expiry is left to Redis.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func challengeKey(address common.Address) string {
	return challengeKeyPrefix + strings.ToLower(address.Hex())
}

func (s *RedisStore) Save(ctx context.Context, c *models.Challenge) error {
	ttl := time.Until(c.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("save challenge: already expired")
	}
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal challenge: %w", err)
	}
	return s.client.Set(ctx, challengeKey(c.Address), payload, ttl).Err()
}

// Consume atomically reads and deletes the challenge with GETDEL, so two
// concurrent logins cannot redeem the same nonce.
func (s *RedisStore) Consume(ctx context.Context, address common.Address) (*models.Challenge, error) {
	payload, err := s.client.GetDel(ctx, challengeKey(address)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("consume challenge: %w", err)
	}
	var c models.Challenge
	if err := json.Unmarshal(payload, &c); err != nil {
		return nil, fmt.Errorf("unmarshal challenge: %w", err)
	}
	return &c, nil
}
