package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/JhinQaQ/secret-store/internal/secretstore"
)

// redisClient is the subset of the go-redis client the store uses.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisResolutionStore keeps resolved requester addresses in Redis so all
// worker processes of one key server share the cache. Entries expire with a
// TTL since a requester that stops retrieving has no business staying cached.
type RedisResolutionStore struct {
	client redisClient
	ttl    time.Duration
}

// NewRedisResolutionStore creates a Redis-backed resolution store.
func NewRedisResolutionStore(client *redis.Client, ttl time.Duration) ResolutionStore {
	return &RedisResolutionStore{client: client, ttl: ttl}
}

func resolutionKey(keyID, fingerprint secretstore.ServerKeyID) string {
	return "secretstore:resolution:" + keyID.Hex() + ":" + fingerprint.Hex()
}

// GetResolution returns the cached address for this credential fingerprint.
func (s *RedisResolutionStore) GetResolution(ctx context.Context, keyID, fingerprint secretstore.ServerKeyID) (secretstore.Address, bool, error) {
	data, err := s.client.Get(ctx, resolutionKey(keyID, fingerprint)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return secretstore.Address{}, false, nil
		}
		return secretstore.Address{}, false, errors.Wrap(err, "failed to get cached resolution")
	}
	if len(data) != secretstore.AddressLength {
		return secretstore.Address{}, false, errors.Errorf("corrupt cached resolution: %d bytes", len(data))
	}
	return secretstore.Address(data), true, nil
}

// SaveResolution caches a derived address with the store's TTL.
func (s *RedisResolutionStore) SaveResolution(ctx context.Context, keyID, fingerprint secretstore.ServerKeyID, address secretstore.Address) error {
	if err := s.client.Set(ctx, resolutionKey(keyID, fingerprint), address.Bytes(), s.ttl).Err(); err != nil {
		return errors.Wrap(err, "failed to save resolution")
	}
	return nil
}
