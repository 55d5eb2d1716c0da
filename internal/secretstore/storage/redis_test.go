package storage

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedisClient answers Get/Set from an in-memory map, returning redis.Nil
// on misses the way a real server does.
type fakeRedisClient struct {
	values map[string]string
}

func newFakeRedisClient() *fakeRedisClient {
	return &fakeRedisClient{values: make(map[string]string)}
}

func (f *fakeRedisClient) Get(ctx context.Context, key string) *redis.StringCmd {
	if value, ok := f.values[key]; ok {
		return redis.NewStringResult(value, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (f *fakeRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.values[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

func newTestRedisStore() (*RedisResolutionStore, *fakeRedisClient) {
	client := newFakeRedisClient()
	return &RedisResolutionStore{client: client, ttl: time.Minute}, client
}

func TestRedisResolutionStoreMiss(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedisStore()

	_, found, err := store.GetResolution(ctx, common.HexToHash("0x01"), common.HexToHash("0x02"))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisResolutionStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestRedisStore()

	keyID := common.HexToHash("0x01")
	fingerprint := common.HexToHash("0x02")
	address := common.HexToAddress("0xaa")

	require.NoError(t, store.SaveResolution(ctx, keyID, fingerprint, address))

	cached, found, err := store.GetResolution(ctx, keyID, fingerprint)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, address, cached)
}

func TestRedisResolutionStoreRejectsCorruptEntry(t *testing.T) {
	ctx := context.Background()
	store, client := newTestRedisStore()

	keyID := common.HexToHash("0x01")
	fingerprint := common.HexToHash("0x02")
	client.values[resolutionKey(keyID, fingerprint)] = "short"

	_, _, err := store.GetResolution(ctx, keyID, fingerprint)
	assert.ErrorContains(t, err, "corrupt cached resolution")
}
