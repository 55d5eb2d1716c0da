package requester

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JhinQaQ/secret-store/internal/config"
	"github.com/JhinQaQ/secret-store/internal/secretstore"
	"github.com/JhinQaQ/secret-store/internal/secretstore/storage"
)

type countingStore struct {
	inner storage.ResolutionStore
	gets  int
	saves int
}

func (s *countingStore) GetResolution(ctx context.Context, keyID, fingerprint secretstore.ServerKeyID) (secretstore.Address, bool, error) {
	s.gets++
	return s.inner.GetResolution(ctx, keyID, fingerprint)
}

func (s *countingStore) SaveResolution(ctx context.Context, keyID, fingerprint secretstore.ServerKeyID, address secretstore.Address) error {
	s.saves++
	return s.inner.SaveResolution(ctx, keyID, fingerprint, address)
}

func TestCachingResolverDerivesOnce(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{inner: storage.NewMemoryResolutionStore()}
	resolver := NewCachingResolver(store)

	privateKey, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	keyID := common.HexToHash("0x01")
	signature, err := ethcrypto.Sign(keyID.Bytes(), privateKey)
	require.NoError(t, err)
	req := FromSignature(signature)

	first, err := resolver.Resolve(ctx, req, keyID)
	require.NoError(t, err)
	second, err := resolver.Resolve(ctx, req, keyID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, store.gets)
	assert.Equal(t, 1, store.saves)
}

func TestCachingResolverSeparatesKeyIDs(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{inner: storage.NewMemoryResolutionStore()}
	resolver := NewCachingResolver(store)

	req := FromAddress(common.HexToAddress("0xaa"))

	_, err := resolver.Resolve(ctx, req, common.HexToHash("0x01"))
	require.NoError(t, err)
	_, err = resolver.Resolve(ctx, req, common.HexToHash("0x02"))
	require.NoError(t, err)

	// Same credential, different operations: two distinct cache entries.
	assert.Equal(t, 2, store.saves)
}

func TestNewResolverFromConfigWithoutRedis(t *testing.T) {
	resolver := NewResolverFromConfig(config.Redis{Enabled: false})

	caching, ok := resolver.(*CachingResolver)
	require.True(t, ok)
	assert.IsType(t, &storage.MemoryResolutionStore{}, caching.store)

	// The memory-backed resolver is fully functional without a server.
	expected := common.HexToAddress("0xaa")
	address, err := resolver.Resolve(context.Background(), FromAddress(expected), common.HexToHash("0x01"))
	require.NoError(t, err)
	assert.Equal(t, expected, address)
}

func TestNewResolverFromConfigWithRedis(t *testing.T) {
	resolver := NewResolverFromConfig(config.Redis{
		Enabled:       true,
		Addr:          "127.0.0.1:6379",
		ResolutionTTL: time.Minute,
	})

	caching, ok := resolver.(*CachingResolver)
	require.True(t, ok)
	assert.IsType(t, &storage.RedisResolutionStore{}, caching.store)
}

func TestCachingResolverDoesNotCacheFailures(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{inner: storage.NewMemoryResolutionStore()}
	resolver := NewCachingResolver(store)

	_, err := resolver.Resolve(ctx, FromSignature([]byte{1, 2, 3}), common.HexToHash("0x01"))
	assert.Error(t, err)
	assert.Equal(t, 0, store.saves)
}
