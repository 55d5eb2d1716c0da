package requester

import (
	"context"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/JhinQaQ/secret-store/internal/config"
	"github.com/JhinQaQ/secret-store/internal/secretstore"
	"github.com/JhinQaQ/secret-store/internal/secretstore/storage"
)

// Resolver derives the on-chain address behind a requester credential.
type Resolver interface {
	Resolve(ctx context.Context, r Requester, keyID secretstore.ServerKeyID) (secretstore.Address, error)
}

// DirectResolver derives the address on every call.
type DirectResolver struct{}

// NewDirectResolver creates a resolver without a backing cache.
func NewDirectResolver() Resolver {
	return &DirectResolver{}
}

// Resolve derives the requester address from the credential.
func (r *DirectResolver) Resolve(_ context.Context, req Requester, keyID secretstore.ServerKeyID) (secretstore.Address, error) {
	return req.Address(keyID)
}

// NewResolverFromConfig builds the resolver a host process hands to the
// publisher: a caching resolver over Redis when one is configured, over a
// process-local store otherwise.
func NewResolverFromConfig(cfg config.Redis) Resolver {
	if !cfg.Enabled {
		return NewCachingResolver(storage.NewMemoryResolutionStore())
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewCachingResolver(storage.NewRedisResolutionStore(client, cfg.ResolutionTTL))
}

// CachingResolver remembers successful derivations in a ResolutionStore, so
// repeated retrievals by the same requester skip signature recovery. Cache
// failures degrade to a plain derivation and are never surfaced.
type CachingResolver struct {
	store storage.ResolutionStore
}

// NewCachingResolver creates a resolver backed by the given store.
func NewCachingResolver(store storage.ResolutionStore) Resolver {
	return &CachingResolver{store: store}
}

// Resolve returns the cached address for this credential and key id, deriving
// and caching it on the first call.
func (r *CachingResolver) Resolve(ctx context.Context, req Requester, keyID secretstore.ServerKeyID) (secretstore.Address, error) {
	fingerprint := r.fingerprint(req, keyID)

	cached, found, err := r.store.GetResolution(ctx, keyID, fingerprint)
	if err != nil {
		log.Warn().Err(err).Str("key_id", keyID.Hex()).Msg("Failed to read resolution cache")
	} else if found {
		return cached, nil
	}

	address, err := req.Address(keyID)
	if err != nil {
		return secretstore.Address{}, err
	}

	if err := r.store.SaveResolution(ctx, keyID, fingerprint, address); err != nil {
		log.Warn().Err(err).Str("key_id", keyID.Hex()).Msg("Failed to write resolution cache")
	}

	return address, nil
}

// fingerprint hashes the credential bytes together with the key id. The key
// id is part of the cache key as well, so a credential resolved for one
// operation never answers for another.
func (r *CachingResolver) fingerprint(req Requester, keyID secretstore.ServerKeyID) secretstore.ServerKeyID {
	var credential []byte
	switch {
	case req.signature != nil:
		credential = req.signature
	case req.publicKey != nil:
		credential = req.publicKey.SerializeCompressed()
	case req.address != nil:
		credential = req.address.Bytes()
	}
	return ethcrypto.Keccak256Hash(keyID.Bytes(), credential)
}
