package storage

import (
	"context"
	"sync"

	"github.com/JhinQaQ/secret-store/internal/secretstore"
)

// MemoryResolutionStore is a process-local resolution cache. It is the
// default when no Redis instance is configured.
type MemoryResolutionStore struct {
	mu      sync.RWMutex
	entries map[string]secretstore.Address
}

// NewMemoryResolutionStore creates an in-memory resolution store.
func NewMemoryResolutionStore() ResolutionStore {
	return &MemoryResolutionStore{
		entries: make(map[string]secretstore.Address),
	}
}

// GetResolution returns the cached address for this credential fingerprint.
func (s *MemoryResolutionStore) GetResolution(_ context.Context, keyID, fingerprint secretstore.ServerKeyID) (secretstore.Address, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	address, found := s.entries[resolutionKey(keyID, fingerprint)]
	return address, found, nil
}

// SaveResolution caches a derived address.
func (s *MemoryResolutionStore) SaveResolution(_ context.Context, keyID, fingerprint secretstore.ServerKeyID, address secretstore.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[resolutionKey(keyID, fingerprint)] = address
	return nil
}
