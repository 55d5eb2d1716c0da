package storage

import (
	"context"

	"github.com/JhinQaQ/secret-store/internal/secretstore"
)

// ResolutionStore caches requester addresses derived from credentials.
// Entries are keyed by the operation's key id plus a fingerprint of the
// credential, so cached results never cross operations.
type ResolutionStore interface {
	// GetResolution returns the cached address, with found=false on a miss.
	GetResolution(ctx context.Context, keyID secretstore.ServerKeyID, fingerprint secretstore.ServerKeyID) (address secretstore.Address, found bool, err error)
	// SaveResolution caches a successfully derived address.
	SaveResolution(ctx context.Context, keyID secretstore.ServerKeyID, fingerprint secretstore.ServerKeyID, address secretstore.Address) error
}
