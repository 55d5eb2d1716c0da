package chain

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/JhinQaQ/secret-store/internal/secretstore"
)

// TransactionHash identifies a submitted response transaction. It is opaque
// to the publisher and only ever logged.
type TransactionHash = common.Hash

// Blockchain is the ledger view consulted before spending a transaction on a
// response. Each query answers whether the given key server still owes a
// response for the operation; requester-scoped operations pass the resolved
// requester address as well.
type Blockchain interface {
	IsServerKeyGenerationResponseRequired(ctx context.Context, keyID secretstore.ServerKeyID, keyServer secretstore.Address) (bool, error)
	IsServerKeyRetrievalResponseRequired(ctx context.Context, keyID secretstore.ServerKeyID, keyServer secretstore.Address) (bool, error)
	IsDocumentKeyStoreResponseRequired(ctx context.Context, keyID secretstore.ServerKeyID, keyServer secretstore.Address) (bool, error)
	IsDocumentKeyShadowRetrievalResponseRequired(ctx context.Context, keyID secretstore.ServerKeyID, requester secretstore.Address, keyServer secretstore.Address) (bool, error)
}

// TransactionPool accepts prepared service contract calls for inclusion.
// Fee estimation, nonce management and inclusion tracking all live behind
// this interface.
type TransactionPool interface {
	SubmitTransaction(ctx context.Context, call SecretStoreCall) (TransactionHash, error)
}

// Executor runs independent fire-and-forget units of work. The publisher
// never waits for a spawned unit and never observes its result.
type Executor interface {
	Spawn(task func())
}

// GoExecutor runs every unit of work on its own goroutine.
type GoExecutor struct{}

// NewGoExecutor creates a goroutine-per-task executor.
func NewGoExecutor() Executor {
	return &GoExecutor{}
}

// Spawn runs the task on a new goroutine.
func (e *GoExecutor) Spawn(task func()) {
	go task()
}
