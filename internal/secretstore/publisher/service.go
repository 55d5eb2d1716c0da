package publisher

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/JhinQaQ/secret-store/internal/secretstore"
	"github.com/JhinQaQ/secret-store/internal/secretstore/chain"
	"github.com/JhinQaQ/secret-store/internal/secretstore/requester"
)

// Service publishes response transactions for completed key operations.
//
// Every Publish* method checks the ledger view first: another key server may
// already have published, or this server's participation may not require a
// response at all. Only then is the contract call built and handed to the
// transaction pool. The whole pipeline runs as one unit of work on the
// executor; nothing is reported back to the caller and nothing is retried,
// since the surrounding protocol tolerates a missed confirmation.
type Service struct {
	executor   chain.Executor
	blockchain chain.Blockchain
	pool       chain.TransactionPool
	resolver   requester.Resolver
	self       secretstore.Address
	logger     zerolog.Logger
}

// NewService creates a response publisher for the key server at self.
// Host processes build the resolver with requester.NewResolverFromConfig;
// a nil resolver defaults to plain derivation without caching.
func NewService(
	executor chain.Executor,
	blockchain chain.Blockchain,
	pool chain.TransactionPool,
	resolver requester.Resolver,
	self secretstore.Address,
	logger zerolog.Logger,
) *Service {
	if resolver == nil {
		resolver = requester.NewDirectResolver()
	}
	return &Service{
		executor:   executor,
		blockchain: blockchain,
		pool:       pool,
		resolver:   resolver,
		self:       self,
		logger:     logger,
	}
}

// submitResponseTransaction schedules one conditional submission: evaluate
// the gate, and only on a positive answer build and submit the call. Every
// failure is terminal for this unit of work and surfaces as a log event only.
func (s *Service) submitResponseTransaction(
	request string,
	isResponseRequired func(ctx context.Context) (bool, error),
	prepareResponse func() (chain.SecretStoreCall, error),
) {
	logger := s.logger.With().
		Str("request", request).
		Str("invocation_id", uuid.NewString()).
		Logger()

	s.executor.Spawn(func() {
		ctx := context.Background()

		required, err := isResponseRequired(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to check if response is required")
			return
		}
		if !required {
			logger.Info().Msg("Response is not required, transaction is not submitted")
			return
		}

		call, err := prepareResponse()
		if err != nil {
			// A missing self coefficient means the session logic itself
			// misbehaved, not the environment.
			if errors.Cause(err) == chain.ErrNoSelfCoefficient {
				logger.Error().Err(err).Msg("Failed to prepare response transaction")
			} else {
				logger.Warn().Err(err).Msg("Failed to prepare response transaction")
			}
			return
		}

		transactionHash, err := s.pool.SubmitTransaction(ctx, call)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to submit response transaction")
			return
		}

		logger.Info().
			Str("tx_hash", transactionHash.Hex()).
			Msg("Submitted response transaction")
	})
}

// shadowRetrievalGate resolves the requester first and then queries the
// shadow retrieval gate with the derived address. The resolved address is
// written to out so the prepare step reuses the one successful derivation.
func (s *Service) shadowRetrievalGate(
	keyID secretstore.ServerKeyID,
	req requester.Requester,
	out *secretstore.Address,
) func(ctx context.Context) (bool, error) {
	return func(ctx context.Context) (bool, error) {
		address, err := s.resolver.Resolve(ctx, req, keyID)
		if err != nil {
			return false, errors.Wrap(err, "failed to resolve requester")
		}
		*out = address
		return s.blockchain.IsDocumentKeyShadowRetrievalResponseRequired(ctx, keyID, address, s.self)
	}
}

// PublishGeneratedServerKey publishes a server key generation success.
func (s *Service) PublishGeneratedServerKey(
	_ secretstore.Address,
	keyID secretstore.ServerKeyID,
	artifacts secretstore.ServerKeyGenerationArtifacts,
) {
	s.submitResponseTransaction(
		fmt.Sprintf("ServerKeyGenerationSuccess(%s)", keyID.Hex()),
		func(ctx context.Context) (bool, error) {
			return s.blockchain.IsServerKeyGenerationResponseRequired(ctx, keyID, s.self)
		},
		func() (chain.SecretStoreCall, error) {
			return chain.NewServerKeyGeneratedCall(keyID, artifacts.Key), nil
		},
	)
}

// PublishServerKeyGenerationError publishes a server key generation failure.
func (s *Service) PublishServerKeyGenerationError(_ secretstore.Address, keyID secretstore.ServerKeyID) {
	s.submitResponseTransaction(
		fmt.Sprintf("ServerKeyGenerationFailure(%s)", keyID.Hex()),
		func(ctx context.Context) (bool, error) {
			return s.blockchain.IsServerKeyGenerationResponseRequired(ctx, keyID, s.self)
		},
		func() (chain.SecretStoreCall, error) {
			return chain.NewServerKeyGenerationErrorCall(keyID), nil
		},
	)
}

// PublishRetrievedServerKey publishes a server key retrieval success.
func (s *Service) PublishRetrievedServerKey(
	_ secretstore.Address,
	keyID secretstore.ServerKeyID,
	artifacts secretstore.ServerKeyRetrievalArtifacts,
) {
	s.submitResponseTransaction(
		fmt.Sprintf("ServerKeyRetrievalSuccess(%s)", keyID.Hex()),
		func(ctx context.Context) (bool, error) {
			return s.blockchain.IsServerKeyRetrievalResponseRequired(ctx, keyID, s.self)
		},
		func() (chain.SecretStoreCall, error) {
			threshold, err := chain.SerializeThreshold(artifacts.Threshold)
			if err != nil {
				return chain.SecretStoreCall{}, err
			}
			return chain.NewServerKeyRetrievedCall(keyID, artifacts.Key, threshold), nil
		},
	)
}

// PublishServerKeyRetrievalError publishes a server key retrieval failure.
func (s *Service) PublishServerKeyRetrievalError(_ secretstore.Address, keyID secretstore.ServerKeyID) {
	s.submitResponseTransaction(
		fmt.Sprintf("ServerKeyRetrievalFailure(%s)", keyID.Hex()),
		func(ctx context.Context) (bool, error) {
			return s.blockchain.IsServerKeyRetrievalResponseRequired(ctx, keyID, s.self)
		},
		func() (chain.SecretStoreCall, error) {
			return chain.NewServerKeyRetrievalErrorCall(keyID), nil
		},
	)
}

// PublishStoredDocumentKey publishes a document key store success.
func (s *Service) PublishStoredDocumentKey(_ secretstore.Address, keyID secretstore.ServerKeyID) {
	s.submitResponseTransaction(
		fmt.Sprintf("DocumentKeyStoreSuccess(%s)", keyID.Hex()),
		func(ctx context.Context) (bool, error) {
			return s.blockchain.IsDocumentKeyStoreResponseRequired(ctx, keyID, s.self)
		},
		func() (chain.SecretStoreCall, error) {
			return chain.NewDocumentKeyStoredCall(keyID), nil
		},
	)
}

// PublishDocumentKeyStoreError publishes a document key store failure.
func (s *Service) PublishDocumentKeyStoreError(_ secretstore.Address, keyID secretstore.ServerKeyID) {
	s.submitResponseTransaction(
		fmt.Sprintf("DocumentKeyStoreFailure(%s)", keyID.Hex()),
		func(ctx context.Context) (bool, error) {
			return s.blockchain.IsDocumentKeyStoreResponseRequired(ctx, keyID, s.self)
		},
		func() (chain.SecretStoreCall, error) {
			return chain.NewDocumentKeyStoreErrorCall(keyID), nil
		},
	)
}

// PublishRetrievedDocumentKeyCommon publishes the common part of a document
// key retrieval for one requester.
func (s *Service) PublishRetrievedDocumentKeyCommon(
	_ secretstore.Address,
	keyID secretstore.ServerKeyID,
	req requester.Requester,
	artifacts secretstore.DocumentKeyCommonRetrievalArtifacts,
) {
	var requesterAddress secretstore.Address
	s.submitResponseTransaction(
		fmt.Sprintf("DocumentKeyCommonRetrievalSuccess(%s, %s)", keyID.Hex(), req),
		s.shadowRetrievalGate(keyID, req, &requesterAddress),
		func() (chain.SecretStoreCall, error) {
			threshold, err := chain.SerializeThreshold(artifacts.Threshold)
			if err != nil {
				return chain.SecretStoreCall{}, err
			}
			return chain.NewDocumentKeyCommonRetrievedCall(keyID, requesterAddress, artifacts.CommonPoint, threshold), nil
		},
	)
}

// PublishDocumentKeyCommonRetrievalError publishes a failed common retrieval.
func (s *Service) PublishDocumentKeyCommonRetrievalError(
	_ secretstore.Address,
	keyID secretstore.ServerKeyID,
	req requester.Requester,
) {
	var requesterAddress secretstore.Address
	s.submitResponseTransaction(
		fmt.Sprintf("DocumentKeyCommonRetrievalFailure(%s, %s)", keyID.Hex(), req),
		s.shadowRetrievalGate(keyID, req, &requesterAddress),
		func() (chain.SecretStoreCall, error) {
			return chain.NewDocumentKeyShadowRetrievalErrorCall(keyID, requesterAddress), nil
		},
	)
}

// PublishRetrievedDocumentKeyPersonal publishes the personal part of a
// document key shadow retrieval for one requester.
func (s *Service) PublishRetrievedDocumentKeyPersonal(
	_ secretstore.Address,
	keyID secretstore.ServerKeyID,
	req requester.Requester,
	artifacts secretstore.DocumentKeyShadowRetrievalArtifacts,
) {
	var requesterAddress secretstore.Address
	s.submitResponseTransaction(
		fmt.Sprintf("DocumentKeyPersonalRetrievalSuccess(%s, %s)", keyID.Hex(), req),
		s.shadowRetrievalGate(keyID, req, &requesterAddress),
		func() (chain.SecretStoreCall, error) {
			return chain.NewDocumentKeyPersonalRetrievedCall(keyID, requesterAddress, s.self, artifacts)
		},
	)
}

// PublishDocumentKeyPersonalRetrievalError publishes a failed personal
// retrieval.
func (s *Service) PublishDocumentKeyPersonalRetrievalError(
	_ secretstore.Address,
	keyID secretstore.ServerKeyID,
	req requester.Requester,
) {
	var requesterAddress secretstore.Address
	s.submitResponseTransaction(
		fmt.Sprintf("DocumentKeyPersonalRetrievalFailure(%s, %s)", keyID.Hex(), req),
		s.shadowRetrievalGate(keyID, req, &requesterAddress),
		func() (chain.SecretStoreCall, error) {
			return chain.NewDocumentKeyShadowRetrievalErrorCall(keyID, requesterAddress), nil
		},
	)
}
