package chain

import (
	"bytes"
	"sort"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/pkg/errors"

	"github.com/JhinQaQ/secret-store/internal/secretstore"
)

// ErrNoSelfCoefficient signals that a shadow retrieval session completed
// without producing a coefficient for this key server. That can only happen
// through a session-logic defect, never through environment conditions.
var ErrNoSelfCoefficient = errors.New("DocumentKeyPersonalRetrieval session has completed without self coefficient")

// CallKind selects the service contract method a call targets.
type CallKind int

const (
	CallServerKeyGenerated CallKind = iota
	CallServerKeyGenerationError
	CallServerKeyRetrieved
	CallServerKeyRetrievalError
	CallDocumentKeyStored
	CallDocumentKeyStoreError
	CallDocumentKeyCommonRetrieved
	CallDocumentKeyPersonalRetrieved
	CallDocumentKeyShadowRetrievalError
)

// String returns the contract method name for the kind.
func (k CallKind) String() string {
	switch k {
	case CallServerKeyGenerated:
		return "ServerKeyGenerated"
	case CallServerKeyGenerationError:
		return "ServerKeyGenerationError"
	case CallServerKeyRetrieved:
		return "ServerKeyRetrieved"
	case CallServerKeyRetrievalError:
		return "ServerKeyRetrievalError"
	case CallDocumentKeyStored:
		return "DocumentKeyStored"
	case CallDocumentKeyStoreError:
		return "DocumentKeyStoreError"
	case CallDocumentKeyCommonRetrieved:
		return "DocumentKeyCommonRetrieved"
	case CallDocumentKeyPersonalRetrieved:
		return "DocumentKeyPersonalRetrieved"
	case CallDocumentKeyShadowRetrievalError:
		return "DocumentKeyShadowRetrievalError"
	default:
		return "Unknown"
	}
}

// SecretStoreCall is one response ready for submission to the service
// contract. Kind selects which of the remaining fields carry data; the rest
// stay zero.
type SecretStoreCall struct {
	Kind  CallKind
	KeyID secretstore.ServerKeyID

	// Requester is set for document key retrieval responses.
	Requester secretstore.Address
	// Key is set for server key generation/retrieval successes.
	Key *btcec.PublicKey
	// CommonPoint is set for common retrieval successes.
	CommonPoint *btcec.PublicKey
	// Threshold is set wherever the contract encodes the session threshold.
	Threshold uint8
	// Participants, EncryptedDocumentKey and SelfCoefficient are set for
	// personal retrieval successes.
	Participants         []secretstore.Address
	EncryptedDocumentKey []byte
	SelfCoefficient      []byte
}

// NewServerKeyGeneratedCall confirms a generated server key.
func NewServerKeyGeneratedCall(keyID secretstore.ServerKeyID, key *btcec.PublicKey) SecretStoreCall {
	return SecretStoreCall{Kind: CallServerKeyGenerated, KeyID: keyID, Key: key}
}

// NewServerKeyGenerationErrorCall reports a failed server key generation.
func NewServerKeyGenerationErrorCall(keyID secretstore.ServerKeyID) SecretStoreCall {
	return SecretStoreCall{Kind: CallServerKeyGenerationError, KeyID: keyID}
}

// NewServerKeyRetrievedCall confirms a retrieved server key.
func NewServerKeyRetrievedCall(keyID secretstore.ServerKeyID, key *btcec.PublicKey, threshold uint8) SecretStoreCall {
	return SecretStoreCall{Kind: CallServerKeyRetrieved, KeyID: keyID, Key: key, Threshold: threshold}
}

// NewServerKeyRetrievalErrorCall reports a failed server key retrieval.
func NewServerKeyRetrievalErrorCall(keyID secretstore.ServerKeyID) SecretStoreCall {
	return SecretStoreCall{Kind: CallServerKeyRetrievalError, KeyID: keyID}
}

// NewDocumentKeyStoredCall confirms a stored document key.
func NewDocumentKeyStoredCall(keyID secretstore.ServerKeyID) SecretStoreCall {
	return SecretStoreCall{Kind: CallDocumentKeyStored, KeyID: keyID}
}

// NewDocumentKeyStoreErrorCall reports a failed document key store.
func NewDocumentKeyStoreErrorCall(keyID secretstore.ServerKeyID) SecretStoreCall {
	return SecretStoreCall{Kind: CallDocumentKeyStoreError, KeyID: keyID}
}

// NewDocumentKeyCommonRetrievedCall confirms the common part of a document
// key retrieval for one requester.
func NewDocumentKeyCommonRetrievedCall(keyID secretstore.ServerKeyID, requester secretstore.Address, commonPoint *btcec.PublicKey, threshold uint8) SecretStoreCall {
	return SecretStoreCall{
		Kind:        CallDocumentKeyCommonRetrieved,
		KeyID:       keyID,
		Requester:   requester,
		CommonPoint: commonPoint,
		Threshold:   threshold,
	}
}

// NewDocumentKeyPersonalRetrievedCall confirms the personal part of a shadow
// retrieval. The call carries this key server's own coefficient, looked up in
// the session's participant map; a map without it is rejected with
// ErrNoSelfCoefficient.
func NewDocumentKeyPersonalRetrievedCall(
	keyID secretstore.ServerKeyID,
	requester secretstore.Address,
	keyServer secretstore.Address,
	artifacts secretstore.DocumentKeyShadowRetrievalArtifacts,
) (SecretStoreCall, error) {
	selfCoefficient, ok := artifacts.ParticipantsCoefficients[keyServer]
	if !ok {
		return SecretStoreCall{}, ErrNoSelfCoefficient
	}

	participants := make([]secretstore.Address, 0, len(artifacts.ParticipantsCoefficients))
	for participant := range artifacts.ParticipantsCoefficients {
		participants = append(participants, participant)
	}
	// Map iteration order is random; the contract call must be reproducible.
	sort.Slice(participants, func(i, j int) bool {
		return bytes.Compare(participants[i].Bytes(), participants[j].Bytes()) < 0
	})

	return SecretStoreCall{
		Kind:                 CallDocumentKeyPersonalRetrieved,
		KeyID:                keyID,
		Requester:            requester,
		Participants:         participants,
		EncryptedDocumentKey: artifacts.EncryptedDocumentKey,
		SelfCoefficient:      selfCoefficient,
	}, nil
}

// NewDocumentKeyShadowRetrievalErrorCall reports a failed document key
// retrieval, covering both the common and the personal phase.
func NewDocumentKeyShadowRetrievalErrorCall(keyID secretstore.ServerKeyID, requester secretstore.Address) SecretStoreCall {
	return SecretStoreCall{Kind: CallDocumentKeyShadowRetrievalError, KeyID: keyID, Requester: requester}
}
