package secretstore

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/ethereum/go-ethereum/common"
)

// ServerKeyID uniquely identifies one key operation (server key or document
// key) across all participating key servers. It is assigned by the requesting
// side and never reused.
type ServerKeyID = common.Hash

// Address is an on-chain identity: a key server, a requester, or the
// service contract itself.
type Address = common.Address

// AddressLength is the byte length of an on-chain address.
const AddressLength = common.AddressLength

// ServerKeyGenerationArtifacts carries the result of a completed server key
// generation session.
type ServerKeyGenerationArtifacts struct {
	// Key is the generated server public key.
	Key *btcec.PublicKey
}

// ServerKeyRetrievalArtifacts carries the result of a completed server key
// retrieval session.
type ServerKeyRetrievalArtifacts struct {
	// Key is the retrieved server public key.
	Key *btcec.PublicKey
	// Threshold is the session threshold the key was generated with.
	Threshold int
}

// DocumentKeyCommonRetrievalArtifacts carries the requester-independent part
// of a document key retrieval.
type DocumentKeyCommonRetrievalArtifacts struct {
	// CommonPoint is the common part of the encrypted document key.
	CommonPoint *btcec.PublicKey
	// Threshold is the session threshold the document key was stored with.
	Threshold int
}

// DocumentKeyShadowRetrievalArtifacts carries the personal (per-requester)
// part of a document key shadow retrieval. Every participating key server
// contributes one coefficient, keyed by its own address.
type DocumentKeyShadowRetrievalArtifacts struct {
	// EncryptedDocumentKey is the document key encrypted with the
	// requester's public key.
	EncryptedDocumentKey []byte
	// ParticipantsCoefficients maps each participant to its decryption
	// shadow coefficient.
	ParticipantsCoefficients map[Address][]byte
}
