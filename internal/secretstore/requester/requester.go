package requester

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/JhinQaQ/secret-store/internal/secretstore"
)

// Requester is the credential supplied by the principal a document key
// operation was performed for. Exactly one of the three forms is set:
// a recoverable signature over the key id, a raw public key, or a plain
// on-chain address.
type Requester struct {
	signature []byte
	publicKey *btcec.PublicKey
	address   *secretstore.Address
}

// FromSignature builds a requester from a 65-byte recoverable secp256k1
// signature over the key id.
func FromSignature(signature []byte) Requester {
	return Requester{signature: signature}
}

// FromPublicKey builds a requester from a secp256k1 public key.
func FromPublicKey(publicKey *btcec.PublicKey) Requester {
	return Requester{publicKey: publicKey}
}

// FromAddress builds a requester from an already-known on-chain address.
func FromAddress(address secretstore.Address) Requester {
	return Requester{address: &address}
}

// Address derives the requester's on-chain address, bound to the given key
// id. The signature form recovers the signing key from the key id itself, so
// a credential resolved for one operation cannot be replayed against another.
func (r Requester) Address(keyID secretstore.ServerKeyID) (secretstore.Address, error) {
	switch {
	case r.signature != nil:
		if len(r.signature) != ethcrypto.SignatureLength {
			return secretstore.Address{}, errors.Errorf(
				"invalid requester signature length: %d", len(r.signature))
		}
		publicKey, err := ethcrypto.SigToPub(keyID.Bytes(), r.signature)
		if err != nil {
			return secretstore.Address{}, errors.Wrap(err, "failed to recover requester public key")
		}
		return ethcrypto.PubkeyToAddress(*publicKey), nil
	case r.publicKey != nil:
		return ethcrypto.PubkeyToAddress(*r.publicKey.ToECDSA()), nil
	case r.address != nil:
		return *r.address, nil
	default:
		return secretstore.Address{}, errors.New("empty requester credential")
	}
}

// String formats the credential for log output without leaking the full
// signature.
func (r Requester) String() string {
	switch {
	case r.signature != nil:
		return fmt.Sprintf("Signature(%s..)", hex.EncodeToString(firstBytes(r.signature, 8)))
	case r.publicKey != nil:
		return fmt.Sprintf("Public(%s)", hex.EncodeToString(r.publicKey.SerializeCompressed()))
	case r.address != nil:
		return fmt.Sprintf("Address(%s)", r.address.Hex())
	default:
		return "Empty"
	}
}

func firstBytes(b []byte, n int) []byte {
	if len(b) < n {
		return b
	}
	return b[:n]
}
