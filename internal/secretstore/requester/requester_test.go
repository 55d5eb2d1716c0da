package requester

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressFromSignature(t *testing.T) {
	privateKey, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	keyID := common.HexToHash("0x0102030405060708091011121314151617181920212223242526272829303132")

	signature, err := ethcrypto.Sign(keyID.Bytes(), privateKey)
	require.NoError(t, err)

	address, err := FromSignature(signature).Address(keyID)
	require.NoError(t, err)
	assert.Equal(t, ethcrypto.PubkeyToAddress(privateKey.PublicKey), address)
}

func TestAddressFromSignatureIsBoundToKeyID(t *testing.T) {
	privateKey, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	keyID := common.HexToHash("0x01")
	otherKeyID := common.HexToHash("0x02")

	signature, err := ethcrypto.Sign(keyID.Bytes(), privateKey)
	require.NoError(t, err)

	// Recovering against a different key id must not yield the signer,
	// whether recovery fails outright or produces an unrelated key.
	address, err := FromSignature(signature).Address(otherKeyID)
	signer := ethcrypto.PubkeyToAddress(privateKey.PublicKey)
	assert.True(t, err != nil || address != signer,
		"credential bound to one key id resolved to the signer for another")
}

func TestAddressFromSignatureInvalidLength(t *testing.T) {
	_, err := FromSignature([]byte{1, 2, 3}).Address(common.HexToHash("0x01"))
	assert.Error(t, err)
}

func TestAddressFromPublicKey(t *testing.T) {
	privateKey, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	publicKey, err := btcec.ParsePubKey(ethcrypto.FromECDSAPub(&privateKey.PublicKey))
	require.NoError(t, err)

	address, err := FromPublicKey(publicKey).Address(common.HexToHash("0x01"))
	require.NoError(t, err)
	assert.Equal(t, ethcrypto.PubkeyToAddress(privateKey.PublicKey), address)
}

func TestAddressFromAddress(t *testing.T) {
	expected := common.HexToAddress("0xdeadbeef00000000000000000000000000000000")

	address, err := FromAddress(expected).Address(common.HexToHash("0x01"))
	require.NoError(t, err)
	assert.Equal(t, expected, address)
}

func TestAddressFromEmptyCredential(t *testing.T) {
	_, err := Requester{}.Address(common.HexToHash("0x01"))
	assert.Error(t, err)
}
