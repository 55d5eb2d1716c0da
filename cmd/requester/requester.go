package requester

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/JhinQaQ/secret-store/internal/config"
	"github.com/JhinQaQ/secret-store/internal/secretstore"
	"github.com/JhinQaQ/secret-store/internal/secretstore/requester"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "requester",
		Short: "Requester credential tools",
	}

	cmd.AddCommand(newResolveCmd())
	return cmd
}

func newResolveCmd() *cobra.Command {
	var keyIDHex string
	var signatureHex string
	var publicKeyHex string
	var addressHex string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Derive the on-chain address behind a requester credential",
		Run: func(cmd *cobra.Command, args []string) {
			req, keyID, err := parseCredential(keyIDHex, signatureHex, publicKeyHex, addressHex)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to parse requester credential")
			}

			resolver := requester.NewResolverFromConfig(config.DefaultServiceConfigFromEnv().Redis)
			address, err := resolver.Resolve(cmd.Context(), req, keyID)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to resolve requester")
			}
			fmt.Println(address.Hex())
		},
	}

	cmd.Flags().StringVar(&keyIDHex, "key-id", "", "Hex-encoded 32-byte key id the credential is bound to")
	cmd.Flags().StringVar(&signatureHex, "signature", "", "Hex-encoded 65-byte recoverable signature over the key id")
	cmd.Flags().StringVar(&publicKeyHex, "public-key", "", "Hex-encoded secp256k1 public key")
	cmd.Flags().StringVar(&addressHex, "address", "", "Hex-encoded 20-byte address")
	cmd.MarkFlagRequired("key-id")

	return cmd
}

func parseCredential(keyIDHex, signatureHex, publicKeyHex, addressHex string) (requester.Requester, secretstore.ServerKeyID, error) {
	keyIDBytes, err := decodeHex(keyIDHex)
	if err != nil {
		return requester.Requester{}, secretstore.ServerKeyID{}, errors.Wrap(err, "invalid key id")
	}
	if len(keyIDBytes) != common.HashLength {
		return requester.Requester{}, secretstore.ServerKeyID{}, errors.Errorf("key id must be %d bytes, got %d", common.HashLength, len(keyIDBytes))
	}
	keyID := common.BytesToHash(keyIDBytes)

	switch {
	case signatureHex != "":
		signature, err := decodeHex(signatureHex)
		if err != nil {
			return requester.Requester{}, secretstore.ServerKeyID{}, errors.Wrap(err, "invalid signature")
		}
		return requester.FromSignature(signature), keyID, nil
	case publicKeyHex != "":
		publicKeyBytes, err := decodeHex(publicKeyHex)
		if err != nil {
			return requester.Requester{}, secretstore.ServerKeyID{}, errors.Wrap(err, "invalid public key")
		}
		publicKey, err := btcec.ParsePubKey(publicKeyBytes)
		if err != nil {
			return requester.Requester{}, secretstore.ServerKeyID{}, errors.Wrap(err, "failed to parse public key")
		}
		return requester.FromPublicKey(publicKey), keyID, nil
	case addressHex != "":
		if !common.IsHexAddress(addressHex) {
			return requester.Requester{}, secretstore.ServerKeyID{}, errors.New("invalid address")
		}
		return requester.FromAddress(common.HexToAddress(addressHex)), keyID, nil
	default:
		return requester.Requester{}, secretstore.ServerKeyID{}, errors.New("one of --signature, --public-key or --address is required")
	}
}

func decodeHex(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(s, "0x"))
}
