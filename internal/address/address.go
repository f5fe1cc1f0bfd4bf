// Package address derives public blockchain addresses from private keys
// or BIP-39 seed phrases, for Ethereum, Bitcoin, and Solana. BIP-32
// derivation is implemented inline (bip32.go) rather than through an
// opaque HD-wallet SDK.
package address

import (
	"fmt"
	"strings"

	"github.com/ckvault/ckvault/internal/vaultmodel"
)

// DeriveAddress is a pure function: (secret, secret_type, network) ->
// (address, ok, err). Unsupported (secret_type, network) pairs return
// ok=false with no error; errors are reserved for malformed input on a
// supported pair.
func DeriveAddress(secret string, secretType vaultmodel.SecretType, network string) (string, bool, error) {
	net := strings.ToLower(strings.TrimSpace(network))

	switch secretType {
	case vaultmodel.PrivateKey:
		switch net {
		case "ethereum", "eth":
			addr, err := EthFromPrivateKey(secret)
			return result(addr, err)
		case "bitcoin", "btc":
			addr, err := BtcFromPrivateKey(secret)
			return result(addr, err)
		case "solana", "sol":
			addr, err := SolFromPrivateKey(secret)
			return result(addr, err)
		}
	case vaultmodel.SeedPhrase:
		switch net {
		case "ethereum", "eth":
			addr, err := EthFromSeedPhrase(secret)
			return result(addr, err)
		case "bitcoin", "btc":
			addr, err := BtcFromSeedPhrase(secret)
			return result(addr, err)
		case "solana", "sol":
			addr, err := SolFromSeedPhrase(secret)
			return result(addr, err)
		}
	}
	return "", false, nil
}

func result(addr string, err error) (string, bool, error) {
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrDerivationFailed, err)
	}
	return addr, true, nil
}
