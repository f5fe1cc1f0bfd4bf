package address

import (
	"encoding/hex"
	"errors"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/sha3"
)

// EthDerivationPath is m/44'/60'/0'/0/0, the default (and only, per spec)
// Ethereum account path.
var EthDerivationPath = []uint32{Hardened(44), Hardened(60), Hardened(0), 0, 0}

func ethAddressFromScalar(scalar [32]byte) (string, error) {
	priv := secp256k1.PrivKeyFromBytes(scalar[:])
	pub := priv.PubKey().SerializeUncompressed() // 0x04 || X(32) || Y(32)
	if len(pub) != 65 {
		return "", errors.New("unexpected public key length")
	}
	h := sha3.NewLegacyKeccak256()
	h.Write(pub[1:])
	digest := h.Sum(nil)
	addr := digest[len(digest)-20:]
	return "0x" + hex.EncodeToString(addr), nil
}

// EthFromPrivateKey parses a hex-encoded secp256k1 scalar (0x-prefixed or
// not) and derives the corresponding address.
func EthFromPrivateKey(hexKey string) (string, error) {
	hexKey = strings.TrimPrefix(hexKey, "0x")
	hexKey = strings.TrimPrefix(hexKey, "0X")
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return "", errors.New("invalid hex private key")
	}
	if len(raw) != 32 {
		return "", errors.New("private key must be 32 bytes")
	}
	var scalar [32]byte
	copy(scalar[:], raw)
	return ethAddressFromScalar(scalar)
}

// EthFromSeedPhrase validates a BIP-39 mnemonic, derives its 64-byte seed
// (empty passphrase), walks EthDerivationPath, and derives the address.
func EthFromSeedPhrase(mnemonic string) (string, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return "", errors.New("invalid bip-39 mnemonic")
	}
	seed := bip39.NewSeed(mnemonic, "")
	scalar, err := derivePath(seed, EthDerivationPath)
	if err != nil {
		return "", err
	}
	return ethAddressFromScalar(scalar)
}
