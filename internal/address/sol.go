package address

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/tyler-smith/go-bip39"
)

// solSeedFromPrivateKey accepts the three formats spec.md names: input
// starting with "[" is parsed only as a JSON array of integers (length >=
// 32); anything else is tried as base58 (64 or 32 bytes) and then as hex
// (32 or 64 bytes). In every format the first 32 bytes are taken as the
// Ed25519 seed.
func solSeedFromPrivateKey(input string) ([]byte, error) {
	trimmed := strings.TrimSpace(input)

	if strings.HasPrefix(trimmed, "[") {
		var nums []int
		if err := json.Unmarshal([]byte(trimmed), &nums); err == nil && len(nums) >= 32 {
			raw := make([]byte, len(nums))
			for i, n := range nums {
				if n < 0 || n > 255 {
					return nil, errors.New("invalid byte value in solana key array")
				}
				raw[i] = byte(n)
			}
			return raw[:32], nil
		}
		return nil, errors.New("invalid solana private key json array")
	}

	if raw, err := base58.Decode(trimmed); err == nil && (len(raw) == 64 || len(raw) == 32) {
		return raw[:32], nil
	}

	hexStr := strings.TrimPrefix(trimmed, "0x")
	if raw, err := hex.DecodeString(hexStr); err == nil && (len(raw) == 32 || len(raw) == 64) {
		return raw[:32], nil
	}

	return nil, errors.New("unrecognised solana private key format")
}

func solAddressFromSeed(seed []byte) (string, error) {
	if len(seed) != ed25519.SeedSize {
		return "", errors.New("invalid ed25519 seed length")
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	return base58.Encode(pub), nil
}

// SolFromPrivateKey tries each supported private-key format in turn and
// base58-encodes the resulting Ed25519 public key.
func SolFromPrivateKey(input string) (string, error) {
	seed, err := solSeedFromPrivateKey(input)
	if err != nil {
		return "", err
	}
	return solAddressFromSeed(seed)
}

// SolFromSeedPhrase validates a BIP-39 mnemonic, takes the first 32 bytes
// of its seed directly as the Ed25519 seed — the minimal solana-keygen
// path; BIP-44-Ed25519 derivation used by other wallets is out of scope.
func SolFromSeedPhrase(mnemonic string) (string, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return "", errors.New("invalid bip-39 mnemonic")
	}
	seed := bip39.NewSeed(mnemonic, "")
	return solAddressFromSeed(seed[:32])
}
