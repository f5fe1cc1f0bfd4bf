package address

import (
	"crypto/sha256"
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/mr-tron/base58"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // required for HASH160; dropped from stdlib, kept in x/crypto
)

// BtcDerivationPath is m/84'/0'/0'/0/0, the BIP-84 (native segwit)
// default account path.
var BtcDerivationPath = []uint32{Hardened(84), Hardened(0), Hardened(0), 0, 0}

// decodeBase58Check implements the base58check convention (version byte +
// payload + 4-byte double-SHA256 checksum) that WIF relies on.
// mr-tron/base58 only implements the base58 alphabet itself, not this
// convention, so the checksum wrapper is inline. See DESIGN.md.
func decodeBase58Check(s string) (payload []byte, err error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return nil, err
	}
	if len(raw) < 5 {
		return nil, errors.New("base58check payload too short")
	}
	body, checksum := raw[:len(raw)-4], raw[len(raw)-4:]
	h1 := sha256.Sum256(body)
	h2 := sha256.Sum256(h1[:])
	for i := 0; i < 4; i++ {
		if h2[i] != checksum[i] {
			return nil, errors.New("base58check checksum mismatch")
		}
	}
	return body, nil
}

// wifDecode parses a WIF-encoded private key, returning the 32-byte
// scalar and whether it indicates a compressed public key.
func wifDecode(wif string) (scalar [32]byte, compressed bool, err error) {
	body, err := decodeBase58Check(wif)
	if err != nil {
		return scalar, false, err
	}
	// body = version(1) || key(32) [|| 0x01 compression flag]
	switch len(body) {
	case 33:
		compressed = false
	case 34:
		if body[33] != 0x01 {
			return scalar, false, errors.New("invalid wif compression flag")
		}
		compressed = true
	default:
		return scalar, false, errors.New("invalid wif payload length")
	}
	copy(scalar[:], body[1:33])
	return scalar, compressed, nil
}

// hash160 is SHA-256 followed by RIPEMD-160, the digest Bitcoin uses to
// shrink a public key into a witness program.
func hash160(data []byte) []byte {
	sha := sha256.Sum256(data)
	r := ripemd160.New()
	r.Write(sha[:])
	return r.Sum(nil)
}

func btcAddressFromScalar(scalar [32]byte) (string, error) {
	priv := secp256k1.PrivKeyFromBytes(scalar[:])
	pub := priv.PubKey().SerializeCompressed()
	program := hash160(pub)
	return encodeSegwitAddress("bc", program)
}

// BtcFromPrivateKey parses a WIF-encoded private key and produces a
// mainnet P2WPKH address.
func BtcFromPrivateKey(wif string) (string, error) {
	scalar, _, err := wifDecode(wif)
	if err != nil {
		return "", err
	}
	return btcAddressFromScalar(scalar)
}

// BtcFromSeedPhrase validates a BIP-39 mnemonic, derives its seed, walks
// BtcDerivationPath, and produces a mainnet P2WPKH address.
func BtcFromSeedPhrase(mnemonic string) (string, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return "", errors.New("invalid bip-39 mnemonic")
	}
	seed := bip39.NewSeed(mnemonic, "")
	scalar, err := derivePath(seed, BtcDerivationPath)
	if err != nil {
		return "", err
	}
	return btcAddressFromScalar(scalar)
}
