// Package primitives implements the three cryptographic services the rest
// of the vault is built on: authenticated encryption, password-based key
// derivation, and CSRNG salt/nonce generation. Nothing here touches
// storage or the entry model.
package primitives

import (
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"strconv"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	KeyLength   = 32 // AEAD key / Argon2id output length
	SaltLength  = 32
	NonceLength = chacha20poly1305.NonceSizeX // 24 bytes
)

var (
	ErrInvalidKeyLength   = errors.New("invalid key length")
	ErrInvalidNonceLength = errors.New("invalid nonce length")
	ErrInvalidSaltLength  = errors.New("invalid salt length")
	ErrDecryptionFailed   = errors.New("decryption failed")
	ErrInvalidCiphertext  = errors.New("invalid ciphertext length")
)

// Params bundles the three Argon2id cost factors. The on-disk header
// stores these per-file so a vault written under stronger parameters
// stays readable even after the defaults change.
type Params struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
}

// MasterParams returns the default cost for deriving the master vault key.
func MasterParams() Params {
	return Params{MemoryKiB: 65536, Iterations: 3, Parallelism: 4}
}

// LightParams returns the default cost for interactive per-entry and
// recovery-answer wrapping, cheaper since these run on every entry view.
// Set CKVAULT_TEST_KDF=1 to collapse this to (1024, 1, 1) for fast tests,
// mirroring pass-cli's PASS_CLI_ITERATIONS override.
func LightParams() Params {
	if os.Getenv("CKVAULT_TEST_KDF") != "" {
		return Params{MemoryKiB: 1024, Iterations: 1, Parallelism: 1}
	}
	return Params{MemoryKiB: 16384, Iterations: 2, Parallelism: 1}
}

// RandomSalt returns a fresh 32-byte salt from a CSRNG.
func RandomSalt() ([]byte, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// RandomNonce returns a fresh 24-byte XChaCha20-Poly1305 nonce.
func RandomNonce() ([]byte, error) {
	nonce := make([]byte, NonceLength)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return nonce, nil
}

// RandomBytes returns length cryptographically random bytes.
func RandomBytes(length int) ([]byte, error) {
	if length <= 0 {
		return nil, errors.New("invalid length")
	}
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}

// DeriveKey runs Argon2id over password with the given salt and cost
// parameters, producing a 32-byte key. It is a pure function of its
// inputs: same password, salt and params always yield the same key.
func DeriveKey(password []byte, salt []byte, params Params) ([]byte, error) {
	if len(salt) != SaltLength {
		return nil, ErrInvalidSaltLength
	}
	return argon2.IDKey(password, salt, params.Iterations, params.MemoryKiB, params.Parallelism, KeyLength), nil
}

// AEADEncrypt seals plaintext under key and nonce with XChaCha20-Poly1305.
// Associated data is empty; the 16-byte tag is appended to the returned
// ciphertext.
func AEADEncrypt(key, nonce, plaintext []byte) ([]byte, error) {
	if len(key) != KeyLength {
		return nil, ErrInvalidKeyLength
	}
	if len(nonce) != NonceLength {
		return nil, ErrInvalidNonceLength
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create aead: %w", err)
	}
	return aead.Seal(nil, nonce, plaintext, nil), nil
}

// AEADDecrypt opens a ciphertext produced by AEADEncrypt. Tag verification
// is constant-time, performed by the underlying AEAD implementation.
func AEADDecrypt(key, nonce, ciphertext []byte) ([]byte, error) {
	if len(key) != KeyLength {
		return nil, ErrInvalidKeyLength
	}
	if len(nonce) != NonceLength {
		return nil, ErrInvalidNonceLength
	}
	if len(ciphertext) < chacha20poly1305.Overhead {
		return nil, ErrInvalidCiphertext
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create aead: %w", err)
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// ParamsFromEnv lets callers express an iteration override the way
// pass-cli's GetIterations does: a positive integer in envVar replaces
// fallback's Iterations. It has no effect on MasterParams/LightParams
// themselves.
func ParamsFromEnv(envVar string, fallback Params) Params {
	v := os.Getenv(envVar)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	fallback.Iterations = uint32(n)
	return fallback
}
