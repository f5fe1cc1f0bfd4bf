// Package keyvault derives and applies keys: master password to vault key,
// entry key wrapped under a view password, and secrets encrypted under an
// entry key. It is the one place password-shaped and key-shaped bytes get
// turned into each other.
package keyvault

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/ckvault/ckvault/internal/primitives"
	"github.com/ckvault/ckvault/internal/secure"
)

// ErrSecondaryPasswordWrong covers both AEAD failure and a decoded length
// that isn't 32 bytes; the two are folded into one error so a wrong view
// password can't be distinguished from a corrupted wrap by timing or
// error shape.
var ErrSecondaryPasswordWrong = errors.New("secondary password is wrong")

// Wrapped is a key (or secret) sealed under some other key, with the
// nonce and salt needed to unseal it.
type Wrapped struct {
	Ciphertext []byte
	Nonce      []byte
	Salt       []byte
}

// DeriveVaultKey computes K_v = derive_key(master_pw, salt_v, params_v).
func DeriveVaultKey(masterPW []byte, salt []byte, params primitives.Params) (*secure.Bytes, error) {
	key, err := primitives.DeriveKey(masterPW, salt, params)
	if err != nil {
		return nil, err
	}
	return secure.NewBytes(key), nil
}

// WrapEntryKey generates a random 32-byte entry key K_e and wraps it under
// a key derived from viewPW with the light KDF params. The salt used for
// that derivation is freshly generated and returned alongside the wrap so
// callers have everything needed to persist it.
func WrapEntryKey(viewPW []byte) (entryKey *secure.Bytes, wrap Wrapped, err error) {
	saltW, err := primitives.RandomSalt()
	if err != nil {
		return nil, Wrapped{}, err
	}
	kw, err := primitives.DeriveKey(viewPW, saltW, primitives.LightParams())
	if err != nil {
		return nil, Wrapped{}, err
	}
	defer secure.Wipe(kw)

	ke, err := primitives.RandomBytes(primitives.KeyLength)
	if err != nil {
		return nil, Wrapped{}, err
	}

	nonceW, err := primitives.RandomNonce()
	if err != nil {
		secure.Wipe(ke)
		return nil, Wrapped{}, err
	}

	ct, err := primitives.AEADEncrypt(kw, nonceW, ke)
	if err != nil {
		secure.Wipe(ke)
		return nil, Wrapped{}, fmt.Errorf("failed to wrap entry key: %w", err)
	}

	return secure.NewBytes(ke), Wrapped{Ciphertext: ct, Nonce: nonceW, Salt: saltW}, nil
}

// UnwrapEntryKey inverts WrapEntryKey. An AEAD failure or a decoded length
// other than 32 bytes both surface as ErrSecondaryPasswordWrong.
func UnwrapEntryKey(wrap Wrapped, viewPW []byte) (*secure.Bytes, error) {
	kw, err := primitives.DeriveKey(viewPW, wrap.Salt, primitives.LightParams())
	if err != nil {
		return nil, err
	}
	defer secure.Wipe(kw)

	ke, err := primitives.AEADDecrypt(kw, wrap.Nonce, wrap.Ciphertext)
	if err != nil {
		return nil, ErrSecondaryPasswordWrong
	}
	if len(ke) != primitives.KeyLength {
		secure.Wipe(ke)
		return nil, ErrSecondaryPasswordWrong
	}
	return secure.NewBytes(ke), nil
}

// EncryptSecret seals plaintext (a UTF-8 string) under an entry key with a
// fresh nonce.
func EncryptSecret(entryKey []byte, plaintext string) (ciphertext, nonce []byte, err error) {
	nonce, err = primitives.RandomNonce()
	if err != nil {
		return nil, nil, err
	}
	ct, err := primitives.AEADEncrypt(entryKey, nonce, []byte(plaintext))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encrypt secret: %w", err)
	}
	return ct, nonce, nil
}

// DecryptSecret opens a secret sealed by EncryptSecret and validates the
// result is UTF-8. The plaintext is returned wrapped in a secure.String so
// the caller controls when it's wiped rather than leaving it to live as an
// ordinary Go string for the rest of its scope; callers must Close it.
func DecryptSecret(entryKey, nonce, ciphertext []byte) (*secure.String, error) {
	pt, err := primitives.AEADDecrypt(entryKey, nonce, ciphertext)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(pt) {
		secure.Wipe(pt)
		return nil, fmt.Errorf("decrypted secret is not valid utf-8")
	}
	return secure.NewString(pt), nil
}
