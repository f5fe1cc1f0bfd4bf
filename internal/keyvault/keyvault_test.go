package keyvault

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ckvault/ckvault/internal/primitives"
)

func TestWrapUnwrapEntryKeyRoundTrip(t *testing.T) {
	entryKey, wrap, err := WrapEntryKey([]byte("view-password"))
	require.NoError(t, err)
	defer entryKey.Close()

	recovered, err := UnwrapEntryKey(wrap, []byte("view-password"))
	require.NoError(t, err)
	defer recovered.Close()

	assert.Equal(t, entryKey.Bytes(), recovered.Bytes())
}

func TestUnwrapEntryKeyWrongPassword(t *testing.T) {
	entryKey, wrap, err := WrapEntryKey([]byte("view-password"))
	require.NoError(t, err)
	entryKey.Close()

	_, err = UnwrapEntryKey(wrap, []byte("not-it"))
	assert.ErrorIs(t, err, ErrSecondaryPasswordWrong)
}

func TestEncryptDecryptSecretRoundTrip(t *testing.T) {
	key := make([]byte, primitives.KeyLength)
	ct, nonce, err := EncryptSecret(key, "correct horse battery staple")
	require.NoError(t, err)

	pt, err := DecryptSecret(key, nonce, ct)
	require.NoError(t, err)
	defer pt.Close()
	assert.Equal(t, "correct horse battery staple", string(pt.Bytes()))
}

func TestDeriveVaultKeyDeterministic(t *testing.T) {
	salt, err := primitives.RandomSalt()
	require.NoError(t, err)
	params := primitives.Params{MemoryKiB: 1024, Iterations: 1, Parallelism: 1}

	k1, err := DeriveVaultKey([]byte("master"), salt, params)
	require.NoError(t, err)
	defer k1.Close()

	k2, err := DeriveVaultKey([]byte("master"), salt, params)
	require.NoError(t, err)
	defer k2.Close()

	assert.Equal(t, k1.Bytes(), k2.Bytes())
}
