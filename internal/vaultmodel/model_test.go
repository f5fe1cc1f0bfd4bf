package vaultmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plainEntry(name string) Entry {
	return Entry{Name: name, SecretType: Password, Secret: "hunter2"}
}

func TestInsertRejectsDuplicateNameCaseInsensitive(t *testing.T) {
	v := New()
	require.NoError(t, v.Insert(plainEntry("github")))
	err := v.Insert(plainEntry("GitHub"))
	assert.ErrorIs(t, err, ErrEntryAlreadyExists)
}

func TestResolveNameIndexAndName(t *testing.T) {
	v := New()
	require.NoError(t, v.Insert(plainEntry("alpha")))
	require.NoError(t, v.Insert(plainEntry("beta")))

	idx, ok := v.ResolveName("2")
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	idx, ok = v.ResolveName("alpha")
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	_, ok = v.ResolveName("3")
	assert.False(t, ok)
}

func TestNumericNameBecomesIndexOnceAmbiguous(t *testing.T) {
	v := New()
	require.NoError(t, v.Insert(plainEntry("first")))
	require.NoError(t, v.Insert(plainEntry("1")))

	// "1" is a valid index here, so it resolves to index 0 (the entry
	// named "first") via the numeric rule; the entry named "1" at index 1
	// is never consulted by name.
	idx, ok := v.ResolveName("1")
	require.True(t, ok)
	assert.Equal(t, 0, idx)
	assert.Equal(t, "first", v.Entries[idx].Name)
}

func TestRemoveByIDPreservesOrder(t *testing.T) {
	v := New()
	require.NoError(t, v.Insert(plainEntry("alpha")))
	require.NoError(t, v.Insert(plainEntry("beta")))
	require.NoError(t, v.Insert(plainEntry("gamma")))

	require.NoError(t, v.RemoveByID("beta"))
	require.Len(t, v.Entries, 2)
	assert.Equal(t, "alpha", v.Entries[0].Name)
	assert.Equal(t, "gamma", v.Entries[1].Name)
}

func TestRenameRejectsCollision(t *testing.T) {
	v := New()
	require.NoError(t, v.Insert(plainEntry("alpha")))
	require.NoError(t, v.Insert(plainEntry("beta")))

	err := v.Rename("alpha", "BETA")
	assert.ErrorIs(t, err, ErrEntryAlreadyExists)

	require.NoError(t, v.Rename("alpha", "gamma"))
	assert.True(t, v.Has("gamma"))
	assert.False(t, v.Has("alpha"))
}

func TestValidateSecondaryGroupAllOrNothing(t *testing.T) {
	e := Entry{Name: "x", SecretType: PrivateKey, Secret: EncryptedSentinel, HasSecondaryPassword: true}
	err := e.Validate()
	assert.Error(t, err)

	e2 := Entry{
		Name: "x", SecretType: PrivateKey, Secret: EncryptedSentinel, HasSecondaryPassword: true,
		EntryKeyWrapped: []byte{1}, EntryKeyNonce: []byte{1}, EntryKeySalt: []byte{1},
		EncryptedSecret: []byte{1}, EncryptedSecretNonce: []byte{1},
	}
	assert.NoError(t, e2.Validate())
}

func TestMetadataPreservesOrderAndExcludesSecret(t *testing.T) {
	v := New()
	require.NoError(t, v.Insert(plainEntry("alpha")))
	require.NoError(t, v.Insert(plainEntry("beta")))

	metas := v.Metadata()
	require.Len(t, metas, 2)
	assert.Equal(t, "alpha", metas[0].Name)
	assert.Equal(t, "beta", metas[1].Name)
}
