package vaultcodec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ckvault/ckvault/internal/primitives"
	"github.com/ckvault/ckvault/internal/vaultmodel"
)

func testParams() primitives.Params {
	return primitives.Params{MemoryKiB: 1024, Iterations: 1, Parallelism: 1}
}

func sampleData() vaultmodel.VaultData {
	v := vaultmodel.New()
	_ = v.Insert(vaultmodel.Entry{
		Name: "github", SecretType: vaultmodel.Password, Secret: "s3cr3t",
		Username: "me", URL: "https://github.com",
	})
	return v
}

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vault.ck")

	var events []string
	cb := func(event string, detail ...string) { events = append(events, event) }

	key, salt, err := Write(path, sampleData(), []byte("master"), testParams(), cb)
	require.NoError(t, err)
	defer key.Close()
	assert.NotEmpty(t, salt)
	assert.Contains(t, events, "atomic_save_completed")

	data, key2, salt2, err := Read(path, []byte("master"))
	require.NoError(t, err)
	defer key2.Close()
	require.Len(t, data.Entries, 1)
	assert.Equal(t, "github", data.Entries[0].Name)
	assert.Equal(t, salt, salt2)
}

func TestReadWrongPasswordFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vault.ck")

	key, _, err := Write(path, sampleData(), []byte("master"), testParams(), nil)
	require.NoError(t, err)
	key.Close()

	_, _, _, err = Read(path, []byte("wrong"))
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestWriteWithKeyReusesSaltFreshNonce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vault.ck")

	key, salt, err := Write(path, sampleData(), []byte("master"), testParams(), nil)
	require.NoError(t, err)
	defer key.Close()

	raw1, err := os.ReadFile(path)
	require.NoError(t, err)
	c1, err := parseHeader(raw1)
	require.NoError(t, err)

	data2 := sampleData()
	_ = data2.Insert(vaultmodel.Entry{Name: "second", SecretType: vaultmodel.Password, Secret: "x"})
	require.NoError(t, WriteWithKey(path, data2, key.Bytes(), salt, testParams(), nil))

	raw2, err := os.ReadFile(path)
	require.NoError(t, err)
	c2, err := parseHeader(raw2)
	require.NoError(t, err)

	assert.Equal(t, c1.Salt, c2.Salt)
	assert.NotEqual(t, c1.Nonce, c2.Nonce)

	data, err := readAndDecrypt(path, key.Bytes())
	require.NoError(t, err)
	assert.Len(t, data.Entries, 2)
}

func TestBackupMagicMismatchRejected(t *testing.T) {
	dir := t.TempDir()
	vaultPath := filepath.Join(dir, "vault.ck")
	backupPath := filepath.Join(dir, "backup.ckbk")

	key, _, err := Write(vaultPath, sampleData(), []byte("master"), testParams(), nil)
	require.NoError(t, err)
	key.Close()
	require.NoError(t, WriteBackup(backupPath, sampleData(), []byte("export-pw"), testParams()))

	_, err = ReadBackup(vaultPath, []byte("export-pw"))
	assert.ErrorIs(t, err, ErrInvalidVaultFormat)

	_, _, _, err = Read(backupPath, []byte("master"))
	assert.ErrorIs(t, err, ErrInvalidVaultFormat)

	data, err := ReadBackup(backupPath, []byte("export-pw"))
	require.NoError(t, err)
	assert.Len(t, data.Entries, 1)
}

func TestReadMetadataWithoutPassword(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vault.ck")

	key, _, err := Write(path, sampleData(), []byte("master"), testParams(), nil)
	require.NoError(t, err)
	key.Close()

	meta, err := ReadMetadata(path)
	require.NoError(t, err)
	require.Len(t, meta, 1)
	assert.Equal(t, "github", meta[0].Name)
}

func TestReadMetadataAbsentMagicReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "garbage.ck")
	require.NoError(t, os.WriteFile(path, []byte("not a vault"), 0600))

	meta, err := ReadMetadata(path)
	assert.NoError(t, err)
	assert.Nil(t, meta)
}

func TestCrashBeforeRenameLeavesOriginalUntouched(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vault.ck")

	key, salt, err := Write(path, sampleData(), []byte("master"), testParams(), nil)
	require.NoError(t, err)

	original, err := os.ReadFile(path)
	require.NoError(t, err)

	// Simulate a crash between writing the temp file and renaming it: a
	// garbage temp file is left beside the vault, and the real vault must
	// be byte-for-byte unchanged.
	tempPath := path + ".tmp"
	require.NoError(t, os.WriteFile(tempPath, []byte("garbage"), 0600))
	defer os.Remove(tempPath)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, after)

	key.Close()
	_ = salt
}
