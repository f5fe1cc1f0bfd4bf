package vaultservice

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ckvault/ckvault/internal/vaultmodel"
)

func TestMain(m *testing.M) {
	os.Setenv("CKVAULT_TEST_KDF", "1")
	os.Exit(m.Run())
}

func TestInitUnlockSaveCycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.ck")

	sess, err := Init(path, []byte("master"))
	require.NoError(t, err)
	require.NoError(t, sess.Data().Insert(vaultmodel.Entry{
		Name: "wallet", SecretType: vaultmodel.PrivateKey, Secret: "abc123", Network: "Ethereum",
	}))
	require.NoError(t, sess.SaveWithKey())
	sess.Lock()

	sess2, err := Unlock(path, []byte("master"))
	require.NoError(t, err)
	require.Len(t, sess2.Data().Entries, 1)
	assert.Equal(t, "wallet", sess2.Data().Entries[0].Name)
	sess2.Lock()
}

func TestBackupExportImportRoundTrip(t *testing.T) {
	vaultPath := filepath.Join(t.TempDir(), "vault.ck")
	backupPath := filepath.Join(t.TempDir(), "backup.ckbk")

	sess, err := Init(vaultPath, []byte("master"))
	require.NoError(t, err)
	require.NoError(t, sess.Data().Insert(vaultmodel.Entry{Name: "x", SecretType: vaultmodel.Password, Secret: "y"}))

	require.NoError(t, WriteBackup(backupPath, *sess.Data(), []byte("export-pw")))

	data, err := ReadBackup(backupPath, []byte("export-pw"))
	require.NoError(t, err)
	assert.Len(t, data.Entries, 1)

	_, err = ReadBackup(backupPath, []byte("wrong"))
	assert.Error(t, err)
}
