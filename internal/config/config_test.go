package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ckvault/ckvault/internal/recovery"
)

func TestLoadMissingReturnsDefault(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "vault.ck"), cfg.VaultPath)
	assert.Equal(t, defaultClipboardTimeoutSecs, cfg.ClipboardTimeoutSecs)
	assert.False(t, cfg.FirstRunComplete)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := Default(dir)
	cfg.FirstRunComplete = true
	cfg.ClipboardTimeoutSecs = 30

	require.NoError(t, Save(dir, cfg))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg.VaultPath, loaded.VaultPath)
	assert.True(t, loaded.FirstRunComplete)
	assert.Equal(t, 30, loaded.ClipboardTimeoutSecs)
}

func TestClearRecoveryRemovesSidecar(t *testing.T) {
	dir := t.TempDir()
	cfg := Default(dir)
	cfg.Recovery = &recovery.Config{QuestionIndex: 1}
	require.NoError(t, Save(dir, cfg))

	require.NoError(t, ClearRecovery(dir, cfg))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Nil(t, loaded.Recovery)
}
