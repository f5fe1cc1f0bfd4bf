package recovery

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	os.Setenv("CKVAULT_TEST_KDF", "1")
	os.Exit(m.Run())
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "blue house", Normalize("  Blue    House \n"))
	assert.Equal(t, "blue house", Normalize("BLUE HOUSE"))
}

func TestSetupAndVerifyAnswer(t *testing.T) {
	vaultKey := make([]byte, 32)
	vaultKey[0] = 0x42

	cfg, err := Setup(3, "My First Pet", vaultKey)
	require.NoError(t, err)

	ok, err := VerifyAnswer(cfg, "my first pet")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyAnswer(cfg, "wrong answer")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecoverSoundness(t *testing.T) {
	vaultKey := make([]byte, 32)
	for i := range vaultKey {
		vaultKey[i] = byte(i)
	}

	cfg, err := Setup(1, "Fluffy", vaultKey)
	require.NoError(t, err)

	recovered, err := Recover(cfg, "  fluffy ")
	require.NoError(t, err)
	defer recovered.Close()
	assert.Equal(t, vaultKey, recovered.Bytes())

	_, err = Recover(cfg, "not fluffy")
	assert.ErrorIs(t, err, ErrRecoveryFailed)
}

func TestAttemptLimiter(t *testing.T) {
	l := NewAttemptLimiter(2)
	assert.True(t, l.Allow())
	assert.True(t, l.Allow())
	assert.False(t, l.Allow())
	assert.Equal(t, 0, l.Remaining())
}
