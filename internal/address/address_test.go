package address

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ckvault/ckvault/internal/vaultmodel"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestDeriveAddressUnsupportedPairReturnsNoError(t *testing.T) {
	addr, ok, err := DeriveAddress("whatever", vaultmodel.Password, "ethereum")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, addr)

	addr, ok, err = DeriveAddress("whatever", vaultmodel.PrivateKey, "litecoin")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, addr)
}

const testEthKeyHex = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func TestEthFromPrivateKeyFormat(t *testing.T) {
	addr, ok, err := DeriveAddress("0x"+testEthKeyHex, vaultmodel.PrivateKey, "Ethereum")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(addr, "0x"))
	assert.Len(t, addr, 42)
}

func TestEthFromPrivateKeyDeterministic(t *testing.T) {
	a1, err := EthFromPrivateKey(testEthKeyHex)
	require.NoError(t, err)
	a2, err := EthFromPrivateKey(testEthKeyHex)
	require.NoError(t, err)
	assert.Equal(t, a1, a2)
}

func TestEthFromSeedPhrase(t *testing.T) {
	addr, ok, err := DeriveAddress(testMnemonic, vaultmodel.SeedPhrase, "eth")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(addr, "0x"))
	assert.Len(t, addr, 42)
}

func TestBtcFromSeedPhraseBech32Format(t *testing.T) {
	addr, ok, err := DeriveAddress(testMnemonic, vaultmodel.SeedPhrase, "bitcoin")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(addr, "bc1"))
}

func TestSolFromSeedPhraseFormat(t *testing.T) {
	addr, ok, err := DeriveAddress(testMnemonic, vaultmodel.SeedPhrase, "solana")
	require.NoError(t, err)
	require.True(t, ok)
	assert.GreaterOrEqual(t, len(addr), 32)
}

func TestSolFromPrivateKeyJSONArrayFormat(t *testing.T) {
	seed := make([]int, 32)
	for i := range seed {
		seed[i] = i
	}
	addr1, err := SolFromPrivateKey(jsonBytes(seed))
	require.NoError(t, err)
	assert.NotEmpty(t, addr1)
}

func jsonBytes(vals []int) string {
	out := "["
	for i, v := range vals {
		if i > 0 {
			out += ","
		}
		out += itoa(v)
	}
	out += "]"
	return out
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := ""
	for n > 0 {
		digits = string(rune('0'+n%10)) + digits
		n /= 10
	}
	return digits
}

func TestEthRejectsMalformedHex(t *testing.T) {
	_, err := EthFromPrivateKey("not-hex")
	assert.Error(t, err)
}

func TestBtcRejectsMalformedWIF(t *testing.T) {
	_, err := BtcFromPrivateKey("not-a-wif")
	assert.Error(t, err)
}
