package clipboard

import (
	"testing"
	"time"

	"github.com/atotto/clipboard"
	"github.com/stretchr/testify/require"
)

func TestCancelPreventsClear(t *testing.T) {
	var c Clearer
	err := c.Copy("secret", 50*time.Millisecond)
	if err != nil {
		t.Skipf("clipboard unavailable in this environment: %v", err)
	}
	c.Cancel()
	time.Sleep(100 * time.Millisecond)
	current, err := clipboard.ReadAll()
	require.NoError(t, err)
	require.Equal(t, "secret", current)
}
