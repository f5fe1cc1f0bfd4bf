// Package clipboard copies secrets to the system clipboard and clears
// them again after a timeout, the way pass-cli's get/generate commands
// do inline with a bare `go func() { time.Sleep(...); ... }()`. Clearer
// wraps that pattern so the CLI layer can cancel a pending clear (e.g.
// a second copy superseding the first) instead of racing bare
// goroutines against each other.
package clipboard

import (
	"sync"
	"time"

	"github.com/atotto/clipboard"
)

// Clearer copies a value to the clipboard and clears it again after a
// timeout, unless the clipboard contents changed in the meantime or the
// clear was cancelled first.
type Clearer struct {
	mu   sync.Mutex
	stop chan struct{}
}

// Copy writes value to the clipboard and schedules a clear after
// timeout. Any previously scheduled clear is cancelled first, so only
// the most recent copy ever gets cleared.
func (c *Clearer) Copy(value string, timeout time.Duration) error {
	if err := clipboard.WriteAll(value); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		close(c.stop)
	}
	stop := make(chan struct{})
	c.stop = stop

	go func() {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		select {
		case <-stop:
			return
		case <-timer.C:
		}
		if current, err := clipboard.ReadAll(); err == nil && current == value {
			_ = clipboard.WriteAll("")
		}
	}()

	return nil
}

// Cancel stops any pending clear without touching current clipboard
// contents.
func (c *Clearer) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}
