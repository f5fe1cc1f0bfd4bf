// Package keychain caches the vault's master password in the OS-native
// credential store (macOS Keychain, Windows Credential Manager, the
// Secret Service on Linux) so unlocking doesn't require a password prompt
// on every command. ckvault keeps exactly one vault per home directory,
// so unlike a multi-vault credential manager there's no per-vault account
// namespacing to manage: one service, one account.
package keychain

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	// ServiceName is the identifier keyring entries are stored under.
	ServiceName = "ckvault"
	// AccountName is the single account the master password is cached
	// against.
	AccountName = "master-password"
)

var (
	// ErrKeychainUnavailable indicates the system keychain is not reachable.
	ErrKeychainUnavailable = errors.New("system keychain is not available")
	// ErrPasswordNotFound indicates no password is cached.
	ErrPasswordNotFound = errors.New("password not found in keychain")
)

// KeychainService wraps the OS keychain for the one vault a ckvault home
// directory holds.
type KeychainService struct {
	available bool
}

// New returns a KeychainService for the fixed ServiceName/AccountName
// pair. The entry is not keyed by home directory: every ckvault home on
// the machine shares it.
func New() *KeychainService {
	return &KeychainService{}
}

// Ping probes keychain availability by writing and deleting a throwaway
// entry, caching the result so later calls skip the round-trip.
func (ks *KeychainService) Ping() error {
	if ks.available {
		return nil
	}
	const testAccount = "ckvault-availability-test"
	if err := keyring.Set(ServiceName, testAccount, "test"); err != nil {
		return fmt.Errorf("%w: %v", ErrKeychainUnavailable, err)
	}
	_ = keyring.Delete(ServiceName, testAccount)
	ks.available = true
	return nil
}

// IsAvailable reports whether the system keychain is reachable, probing on
// demand until a probe has succeeded; a failed probe is not cached.
func (ks *KeychainService) IsAvailable() bool {
	if !ks.available {
		_ = ks.Ping()
	}
	return ks.available
}

// Store caches password in the system keychain.
func (ks *KeychainService) Store(password string) error {
	if err := keyring.Set(ServiceName, AccountName, password); err != nil {
		return fmt.Errorf("failed to store password in keychain: %w", err)
	}
	return nil
}

// Retrieve returns the cached password, or ErrPasswordNotFound if none is
// stored.
func (ks *KeychainService) Retrieve() (string, error) {
	password, err := keyring.Get(ServiceName, AccountName)
	if err != nil {
		if err == keyring.ErrNotFound {
			return "", ErrPasswordNotFound
		}
		return "", fmt.Errorf("failed to retrieve password from keychain: %w", err)
	}
	return password, nil
}

// Delete removes the cached password. Not an error if nothing was stored.
func (ks *KeychainService) Delete() error {
	if err := keyring.Delete(ServiceName, AccountName); err != nil && err != keyring.ErrNotFound {
		return fmt.Errorf("failed to delete password from keychain: %w", err)
	}
	return nil
}

// Clear is an alias for Delete, for consistency with other services.
func (ks *KeychainService) Clear() error {
	return ks.Delete()
}
