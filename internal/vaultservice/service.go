// Package vaultservice ties VaultCodec, VaultModel, and KeyVault into the
// session-shaped API the CLI layer drives: unlock once, mutate in memory,
// save (optionally reusing the cached key). Mirrors the lifecycle shape
// of pass-cli's internal/vault.VaultService, rebuilt around an ordered
// vaultmodel.VaultData instead of the teacher's map-keyed credentials.
package vaultservice

import (
	"errors"
	"fmt"

	"github.com/ckvault/ckvault/internal/keyvault"
	"github.com/ckvault/ckvault/internal/primitives"
	"github.com/ckvault/ckvault/internal/secure"
	"github.com/ckvault/ckvault/internal/vaultcodec"
	"github.com/ckvault/ckvault/internal/vaultmodel"
)

var ErrLocked = errors.New("vault is locked")

// Session owns the unlocked VaultData plus the cached (K_v, salt_v) from
// the last successful unlock or save, exactly the pair spec.md's cached
// save path requires. Dropped (and zeroed) on Lock.
type Session struct {
	path   string
	data   vaultmodel.VaultData
	key    *secure.Bytes
	salt   []byte
	params primitives.Params
}

// Init creates a brand-new vault at path under masterPW and returns an
// unlocked Session.
func Init(path string, masterPW []byte) (*Session, error) {
	data := vaultmodel.New()
	key, salt, err := vaultcodec.Write(path, data, masterPW, primitives.MasterParams(), nil)
	if err != nil {
		return nil, err
	}
	return &Session{path: path, data: data, key: key, salt: salt, params: primitives.MasterParams()}, nil
}

// Unlock opens an existing vault at path under masterPW.
func Unlock(path string, masterPW []byte) (*Session, error) {
	data, key, salt, err := vaultcodec.Read(path, masterPW)
	if err != nil {
		return nil, err
	}
	return &Session{path: path, data: data, key: key, salt: salt, params: primitives.MasterParams()}, nil
}

// UnlockWithKey opens a vault directly with an already-derived key and
// salt, the path the Recovery flow uses after decrypting master_key_blob
// (spec.md §4.5's "attempt a vault read using K_v directly").
func UnlockWithKey(path string, key *secure.Bytes, salt []byte) (*Session, error) {
	data, err := vaultcodec.ReadWithKey(path, key.Bytes())
	if err != nil {
		return nil, err
	}
	return &Session{path: path, data: data, key: key, salt: salt, params: primitives.MasterParams()}, nil
}

// Lock zeroes the cached key and drops the in-memory vault data. The
// Session must not be used afterward.
func (s *Session) Lock() {
	if s.key != nil {
		s.key.Close()
	}
	s.key = nil
	s.data = vaultmodel.VaultData{}
}

func (s *Session) IsUnlocked() bool {
	return s.key != nil
}

// Data returns a pointer to the in-memory vault, for CRUD via
// vaultmodel's own methods.
func (s *Session) Data() *vaultmodel.VaultData {
	return &s.data
}

// Save performs a full KDF-backed save, generating a fresh salt and
// nonce, and refreshes the session's cached key/salt.
func (s *Session) Save(masterPW []byte) error {
	if !s.IsUnlocked() {
		return ErrLocked
	}
	key, salt, err := vaultcodec.Write(s.path, s.data, masterPW, s.params, nil)
	if err != nil {
		return err
	}
	s.key.Close()
	s.key = key
	s.salt = salt
	return nil
}

// SaveWithKey is the cached-key fast path: no KDF, fresh nonce, same
// salt_v the cached key was derived under.
func (s *Session) SaveWithKey() error {
	if !s.IsUnlocked() {
		return ErrLocked
	}
	return vaultcodec.WriteWithKey(s.path, s.data, s.key.Bytes(), s.salt, s.params, nil)
}

// ChangePassword re-derives the vault key under newPW and performs a full
// save, the way changing a master password must re-wrap everything.
func (s *Session) ChangePassword(newPW []byte) error {
	if !s.IsUnlocked() {
		return ErrLocked
	}
	key, salt, err := vaultcodec.Write(s.path, s.data, newPW, s.params, nil)
	if err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}
	s.key.Close()
	s.key = key
	s.salt = salt
	return nil
}

// CachedKey exposes the session's cached (K_v, salt_v), e.g. to set up
// Recovery at the current master key.
func (s *Session) CachedKey() (*secure.Bytes, []byte) {
	return s.key, s.salt
}

// UnwrapEntryKey recovers K_e for an entry with a secondary password.
func (s *Session) UnwrapEntryKey(e *vaultmodel.Entry, viewPW []byte) (*secure.Bytes, error) {
	wrap := keyvault.Wrapped{
		Ciphertext: e.EntryKeyWrapped,
		Nonce:      e.EntryKeyNonce,
		Salt:       e.EntryKeySalt,
	}
	return keyvault.UnwrapEntryKey(wrap, viewPW)
}

// PeekSalt returns the vault's salt_v without a password, so a Recovery
// flow's decrypted K_v can be paired with the salt it was derived under.
func PeekSalt(path string) ([]byte, error) {
	return vaultcodec.PeekSalt(path)
}

// ReadMetadata loads just the cleartext EntryMeta projection from path,
// requiring no password and no unlocked Session.
func ReadMetadata(path string) ([]vaultmodel.EntryMeta, error) {
	return vaultcodec.ReadMetadata(path)
}

// WriteBackup exports data under exportPW into an independent CKBK
// container at path.
func WriteBackup(path string, data vaultmodel.VaultData, exportPW []byte) error {
	return vaultcodec.WriteBackup(path, data, exportPW, primitives.MasterParams())
}

// ReadBackup imports a CKBK container, requiring the export password it
// was sealed under.
func ReadBackup(path string, exportPW []byte) (vaultmodel.VaultData, error) {
	return vaultcodec.ReadBackup(path, exportPW)
}
