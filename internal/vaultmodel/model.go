// Package vaultmodel holds the in-memory ordered collection of vault
// entries: CRUD, lookup by name or 1-based index, and the invariants that
// keep an Entry well-formed. Nothing here touches disk or cryptography.
package vaultmodel

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/ckvault/ckvault/internal/secure"
)

// SecretType is the closed set of things a vault entry can hold.
type SecretType string

const (
	PrivateKey SecretType = "PrivateKey"
	SeedPhrase SecretType = "SeedPhrase"
	Password   SecretType = "Password"
)

// EncryptedSentinel is the placeholder shown in Secret while an entry with
// a secondary password is locked.
const EncryptedSentinel = "[encrypted]"

var (
	ErrEntryNotFound      = errors.New("entry not found")
	ErrEntryAlreadyExists = errors.New("entry with that name already exists")
	ErrInvalidEntry       = errors.New("entry violates a vault invariant")
)

// Entry is one stored secret.
type Entry struct {
	Name                 string     `json:"name"`
	SecretType           SecretType `json:"secret_type"`
	Secret               string     `json:"secret"`
	Network              string     `json:"network,omitempty"`
	PublicAddress        string     `json:"public_address,omitempty"`
	Username             string     `json:"username,omitempty"`
	URL                  string     `json:"url,omitempty"`
	Notes                string     `json:"notes,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
	HasSecondaryPassword bool       `json:"has_secondary_password"`

	EntryKeyWrapped      []byte `json:"entry_key_wrapped,omitempty"`
	EntryKeyNonce        []byte `json:"entry_key_nonce,omitempty"`
	EntryKeySalt         []byte `json:"entry_key_salt,omitempty"`
	EncryptedSecret      []byte `json:"encrypted_secret,omitempty"`
	EncryptedSecretNonce []byte `json:"encrypted_secret_nonce,omitempty"`
}

// Validate enforces invariant (SECONDARY-GROUP): the five sidecar fields
// are all present or all absent, matching HasSecondaryPassword, and when
// present Secret must hold the locked-sentinel rather than plaintext. It
// also enforces (TYPE-FIELDS): Password entries carry username/url but not
// network/public_address, and crypto entries (PrivateKey/SeedPhrase) carry
// network but not username/url.
func (e *Entry) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return errInvalid("name must not be empty")
	}
	switch e.SecretType {
	case PrivateKey, SeedPhrase, Password:
	default:
		return errInvalid("unknown secret_type")
	}

	sidecarPresent := len(e.EntryKeyWrapped) > 0 || len(e.EntryKeyNonce) > 0 ||
		len(e.EntryKeySalt) > 0 || len(e.EncryptedSecret) > 0 || len(e.EncryptedSecretNonce) > 0
	sidecarComplete := len(e.EntryKeyWrapped) > 0 && len(e.EntryKeyNonce) > 0 &&
		len(e.EntryKeySalt) > 0 && len(e.EncryptedSecret) > 0 && len(e.EncryptedSecretNonce) > 0

	if e.HasSecondaryPassword {
		if !sidecarComplete {
			return errInvalid("has_secondary_password is true but sidecar fields are incomplete")
		}
		if e.Secret != EncryptedSentinel {
			return errInvalid("secret must be the locked sentinel when has_secondary_password is true")
		}
	} else {
		if sidecarPresent {
			return errInvalid("sidecar fields present without has_secondary_password")
		}
	}

	switch e.SecretType {
	case Password:
		if e.Network != "" || e.PublicAddress != "" {
			return errInvalid("password entries must not carry network or public_address")
		}
	case PrivateKey, SeedPhrase:
		if e.Username != "" || e.URL != "" {
			return errInvalid("crypto entries must not carry username or url")
		}
	}
	return nil
}

func errInvalid(msg string) error {
	return errors.New(ErrInvalidEntry.Error() + ": " + msg)
}

// EntryMeta is a cleartext projection of Entry, excluding the secret and
// any ciphertext or timestamp fields, suitable for storing in the vault
// header so listing/search work without the master password.
type EntryMeta struct {
	Name          string     `json:"name"`
	Network       string     `json:"network,omitempty"`
	SecretType    SecretType `json:"secret_type"`
	PublicAddress string     `json:"public_address,omitempty"`
	Username      string     `json:"username,omitempty"`
	URL           string     `json:"url,omitempty"`
	Notes         string     `json:"notes,omitempty"`
}

// VaultData is the whole in-memory vault: an ordered list of entries.
// Order is insertion order and is significant for 1-based CLI indexing.
type VaultData struct {
	Version int     `json:"version"`
	Entries []Entry `json:"entries"`
}

// New returns an empty VaultData at the current schema version.
func New() VaultData {
	return VaultData{Version: 1}
}

// Has reports whether name matches an entry, case-insensitively.
func (v *VaultData) Has(name string) bool {
	return v.Find(name) != nil
}

// Find returns a pointer to the entry matching name case-insensitively,
// or nil.
func (v *VaultData) Find(name string) *Entry {
	for i := range v.Entries {
		if strings.EqualFold(v.Entries[i].Name, name) {
			return &v.Entries[i]
		}
	}
	return nil
}

// FindMut is an alias for Find; Go has no separate mutable-borrow
// discipline, so both names return the same mutable pointer.
func (v *VaultData) FindMut(name string) *Entry {
	return v.Find(name)
}

// ResolveName implements the id-is-index-or-name rule: if id parses as an
// integer n with 1 <= n <= len(Entries), it resolves to index n-1;
// otherwise it is matched as a name. A numeric-valued entry name becomes
// unreachable by name once another entry occupies that index — documented
// behaviour, not a bug.
func (v *VaultData) ResolveName(id string) (int, bool) {
	if n, err := strconv.Atoi(id); err == nil {
		if n >= 1 && n <= len(v.Entries) {
			return n - 1, true
		}
	}
	for i := range v.Entries {
		if strings.EqualFold(v.Entries[i].Name, id) {
			return i, true
		}
	}
	return -1, false
}

// FindByID resolves id (index-or-name) to an entry pointer.
func (v *VaultData) FindByID(id string) (*Entry, error) {
	idx, ok := v.ResolveName(id)
	if !ok {
		return nil, ErrEntryNotFound
	}
	return &v.Entries[idx], nil
}

// RemoveByID deletes the entry resolved by id, shifting later entries
// down by one (order is preserved for the remainder). The removed entry's
// secret and sidecar ciphertext buffers are wiped before the slice is
// truncated: Go strings can't be scrubbed in place, so Secret is cleared
// by discarding the reference rather than overwriting its bytes.
func (v *VaultData) RemoveByID(id string) error {
	idx, ok := v.ResolveName(id)
	if !ok {
		return ErrEntryNotFound
	}
	removed := &v.Entries[idx]
	removed.Secret = ""
	secure.Wipe(removed.EntryKeyWrapped)
	secure.Wipe(removed.EntryKeyNonce)
	secure.Wipe(removed.EntryKeySalt)
	secure.Wipe(removed.EncryptedSecret)
	secure.Wipe(removed.EncryptedSecretNonce)
	v.Entries = append(v.Entries[:idx], v.Entries[idx+1:]...)
	return nil
}

// Metadata builds an EntryMeta list preserving order.
func (v *VaultData) Metadata() []EntryMeta {
	metas := make([]EntryMeta, len(v.Entries))
	for i, e := range v.Entries {
		metas[i] = EntryMeta{
			Name:          e.Name,
			Network:       e.Network,
			SecretType:    e.SecretType,
			PublicAddress: e.PublicAddress,
			Username:      e.Username,
			URL:           e.URL,
			Notes:         e.Notes,
		}
	}
	return metas
}

// Insert appends entry after checking invariants NAME-UNIQUE and
// SECONDARY-GROUP.
func (v *VaultData) Insert(entry Entry) error {
	if v.Has(entry.Name) {
		return ErrEntryAlreadyExists
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	entry.UpdatedAt = entry.CreatedAt
	v.Entries = append(v.Entries, entry)
	return nil
}

// Rename changes the name of the entry resolved by oldID to newName,
// rejecting a case-insensitive collision with any other entry. Does not
// reorder.
func (v *VaultData) Rename(oldID, newName string) error {
	idx, ok := v.ResolveName(oldID)
	if !ok {
		return ErrEntryNotFound
	}
	for i := range v.Entries {
		if i == idx {
			continue
		}
		if strings.EqualFold(v.Entries[i].Name, newName) {
			return ErrEntryAlreadyExists
		}
	}
	v.Entries[idx].Name = newName
	v.Entries[idx].UpdatedAt = time.Now().UTC()
	return nil
}
