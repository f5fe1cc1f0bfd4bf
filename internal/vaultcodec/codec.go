// Package vaultcodec serialises and deserialises the on-disk vault
// container: magic bytes, version, optional plaintext metadata, Argon2id
// parameters, nonce, and the AEAD ciphertext, plus the atomic
// write-temp/verify/backup/rename choreography that gets bytes onto disk
// without ever leaving a half-written vault behind.
package vaultcodec

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ckvault/ckvault/internal/keyvault"
	"github.com/ckvault/ckvault/internal/primitives"
	"github.com/ckvault/ckvault/internal/secure"
	"github.com/ckvault/ckvault/internal/vaultmodel"
)

const (
	MagicVault  = "CKPR"
	MagicBackup = "CKBK"

	VersionV1 = 1
	VersionV2 = 2

	// VaultPermissions is the file mode every vault/backup file is
	// written with: owner read-write only.
	VaultPermissions = 0600
)

var (
	ErrInvalidVaultFormat = errors.New("invalid vault format")
	ErrDecryptionFailed   = errors.New("invalid master password")
	ErrIO                 = errors.New("vault io error")
	ErrVaultNotFound      = errors.New("vault file not found")
)

// payload is the canonical JSON object sealed inside the AEAD ciphertext.
type payload struct {
	Entries []vaultmodel.Entry `json:"entries"`
	Version int                `json:"version"`
}

// ProgressCallback is invoked at key stages during an atomic save, the
// way pass-cli's storage.ProgressCallback drives its audit logger.
type ProgressCallback func(event string, detail ...string)

// Container is a parsed vault or backup header plus its still-sealed
// ciphertext.
type Container struct {
	Magic   string
	Version uint32
	Meta    []vaultmodel.EntryMeta
	Salt    []byte
	Params  primitives.Params
	Nonce   []byte
	Cipher  []byte
}

func writeHeader(buf *bytes.Buffer, magic string, version uint32, metaJSON []byte, salt []byte, params primitives.Params, nonce []byte, ciphertext []byte) {
	buf.WriteString(magic)
	writeU32(buf, version)
	if version >= VersionV2 {
		writeU32(buf, uint32(len(metaJSON)))
		buf.Write(metaJSON)
	}
	buf.Write(salt)
	writeU32(buf, params.MemoryKiB)
	writeU32(buf, params.Iterations)
	writeU32(buf, uint32(params.Parallelism))
	buf.Write(nonce)
	writeU32(buf, uint32(len(ciphertext)))
	buf.Write(ciphertext)
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

// Write serialises data, derives a fresh vault key from masterPW, encrypts
// under a fresh salt and nonce, and atomically writes the V2 container to
// path. Returns the derived key and salt so the caller can cache them for
// a later WriteWithKey (the "cached-key save path").
func Write(path string, data vaultmodel.VaultData, masterPW []byte, params primitives.Params, cb ProgressCallback) (*secure.Bytes, []byte, error) {
	salt, err := primitives.RandomSalt()
	if err != nil {
		return nil, nil, err
	}
	key, err := keyvault.DeriveVaultKey(masterPW, salt, params)
	if err != nil {
		return nil, nil, err
	}
	if err := writeWithKeyAndSalt(path, MagicVault, data, key.Bytes(), salt, params, cb); err != nil {
		key.Close()
		return nil, nil, err
	}
	return key, salt, nil
}

// WriteWithKey is the cached-key save path: it skips KDF entirely, reusing
// the key and salt from the last successful unlock or Write, and always
// generates a fresh nonce.
func WriteWithKey(path string, data vaultmodel.VaultData, key, salt []byte, params primitives.Params, cb ProgressCallback) error {
	return writeWithKeyAndSalt(path, MagicVault, data, key, salt, params, cb)
}

// WriteBackup seals data under a password chosen at export time,
// independent of the master password, using the CKBK magic so a backup
// can never be mistaken for (or decrypt as) the primary vault.
func WriteBackup(path string, data vaultmodel.VaultData, exportPW []byte, params primitives.Params) error {
	salt, err := primitives.RandomSalt()
	if err != nil {
		return err
	}
	key, err := keyvault.DeriveVaultKey(exportPW, salt, params)
	if err != nil {
		return err
	}
	defer key.Close()
	return writeWithKeyAndSalt(path, MagicBackup, data, key.Bytes(), salt, params, nil)
}

func writeWithKeyAndSalt(path, magic string, data vaultmodel.VaultData, key, salt []byte, params primitives.Params, cb ProgressCallback) error {
	if cb != nil {
		cb("atomic_save_started", path)
	}

	data.Version = 1
	plainJSON, err := json.Marshal(payload{Entries: data.Entries, Version: data.Version})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}

	nonce, err := primitives.RandomNonce()
	if err != nil {
		return err
	}
	ciphertext, err := primitives.AEADEncrypt(key, nonce, plainJSON)
	if err != nil {
		return err
	}

	metaJSON, err := json.Marshal((&data).Metadata())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}

	var buf bytes.Buffer
	writeHeader(&buf, magic, VersionV2, metaJSON, salt, params, nonce, ciphertext)

	tempPath := path + ".tmp"
	if cb != nil {
		cb("temp_file_created", tempPath)
	}
	if err := atomicWriteTemp(tempPath, buf.Bytes()); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	defer func() { _ = os.Remove(tempPath) }()

	if cb != nil {
		cb("verification_started", tempPath)
	}
	written, verr := readRaw(tempPath, magic)
	if verr == nil {
		_, verr = decryptPayload(written, key)
	}
	if verr != nil {
		if cb != nil {
			cb("verification_failed", tempPath, verr.Error())
		}
		return fmt.Errorf("failed to verify written vault: %w", verr)
	}
	if cb != nil {
		cb("verification_passed", tempPath)
	}

	if _, err := os.Stat(path); err == nil {
		backupPath := path + ".backup"
		if cb != nil {
			cb("atomic_rename_started", path, backupPath)
		}
		if err := os.Rename(path, backupPath); err != nil {
			return fmt.Errorf("%w: %v", ErrIO, err)
		}
		if err := os.Rename(tempPath, path); err != nil {
			if cb != nil {
				cb("rollback_started", backupPath, path)
			}
			_ = os.Rename(backupPath, path)
			if cb != nil {
				cb("rollback_completed", path)
			}
			return fmt.Errorf("%w: %v", ErrIO, err)
		}
		_ = os.Remove(backupPath)
	} else {
		if err := os.Rename(tempPath, path); err != nil {
			return fmt.Errorf("%w: %v", ErrIO, err)
		}
	}

	if cb != nil {
		cb("atomic_save_completed", path)
	}
	return nil
}

func atomicWriteTemp(tempPath string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(tempPath), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, VaultPermissions)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// parseHeader decodes magic/version/meta/salt/params/nonce/ciphertext
// from raw bytes, accepting both V1 (fixed 80-byte header, no metadata)
// and V2 (metadata-length-prefixed) layouts.
func parseHeader(raw []byte) (Container, error) {
	const fixedMinV1 = 4 + 4 + 32 + 4 + 4 + 4 + 24 + 4
	if len(raw) < fixedMinV1 {
		return Container{}, ErrInvalidVaultFormat
	}
	magic := string(raw[0:4])
	version := binary.LittleEndian.Uint32(raw[4:8])

	off := 8
	var metaJSON []byte
	if version >= VersionV2 {
		if len(raw) < off+4 {
			return Container{}, ErrInvalidVaultFormat
		}
		n := binary.LittleEndian.Uint32(raw[off : off+4])
		off += 4
		if uint64(off)+uint64(n) > uint64(len(raw)) {
			return Container{}, ErrInvalidVaultFormat
		}
		metaJSON = raw[off : off+int(n)]
		off += int(n)
	}

	if len(raw) < off+32+4+4+4+24+4 {
		return Container{}, ErrInvalidVaultFormat
	}
	salt := raw[off : off+32]
	off += 32
	mCost := binary.LittleEndian.Uint32(raw[off : off+4])
	off += 4
	tCost := binary.LittleEndian.Uint32(raw[off : off+4])
	off += 4
	pCost := binary.LittleEndian.Uint32(raw[off : off+4])
	off += 4
	nonce := raw[off : off+24]
	off += 24
	ctLen := binary.LittleEndian.Uint32(raw[off : off+4])
	off += 4
	if uint64(off)+uint64(ctLen) != uint64(len(raw)) {
		return Container{}, ErrInvalidVaultFormat
	}
	ciphertext := raw[off : off+int(ctLen)]

	var meta []vaultmodel.EntryMeta
	if metaJSON != nil {
		if err := json.Unmarshal(metaJSON, &meta); err != nil {
			return Container{}, ErrInvalidVaultFormat
		}
	}

	return Container{
		Magic:   magic,
		Version: version,
		Meta:    meta,
		Salt:    append([]byte(nil), salt...),
		Params:  primitives.Params{MemoryKiB: mCost, Iterations: tCost, Parallelism: uint8(pCost)},
		Nonce:   append([]byte(nil), nonce...),
		Cipher:  append([]byte(nil), ciphertext...),
	}, nil
}

func readRaw(path string, expectMagic string) (Container, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Container{}, fmt.Errorf("%w: %s", ErrVaultNotFound, path)
		}
		return Container{}, fmt.Errorf("%w: %v", ErrIO, err)
	}
	c, err := parseHeader(raw)
	if err != nil {
		return Container{}, err
	}
	if c.Magic != expectMagic {
		return Container{}, ErrInvalidVaultFormat
	}
	return c, nil
}

func decryptPayload(c Container, key []byte) (vaultmodel.VaultData, error) {
	pt, err := primitives.AEADDecrypt(key, c.Nonce, c.Cipher)
	if err != nil {
		return vaultmodel.VaultData{}, ErrDecryptionFailed
	}
	var p payload
	if err := json.Unmarshal(pt, &p); err != nil {
		return vaultmodel.VaultData{}, ErrInvalidVaultFormat
	}
	for i := range p.Entries {
		if err := p.Entries[i].Validate(); err != nil {
			return vaultmodel.VaultData{}, fmt.Errorf("%w: entry %q: %v", ErrInvalidVaultFormat, p.Entries[i].Name, err)
		}
	}
	return vaultmodel.VaultData{Version: p.Version, Entries: p.Entries}, nil
}

func readAndDecrypt(path string, key []byte) (vaultmodel.VaultData, error) {
	c, err := readRaw(path, MagicVault)
	if err != nil {
		return vaultmodel.VaultData{}, err
	}
	return decryptPayload(c, key)
}

// Read loads path, validates the CKPR magic, derives the vault key with
// the file-stored Argon2 parameters (so a file written under stronger
// params than today's defaults stays readable), and AEAD-decrypts the
// payload.
func Read(path string, masterPW []byte) (vaultmodel.VaultData, *secure.Bytes, []byte, error) {
	c, err := readRaw(path, MagicVault)
	if err != nil {
		return vaultmodel.VaultData{}, nil, nil, err
	}
	key, err := keyvault.DeriveVaultKey(masterPW, c.Salt, c.Params)
	if err != nil {
		return vaultmodel.VaultData{}, nil, nil, err
	}
	data, err := decryptPayload(c, key.Bytes())
	if err != nil {
		key.Close()
		return vaultmodel.VaultData{}, nil, nil, err
	}
	return data, key, c.Salt, nil
}

// ReadWithKey decrypts path using an already-derived key, skipping KDF
// entirely — the path Recovery uses once it has decrypted master_key_blob
// directly into K_v.
func ReadWithKey(path string, key []byte) (vaultmodel.VaultData, error) {
	return readAndDecrypt(path, key)
}

// ReadBackup mirrors Read but requires the CKBK magic, so a backup file
// can never be opened as a primary vault.
func ReadBackup(path string, exportPW []byte) (vaultmodel.VaultData, error) {
	c, err := readRaw(path, MagicBackup)
	if err != nil {
		return vaultmodel.VaultData{}, err
	}
	key, err := keyvault.DeriveVaultKey(exportPW, c.Salt, c.Params)
	if err != nil {
		return vaultmodel.VaultData{}, err
	}
	defer key.Close()
	return decryptPayload(c, key.Bytes())
}

// ReadMetadata parses the header only and returns the plaintext EntryMeta
// projection, requiring no password. V1 files and files with no
// recognisable magic yield an empty list rather than an error: the UI
// treats this as "metadata preview unavailable".
func ReadMetadata(path string) ([]vaultmodel.EntryMeta, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	c, err := parseHeader(raw)
	if err != nil || c.Magic != MagicVault || c.Version < VersionV2 {
		return nil, nil
	}
	return c.Meta, nil
}

// PeekSalt reads just the header of the vault at path and returns its
// salt_v, requiring no password. Used by the Recovery flow to pair a
// recovered K_v with the salt it was actually derived under.
func PeekSalt(path string) ([]byte, error) {
	c, err := readRaw(path, MagicVault)
	if err != nil {
		return nil, err
	}
	return c.Salt, nil
}

// Touch returns the current mtime of path, used by callers that want to
// detect a concurrent external modification before a cached-key save.
func Touch(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}
