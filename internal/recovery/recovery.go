// Package recovery implements the security-question recovery sidecar: a
// normalised answer, independently salted from the master password,
// verifies itself against a stored hash and — on match — decrypts a blob
// holding the master vault key.
package recovery

import (
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/ckvault/ckvault/internal/primitives"
	"github.com/ckvault/ckvault/internal/secure"
)

var ErrRecoveryFailed = errors.New("recovery failed")

// Config is the cleartext sidecar persisted alongside the vault. Every
// field is safe to store in the clear: answer_hash is a one-way verifier,
// and master_key_blob is sealed under a key derived from the answer with
// its own independent salt, so neither field alone leaks the master key.
type Config struct {
	QuestionIndex      uint8  `json:"question_index"`
	AnswerSalt         []byte `json:"answer_salt"`
	AnswerHash         []byte `json:"answer_hash"`
	MasterKeyBlob      []byte `json:"master_key_blob"`
	MasterKeyBlobNonce []byte `json:"master_key_blob_nonce"`
	MasterKeyBlobSalt  []byte `json:"master_key_blob_salt"`
}

// Normalize trims surrounding whitespace, lowercases, and collapses runs
// of whitespace to a single space. Applied identically at setup,
// verification, and decryption time.
func Normalize(answer string) string {
	fields := strings.Fields(strings.ToLower(answer))
	return strings.Join(fields, " ")
}

// Setup creates a new recovery Config for questionIndex, sealing vaultKey
// under a key derived from the normalised answer. The two KDF calls use
// independent salts so that leaking the config never leaks anything the
// config itself lets the attacker authenticate against the vault.
func Setup(questionIndex uint8, answer string, vaultKey []byte) (Config, error) {
	normalized := Normalize(answer)

	answerSalt, err := primitives.RandomSalt()
	if err != nil {
		return Config{}, err
	}
	answerHashKey, err := primitives.DeriveKey([]byte(normalized), answerSalt, primitives.LightParams())
	if err != nil {
		return Config{}, err
	}

	blobSalt, err := primitives.RandomSalt()
	if err != nil {
		return Config{}, err
	}
	blobKey, err := primitives.DeriveKey([]byte(normalized), blobSalt, primitives.LightParams())
	if err != nil {
		return Config{}, err
	}
	defer secure.Wipe(blobKey)

	blobNonce, err := primitives.RandomNonce()
	if err != nil {
		return Config{}, err
	}
	blob, err := primitives.AEADEncrypt(blobKey, blobNonce, vaultKey)
	if err != nil {
		return Config{}, err
	}

	return Config{
		QuestionIndex:      questionIndex,
		AnswerSalt:         answerSalt,
		AnswerHash:         answerHashKey,
		MasterKeyBlob:      blob,
		MasterKeyBlobNonce: blobNonce,
		MasterKeyBlobSalt:  blobSalt,
	}, nil
}

// VerifyAnswer normalises answer, derives the verifier hash with the
// config's answer_salt, and constant-time compares it to the stored
// answer_hash. It does not decrypt anything and cannot leak the master
// key on its own.
func VerifyAnswer(cfg Config, answer string) (bool, error) {
	normalized := Normalize(answer)
	hash, err := primitives.DeriveKey([]byte(normalized), cfg.AnswerSalt, primitives.LightParams())
	if err != nil {
		return false, err
	}
	defer secure.Wipe(hash)
	return subtle.ConstantTimeCompare(hash, cfg.AnswerHash) == 1, nil
}

// Recover normalises answer, verifies it, and on success decrypts
// master_key_blob to recover the vault key K_v. Returns ErrRecoveryFailed
// on a wrong answer or a tampered blob, without distinguishing the two.
func Recover(cfg Config, answer string) (*secure.Bytes, error) {
	ok, err := VerifyAnswer(cfg, answer)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrRecoveryFailed
	}

	normalized := Normalize(answer)
	blobKey, err := primitives.DeriveKey([]byte(normalized), cfg.MasterKeyBlobSalt, primitives.LightParams())
	if err != nil {
		return nil, err
	}
	defer secure.Wipe(blobKey)

	vaultKey, err := primitives.AEADDecrypt(blobKey, cfg.MasterKeyBlobNonce, cfg.MasterKeyBlob)
	if err != nil {
		return nil, ErrRecoveryFailed
	}
	return secure.NewBytes(vaultKey), nil
}

// AttemptLimiter caps recovery attempts per session, a UX policy rather
// than a cryptographic guarantee: nothing stops a fresh process from
// resetting the counter. Matches spec's "five per session" default.
type AttemptLimiter struct {
	max     int
	current int
}

func NewAttemptLimiter(max int) *AttemptLimiter {
	if max <= 0 {
		max = 5
	}
	return &AttemptLimiter{max: max}
}

// Allow reports whether another attempt may proceed, incrementing the
// internal counter. Once exhausted it keeps returning false.
func (l *AttemptLimiter) Allow() bool {
	if l.current >= l.max {
		return false
	}
	l.current++
	return true
}

func (l *AttemptLimiter) Remaining() int {
	if l.current >= l.max {
		return 0
	}
	return l.max - l.current
}
