// Package secure wraps sensitive byte slices so callers have to go out of
// their way to leak them, and zeroes them once a caller is done.
package secure

import "crypto/subtle"

// Wipe overwrites data with zeros. It uses subtle.ConstantTimeCompare as a
// compiler barrier so the zeroing loop is not optimized away as dead
// stores, the same trick pass-cli's crypto.ClearBytes relies on.
func Wipe(data []byte) {
	for i := range data {
		data[i] = 0
	}
	dummy := make([]byte, len(data))
	subtle.ConstantTimeCompare(data, dummy)
}

// Bytes holds sensitive material (keys, derived secrets, decrypted
// payloads) and zeroes it exactly once on Close. Reading b.b after Close
// returns zeros; callers must not retain slices derived from it past
// Close.
type Bytes struct {
	b      []byte
	closed bool
}

// NewBytes takes ownership of b; the caller must not use b directly after
// this call except through the returned Bytes.
func NewBytes(b []byte) *Bytes {
	return &Bytes{b: b}
}

func (s *Bytes) Bytes() []byte {
	if s == nil {
		return nil
	}
	return s.b
}

func (s *Bytes) Len() int {
	if s == nil {
		return 0
	}
	return len(s.b)
}

// Close zeroes the underlying buffer. Safe to call more than once.
func (s *Bytes) Close() {
	if s == nil || s.closed {
		return
	}
	Wipe(s.b)
	s.closed = true
}

// Clone returns a new Bytes holding a copy of the contents, leaving the
// receiver untouched.
func (s *Bytes) Clone() *Bytes {
	cp := make([]byte, len(s.b))
	copy(cp, s.b)
	return NewBytes(cp)
}

// String holds a sensitive string-shaped value (typically a password read
// from a terminal) as its constituent bytes so it can be wiped. Go strings
// are immutable, so the only way to really scrub one is to never make it a
// string in the first place.
type String struct {
	b *Bytes
}

func NewString(b []byte) *String {
	return &String{b: NewBytes(b)}
}

func (s *String) Bytes() []byte {
	if s == nil {
		return nil
	}
	return s.b.Bytes()
}

func (s *String) Close() {
	if s == nil {
		return
	}
	s.b.Close()
}
