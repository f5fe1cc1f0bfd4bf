package address

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// ErrDerivationFailed covers a derived scalar landing on zero or >= the
// curve order, and any other malformed-input condition in this package.
// At any single index this is astronomically unlikely; the spec treats
// it as a hard failure rather than silently retrying.
var ErrDerivationFailed = errors.New("key derivation failed")

// Hardened ORs an index with the BIP-32 hardened-derivation bit.
func Hardened(index uint32) uint32 {
	return index | 0x80000000
}

type extendedKey struct {
	key   [32]byte
	chain [32]byte
}

func masterKeyFromSeed(seed []byte) extendedKey {
	mac := hmac.New(sha512.New, []byte("Bitcoin seed"))
	mac.Write(seed)
	i := mac.Sum(nil)

	var ek extendedKey
	copy(ek.key[:], i[:32])
	copy(ek.chain[:], i[32:])
	return ek
}

func (ek extendedKey) child(index uint32) (extendedKey, error) {
	var data []byte
	if index&0x80000000 != 0 {
		data = make([]byte, 0, 1+32+4)
		data = append(data, 0x00)
		data = append(data, ek.key[:]...)
	} else {
		priv := secp256k1.PrivKeyFromBytes(ek.key[:])
		pub := priv.PubKey().SerializeCompressed()
		data = make([]byte, 0, len(pub)+4)
		data = append(data, pub...)
	}
	var idxBuf [4]byte
	binary.BigEndian.PutUint32(idxBuf[:], index)
	data = append(data, idxBuf[:]...)

	mac := hmac.New(sha512.New, ek.chain[:])
	mac.Write(data)
	i := mac.Sum(nil)
	il, ir := i[:32], i[32:]

	var ilScalar secp256k1.ModNScalar
	if overflow := ilScalar.SetByteSlice(il); overflow {
		return extendedKey{}, ErrDerivationFailed
	}
	var kScalar secp256k1.ModNScalar
	kScalar.SetByteSlice(ek.key[:])
	ilScalar.Add(&kScalar)
	if ilScalar.IsZero() {
		return extendedKey{}, ErrDerivationFailed
	}

	var child extendedKey
	kb := ilScalar.Bytes()
	copy(child.key[:], kb[:])
	copy(child.chain[:], ir)
	return child, nil
}

// derivePath walks seed through BIP-32 child-key derivation along path,
// returning the final 32-byte private scalar.
func derivePath(seed []byte, path []uint32) ([32]byte, error) {
	ek := masterKeyFromSeed(seed)
	var err error
	for _, idx := range path {
		ek, err = ek.child(idx)
		if err != nil {
			return [32]byte{}, err
		}
	}
	return ek.key, nil
}
