package address

import "errors"

// bech32 implements BIP-173 segwit address encoding inline. No library in
// the retrieval pack offers this without pulling in a full btcd node
// (chaincfg/wire) for one checksum-and-charset function, so it is
// hand-rolled the same way the spec keeps BIP-32 inline rather than
// reaching for an opaque HD-wallet SDK. See DESIGN.md.

const bech32Charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

var bech32Gen = [5]uint32{0x3b6a57b2, 0x26508e6d, 0x1ea119fa, 0x3d4233dd, 0x2a1462b3}

func bech32Polymod(values []int) uint32 {
	chk := uint32(1)
	for _, v := range values {
		b := chk >> 25
		chk = (chk&0x1ffffff)<<5 ^ uint32(v)
		for i := 0; i < 5; i++ {
			if (b>>uint(i))&1 == 1 {
				chk ^= bech32Gen[i]
			}
		}
	}
	return chk
}

func bech32HRPExpand(hrp string) []int {
	out := make([]int, 0, len(hrp)*2+1)
	for _, c := range hrp {
		out = append(out, int(c)>>5)
	}
	out = append(out, 0)
	for _, c := range hrp {
		out = append(out, int(c)&31)
	}
	return out
}

func bech32CreateChecksum(hrp string, data []int) []int {
	values := append(bech32HRPExpand(hrp), data...)
	values = append(values, []int{0, 0, 0, 0, 0, 0}...)
	mod := bech32Polymod(values) ^ 1
	checksum := make([]int, 6)
	for i := 0; i < 6; i++ {
		checksum[i] = int((mod >> uint(5*(5-i))) & 31)
	}
	return checksum
}

// bech32Encode encodes hrp + data (already converted to 5-bit groups)
// into a BIP-173 string.
func bech32Encode(hrp string, data []int) string {
	combined := append(data, bech32CreateChecksum(hrp, data)...)
	out := hrp + "1"
	for _, d := range combined {
		out += string(bech32Charset[d])
	}
	return out
}

// convertBits repacks a byte slice between bit-group sizes, as BIP-173
// requires to turn 8-bit witness-program bytes into 5-bit groups.
func convertBits(data []byte, fromBits, toBits uint, pad bool) ([]int, error) {
	acc := 0
	bits := uint(0)
	out := make([]int, 0, len(data)*8/int(toBits)+1)
	maxv := (1 << toBits) - 1
	for _, b := range data {
		if int(b)>>fromBits != 0 {
			return nil, errors.New("invalid data for bit conversion")
		}
		acc = (acc << fromBits) | int(b)
		bits += fromBits
		for bits >= toBits {
			bits -= toBits
			out = append(out, (acc>>bits)&maxv)
		}
	}
	if pad {
		if bits > 0 {
			out = append(out, (acc<<(toBits-bits))&maxv)
		}
	} else if bits >= fromBits || (acc<<(toBits-bits))&maxv != 0 {
		return nil, errors.New("invalid padding in bit conversion")
	}
	return out, nil
}

// encodeSegwitAddress produces a BIP-173 P2WPKH/P2WSH address for witness
// version 0, the only version this vault needs.
func encodeSegwitAddress(hrp string, witnessProgram []byte) (string, error) {
	converted, err := convertBits(witnessProgram, 8, 5, true)
	if err != nil {
		return "", err
	}
	data := append([]int{0}, converted...)
	return bech32Encode(hrp, data), nil
}
