// Package subtle contains the byte-level codecs and the concrete primitives
// that the keyset wrappers operate on. APIs here make no policy decisions;
// misuse (wrong key sizes, wrong encodings) is rejected, nothing more.
package subtle

import "errors"

// ErrInvalidSignatureEncoding is returned when a signature is not in the
// expected DER or IEEE-P1363 shape.
var ErrInvalidSignatureEncoding = errors.New("subtle: invalid signature encoding")

// maxIEEELen bounds IEEE-P1363 signatures to 2*66 bytes, the P-521 width.
const maxIEEELen = 132

// IsValidDEREncoding reports whether sig is a strictly DER-encoded ECDSA
// signature: SEQUENCE of two positive INTEGERs with minimal-length encodings
// and a total length matching the input exactly. Layout:
//
//	0x30 | total length (1 or 2 bytes) | 0x02 | len(r) | r | 0x02 | len(s) | s
//
// Anything looser (superfluous leading zeros, negative-looking integers,
// trailing bytes) is rejected, so malformed input never reaches the
// conversion arithmetic.
func IsValidDEREncoding(sig []byte) bool {
	// The minimal DER signature is 8 bytes.
	if len(sig) < 8 {
		return false
	}
	// A signature is a SEQUENCE, encoded with 0x30.
	if sig[0] != 0x30 {
		return false
	}
	totalLen := int(sig[1])
	totalLenLen := 1 // length of the total-length field, 2 bytes in long form
	if totalLen == 0x81 {
		// Long form: the total length is >= 128 and lives in the next byte.
		totalLenLen = 2
		totalLen = int(sig[2])
		if totalLen < 128 {
			return false
		}
	} else if totalLen >= 128 {
		// 0x80 (indefinite) and multi-byte long forms never occur in a valid
		// ECDSA signature.
		return false
	}
	if totalLen != len(sig)-1-totalLenLen {
		return false
	}

	// r component: INTEGER tag, non-zero minimal length, non-negative value.
	if sig[1+totalLenLen] != 0x02 {
		return false
	}
	rLen := int(sig[2+totalLenLen])
	// Both s's tag and s's length byte must sit inside the input before they
	// are read.
	if 4+totalLenLen+rLen >= len(sig) {
		return false
	}
	if rLen == 0 {
		return false
	}
	if sig[3+totalLenLen]&0x80 != 0 {
		return false
	}
	if rLen > 1 && sig[3+totalLenLen] == 0x00 && sig[4+totalLenLen]&0x80 == 0 {
		return false
	}

	// s component, directly after r.
	if sig[3+totalLenLen+rLen] != 0x02 {
		return false
	}
	sLen := int(sig[4+totalLenLen+rLen])
	if 5+totalLenLen+rLen+sLen != len(sig) {
		return false
	}
	if sLen == 0 {
		return false
	}
	if sig[5+totalLenLen+rLen]&0x80 != 0 {
		return false
	}
	if sLen > 1 && sig[5+totalLenLen+rLen] == 0x00 && sig[6+totalLenLen+rLen]&0x80 == 0 {
		return false
	}
	return true
}

// DERToIEEEP1363 converts a strictly DER-encoded ECDSA signature into the
// fixed-width IEEE-P1363 form r||s of ieeeLen bytes. ieeeLen must be twice
// the curve's field size.
func DERToIEEEP1363(der []byte, ieeeLen int) ([]byte, error) {
	if ieeeLen <= 0 || ieeeLen%2 != 0 || ieeeLen > maxIEEELen {
		return nil, ErrInvalidSignatureEncoding
	}
	if !IsValidDEREncoding(der) {
		return nil, ErrInvalidSignatureEncoding
	}
	ieee := make([]byte, ieeeLen)
	offset := 2 // 0x30 and the first length byte
	if der[1] == 0x81 {
		offset++
	}
	offset++ // r's 0x02 tag
	rLen := int(der[offset])
	offset++
	extraZero := 0
	if der[offset] == 0 {
		extraZero = 1
	}
	if rLen-extraZero > ieeeLen/2 {
		return nil, ErrInvalidSignatureEncoding
	}
	copy(ieee[ieeeLen/2-rLen+extraZero:], der[offset+extraZero:offset+rLen])
	offset += rLen + 1 // past r and s's 0x02 tag
	sLen := int(der[offset])
	offset++
	extraZero = 0
	if der[offset] == 0 {
		extraZero = 1
	}
	if sLen-extraZero > ieeeLen/2 {
		return nil, ErrInvalidSignatureEncoding
	}
	copy(ieee[ieeeLen-sLen+extraZero:], der[offset+extraZero:offset+sLen])
	return ieee, nil
}

// IEEEP1363ToDER converts an IEEE-P1363 signature r||s into its minimal
// strict-DER encoding. The input length must be even, non-zero and at most
// 132 bytes (two P-521 field elements).
func IEEEP1363ToDER(ieee []byte) ([]byte, error) {
	if len(ieee)%2 != 0 || len(ieee) == 0 || len(ieee) > maxIEEELen {
		return nil, ErrInvalidSignatureEncoding
	}
	r := toMinimalSignedNumber(ieee[:len(ieee)/2])
	s := toMinimalSignedNumber(ieee[len(ieee)/2:])

	contentLen := 1 + 1 + len(r) + 1 + 1 + len(s)
	var der []byte
	if contentLen >= 128 {
		der = make([]byte, 0, contentLen+3)
		der = append(der, 0x30, 0x81, byte(contentLen))
	} else {
		der = make([]byte, 0, contentLen+2)
		der = append(der, 0x30, byte(contentLen))
	}
	der = append(der, 0x02, byte(len(r)))
	der = append(der, r...)
	der = append(der, 0x02, byte(len(s)))
	der = append(der, s...)
	return der, nil
}

// toMinimalSignedNumber strips leading zero bytes, then re-adds exactly one
// if the value would otherwise read as negative in DER.
func toMinimalSignedNumber(bs []byte) []byte {
	start := 0
	for start < len(bs)-1 && bs[start] == 0 {
		start++
	}
	if bs[start]&0x80 != 0 {
		out := make([]byte, 1+len(bs)-start)
		copy(out[1:], bs[start:])
		return out
	}
	out := make([]byte, len(bs)-start)
	copy(out, bs[start:])
	return out
}
