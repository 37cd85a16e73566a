// Package cryptofmt defines the format of the prefix prepended to ciphertexts
// and signatures produced under non-RAW keys.
//
// The prefix is either empty (RAW) or 5 bytes: a 1-byte version indicator
// followed by the 4-byte big-endian key id. It is the lookup identifier used
// to route a ciphertext back to the key that produced it; it is not itself
// cryptographically authenticated.
package cryptofmt

import (
	"encoding/binary"
	"errors"

	"github.com/pablobaxter/tink/keyset"
)

const (
	// NonRawPrefixSize is the prefix size of TINK, LEGACY and CRUNCHY keys.
	NonRawPrefixSize = 5

	// LegacyPrefixSize is the prefix size of LEGACY and CRUNCHY keys.
	LegacyPrefixSize = NonRawPrefixSize
	// LegacyStartByte is the first prefix byte of LEGACY and CRUNCHY keys.
	LegacyStartByte = byte(0)

	// TinkPrefixSize is the prefix size of TINK keys.
	TinkPrefixSize = NonRawPrefixSize
	// TinkStartByte is the first prefix byte of TINK keys.
	TinkStartByte = byte(1)

	// RawPrefixSize is the prefix size of RAW keys.
	RawPrefixSize = 0
	// RawPrefix is the empty prefix of RAW keys.
	RawPrefix = ""
)

// ErrUnknownPrefixType is returned for keys whose prefix type is not one of
// TINK, LEGACY, CRUNCHY or RAW.
var ErrUnknownPrefixType = errors.New("cryptofmt: unknown output prefix type")

// OutputPrefix returns the prefix of outputs produced under key. The prefix
// is returned as a string so it can index a map; it is binary data, not text.
func OutputPrefix(key keyset.Key) (string, error) {
	switch key.PrefixType {
	case keyset.Legacy, keyset.Crunchy:
		return createOutputPrefix(LegacyPrefixSize, LegacyStartByte, key.ID), nil
	case keyset.Tink:
		return createOutputPrefix(TinkPrefixSize, TinkStartByte, key.ID), nil
	case keyset.Raw:
		return RawPrefix, nil
	default:
		return "", ErrUnknownPrefixType
	}
}

func createOutputPrefix(size int, startByte byte, keyID uint32) string {
	prefix := make([]byte, size)
	prefix[0] = startByte
	binary.BigEndian.PutUint32(prefix[1:], keyID)
	return string(prefix)
}
