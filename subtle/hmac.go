package subtle

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"
)

const (
	// minHMACKeySize is the smallest key accepted, per RFC 2104 guidance.
	minHMACKeySize = 16
	// minTagSize keeps truncated tags long enough to resist guessing.
	minTagSize = 10
)

var errHMACVerification = errors.New("subtle: HMAC verification failed")

// HMAC computes and verifies HMAC tags with a fixed hash and tag size.
// It implements tink.MAC.
type HMAC struct {
	newHash func() hash.Hash
	key     []byte
	tagSize int
}

func hashFactory(hashAlg string) (func() hash.Hash, int, error) {
	switch hashAlg {
	case "SHA256":
		return sha256.New, sha256.Size, nil
	case "SHA384":
		return sha512.New384, sha512.Size384, nil
	case "SHA512":
		return sha512.New, sha512.Size, nil
	default:
		return nil, 0, fmt.Errorf("subtle: unsupported hash %q", hashAlg)
	}
}

// NewHMAC returns an HMAC for hashAlg in {SHA256, SHA384, SHA512}. tagSize
// may truncate the digest but not below minTagSize. The key is copied.
func NewHMAC(hashAlg string, key []byte, tagSize int) (*HMAC, error) {
	newHash, digestSize, err := hashFactory(hashAlg)
	if err != nil {
		return nil, err
	}
	if len(key) < minHMACKeySize {
		return nil, fmt.Errorf("subtle: HMAC key too short, got %d bytes, need %d", len(key), minHMACKeySize)
	}
	if tagSize < minTagSize || tagSize > digestSize {
		return nil, fmt.Errorf("subtle: invalid HMAC tag size %d", tagSize)
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &HMAC{newHash: newHash, key: k, tagSize: tagSize}, nil
}

func (h *HMAC) ComputeMAC(data []byte) ([]byte, error) {
	mac := hmac.New(h.newHash, h.key)
	mac.Write(data)
	return mac.Sum(nil)[:h.tagSize], nil
}

func (h *HMAC) VerifyMAC(mac, data []byte) error {
	expected, err := h.ComputeMAC(data)
	if err != nil {
		return err
	}
	if !hmac.Equal(expected, mac) {
		return errHMACVerification
	}
	return nil
}
