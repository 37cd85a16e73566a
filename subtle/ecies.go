package subtle

import (
	"crypto/ecdh"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/pablobaxter/tink/internal/securemem"
)

const x25519PointSize = 32

var errECIESCiphertextTooShort = errors.New("subtle: ECIES ciphertext too short")

// eciesKey derives the per-message AEAD key from the ECDH shared secret with
// HKDF-SHA256, binding both public points into the derivation.
func eciesKey(shared, ephemeralPub, recipientPub []byte) ([]byte, error) {
	info := make([]byte, 0, 2*x25519PointSize)
	info = append(info, ephemeralPub...)
	info = append(info, recipientPub...)
	stream := hkdf.New(sha256.New, shared, nil, info)
	key := make([]byte, 32)
	if _, err := io.ReadFull(stream, key); err != nil {
		return nil, err
	}
	return key, nil
}

// ECIESX25519HybridEncrypt encrypts to an X25519 recipient key: a fresh
// ephemeral key agrees on a shared secret, HKDF-SHA256 turns it into an
// XChaCha20-Poly1305 key, and the context info rides along as associated
// data. Wire layout: [ephemeral public key (32)][AEAD ciphertext].
// It implements tink.HybridEncrypt.
type ECIESX25519HybridEncrypt struct {
	recipient *ecdh.PublicKey
}

func NewECIESX25519HybridEncrypt(recipient *ecdh.PublicKey) (*ECIESX25519HybridEncrypt, error) {
	if recipient == nil {
		return nil, errors.New("subtle: recipient key must not be nil")
	}
	if recipient.Curve() != ecdh.X25519() {
		return nil, errors.New("subtle: recipient key must be X25519")
	}
	return &ECIESX25519HybridEncrypt{recipient: recipient}, nil
}

func (e *ECIESX25519HybridEncrypt) Encrypt(plaintext, contextInfo []byte) ([]byte, error) {
	eph, err := ecdh.X25519().GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	shared, err := eph.ECDH(e.recipient)
	if err != nil {
		return nil, err
	}
	defer securemem.Zero(shared)
	ephPub := eph.PublicKey().Bytes()
	key, err := eciesKey(shared, ephPub, e.recipient.Bytes())
	if err != nil {
		return nil, err
	}
	defer securemem.Zero(key)
	aead, err := NewXChaCha20Poly1305(key)
	if err != nil {
		return nil, err
	}
	ct, err := aead.Encrypt(plaintext, contextInfo)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(ephPub)+len(ct))
	out = append(out, ephPub...)
	return append(out, ct...), nil
}

// ECIESX25519HybridDecrypt is the recipient side of ECIESX25519HybridEncrypt.
// It implements tink.HybridDecrypt.
type ECIESX25519HybridDecrypt struct {
	priv *ecdh.PrivateKey
}

func NewECIESX25519HybridDecrypt(priv *ecdh.PrivateKey) (*ECIESX25519HybridDecrypt, error) {
	if priv == nil {
		return nil, errors.New("subtle: private key must not be nil")
	}
	if priv.Curve() != ecdh.X25519() {
		return nil, errors.New("subtle: private key must be X25519")
	}
	return &ECIESX25519HybridDecrypt{priv: priv}, nil
}

func (d *ECIESX25519HybridDecrypt) Decrypt(ciphertext, contextInfo []byte) ([]byte, error) {
	if len(ciphertext) < x25519PointSize {
		return nil, errECIESCiphertextTooShort
	}
	ephPub, err := ecdh.X25519().NewPublicKey(ciphertext[:x25519PointSize])
	if err != nil {
		return nil, err
	}
	shared, err := d.priv.ECDH(ephPub)
	if err != nil {
		return nil, err
	}
	defer securemem.Zero(shared)
	key, err := eciesKey(shared, ephPub.Bytes(), d.priv.PublicKey().Bytes())
	if err != nil {
		return nil, err
	}
	defer securemem.Zero(key)
	aead, err := NewXChaCha20Poly1305(key)
	if err != nil {
		return nil, err
	}
	return aead.Decrypt(ciphertext[x25519PointSize:], contextInfo)
}
