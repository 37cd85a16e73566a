package subtle

import (
	"crypto/rand"
	"errors"

	xchacha "golang.org/x/crypto/chacha20poly1305"
)

var errCiphertextTooShort = errors.New("subtle: ciphertext too short")

// XChaCha20Poly1305 is an AEAD whose ciphertexts carry the random 24-byte
// nonce up front: [nonce||ciphertext||tag]. It implements tink.AEAD.
type XChaCha20Poly1305 struct {
	key []byte
}

// NewXChaCha20Poly1305 returns an AEAD for a 32-byte key. The key is copied.
func NewXChaCha20Poly1305(key []byte) (*XChaCha20Poly1305, error) {
	if len(key) != xchacha.KeySize {
		return nil, errors.New("subtle: XChaCha20-Poly1305 key must be 32 bytes")
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &XChaCha20Poly1305{key: k}, nil
}

func (x *XChaCha20Poly1305) Encrypt(plaintext, associatedData []byte) ([]byte, error) {
	aead, err := xchacha.NewX(x.key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, xchacha.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, associatedData), nil
}

func (x *XChaCha20Poly1305) Decrypt(ciphertext, associatedData []byte) ([]byte, error) {
	aead, err := xchacha.NewX(x.key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < xchacha.NonceSizeX {
		return nil, errCiphertextTooShort
	}
	nonce := ciphertext[:xchacha.NonceSizeX]
	ct := ciphertext[xchacha.NonceSizeX:]
	return aead.Open(nil, nonce, ct, associatedData)
}
