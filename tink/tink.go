// Package tink declares the capability interfaces offered by this library.
//
// Implementations are opaque to the rest of the library: the keyset wrappers
// dispatch to them by ciphertext prefix without knowing the algorithm behind
// an interface value.
package tink

// AEAD is authenticated encryption with associated data. The associated data
// is authenticated but not encrypted; decryption succeeds only when called
// with the same associated data the ciphertext was produced with.
type AEAD interface {
	Encrypt(plaintext, associatedData []byte) ([]byte, error)
	Decrypt(ciphertext, associatedData []byte) ([]byte, error)
}

// MAC computes and verifies message authentication codes.
type MAC interface {
	ComputeMAC(data []byte) ([]byte, error)
	VerifyMAC(mac, data []byte) error
}

// Signer produces digital signatures over data.
type Signer interface {
	Sign(data []byte) ([]byte, error)
}

// Verifier checks digital signatures produced by the corresponding Signer.
type Verifier interface {
	Verify(signature, data []byte) error
}

// HybridEncrypt encrypts to a recipient public key. The context info is bound
// to the ciphertext the same way AEAD associated data is.
type HybridEncrypt interface {
	Encrypt(plaintext, contextInfo []byte) ([]byte, error)
}

// HybridDecrypt is the recipient side of HybridEncrypt.
type HybridDecrypt interface {
	Decrypt(ciphertext, contextInfo []byte) ([]byte, error)
}
