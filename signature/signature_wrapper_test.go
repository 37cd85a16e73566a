package signature_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/pablobaxter/tink/keyset"
	"github.com/pablobaxter/tink/primitiveset"
	"github.com/pablobaxter/tink/signature"
	"github.com/pablobaxter/tink/subtle"
	"github.com/pablobaxter/tink/tink"
)

func newKeyPair(t *testing.T) (tink.Signer, tink.Verifier) {
	t.Helper()
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	signer, err := subtle.NewECDSASigner(priv, subtle.EncodingDER)
	if err != nil {
		t.Fatalf("NewECDSASigner: %v", err)
	}
	verifier, err := subtle.NewECDSAVerifier(&priv.PublicKey, subtle.EncodingDER)
	if err != nil {
		t.Fatalf("NewECDSAVerifier: %v", err)
	}
	return signer, verifier
}

func TestSignVerifyAllPrefixTypes(t *testing.T) {
	for _, prefixType := range []keyset.PrefixType{keyset.Tink, keyset.Legacy, keyset.Crunchy, keyset.Raw} {
		rawSigner, rawVerifier := newKeyPair(t)
		key := keyset.Key{ID: 0x7265ab1e, Status: keyset.Enabled, PrefixType: prefixType}

		signSet := primitiveset.New[tink.Signer]()
		entry, err := signSet.Add(rawSigner, key)
		if err != nil {
			t.Fatalf("%s: Add: %v", prefixType, err)
		}
		if err := signSet.SetPrimary(entry); err != nil {
			t.Fatalf("%s: SetPrimary: %v", prefixType, err)
		}
		signer, err := signature.NewSigner(signSet)
		if err != nil {
			t.Fatalf("%s: NewSigner: %v", prefixType, err)
		}

		verifySet := primitiveset.New[tink.Verifier]()
		if _, err := verifySet.Add(rawVerifier, key); err != nil {
			t.Fatalf("%s: Add: %v", prefixType, err)
		}
		verifier, err := signature.NewVerifier(verifySet)
		if err != nil {
			t.Fatalf("%s: NewVerifier: %v", prefixType, err)
		}

		data := []byte("signed message")
		sig, err := signer.Sign(data)
		if err != nil {
			t.Fatalf("%s: Sign: %v", prefixType, err)
		}
		if err := verifier.Verify(sig, data); err != nil {
			t.Fatalf("%s: Verify: %v", prefixType, err)
		}
		if err := verifier.Verify(sig, []byte("other message")); !errors.Is(err, signature.ErrVerificationFailed) {
			t.Fatalf("%s: err = %v, want ErrVerificationFailed", prefixType, err)
		}
	}
}

func TestVerifierNeedsNoPrimary(t *testing.T) {
	rawSigner, rawVerifier := newKeyPair(t)
	key := keyset.Key{ID: 5, Status: keyset.Enabled, PrefixType: keyset.Tink}

	signSet := primitiveset.New[tink.Signer]()
	entry, err := signSet.Add(rawSigner, key)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := signSet.SetPrimary(entry); err != nil {
		t.Fatalf("SetPrimary: %v", err)
	}
	signer, err := signature.NewSigner(signSet)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	sig, err := signer.Sign([]byte("data"))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	verifySet := primitiveset.New[tink.Verifier]()
	if _, err := verifySet.Add(rawVerifier, key); err != nil {
		t.Fatalf("Add: %v", err)
	}
	verifier, err := signature.NewVerifier(verifySet)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	if err := verifier.Verify(sig, []byte("data")); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestSignerRequiresPrimary(t *testing.T) {
	rawSigner, _ := newKeyPair(t)
	set := primitiveset.New[tink.Signer]()
	if _, err := set.Add(rawSigner, keyset.Key{ID: 1, Status: keyset.Enabled, PrefixType: keyset.Raw}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := signature.NewSigner(set); !errors.Is(err, signature.ErrNoPrimary) {
		t.Fatalf("err = %v, want ErrNoPrimary", err)
	}
}

func TestVerifyRawFallback(t *testing.T) {
	rawSigner, rawVerifier := newKeyPair(t)
	sig, err := rawSigner.Sign([]byte("data"))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	_, prefixedVerifier := newKeyPair(t)
	set := primitiveset.New[tink.Verifier]()
	if _, err := set.Add(prefixedVerifier, keyset.Key{ID: 1, Status: keyset.Enabled, PrefixType: keyset.Tink}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := set.Add(rawVerifier, keyset.Key{ID: 2, Status: keyset.Enabled, PrefixType: keyset.Raw}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	verifier, err := signature.NewVerifier(set)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	if err := verifier.Verify(sig, []byte("data")); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerifyFailureIsUniform(t *testing.T) {
	_, rawVerifier := newKeyPair(t)
	set := primitiveset.New[tink.Verifier]()
	if _, err := set.Add(rawVerifier, keyset.Key{ID: 1, Status: keyset.Enabled, PrefixType: keyset.Tink}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	verifier, err := signature.NewVerifier(set)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	for _, sig := range [][]byte{nil, {0x01}, {0x01, 0xde, 0xad, 0xbe, 0xef, 0x30}} {
		if err := verifier.Verify(sig, []byte("data")); !errors.Is(err, signature.ErrVerificationFailed) {
			t.Errorf("sig %x: err = %v, want ErrVerificationFailed", sig, err)
		}
	}
}
