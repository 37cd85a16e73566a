package cryptofmt

import (
	"errors"
	"testing"

	"github.com/pablobaxter/tink/keyset"
)

func TestOutputPrefixTink(t *testing.T) {
	got, err := OutputPrefix(keyset.Key{ID: 0x1ac6a944, Status: keyset.Enabled, PrefixType: keyset.Tink})
	if err != nil {
		t.Fatalf("OutputPrefix: %v", err)
	}
	want := string([]byte{0x01, 0x1a, 0xc6, 0xa9, 0x44})
	if got != want {
		t.Fatalf("prefix = %x, want %x", got, want)
	}
}

func TestOutputPrefixLegacyAndCrunchyShareFormat(t *testing.T) {
	legacy, err := OutputPrefix(keyset.Key{ID: 42, PrefixType: keyset.Legacy})
	if err != nil {
		t.Fatalf("legacy: %v", err)
	}
	crunchy, err := OutputPrefix(keyset.Key{ID: 42, PrefixType: keyset.Crunchy})
	if err != nil {
		t.Fatalf("crunchy: %v", err)
	}
	want := string([]byte{0x00, 0x00, 0x00, 0x00, 0x2a})
	if legacy != want || crunchy != want {
		t.Fatalf("legacy = %x, crunchy = %x, want %x", legacy, crunchy, want)
	}
}

func TestOutputPrefixRawIsEmpty(t *testing.T) {
	got, err := OutputPrefix(keyset.Key{ID: 0xffffffff, PrefixType: keyset.Raw})
	if err != nil {
		t.Fatalf("OutputPrefix: %v", err)
	}
	if got != RawPrefix {
		t.Fatalf("prefix = %x, want empty", got)
	}
}

func TestOutputPrefixUnknownType(t *testing.T) {
	if _, err := OutputPrefix(keyset.Key{ID: 1}); !errors.Is(err, ErrUnknownPrefixType) {
		t.Fatalf("err = %v, want ErrUnknownPrefixType", err)
	}
}

func TestOutputPrefixMaxKeyID(t *testing.T) {
	got, err := OutputPrefix(keyset.Key{ID: 0xffffffff, PrefixType: keyset.Tink})
	if err != nil {
		t.Fatalf("OutputPrefix: %v", err)
	}
	want := string([]byte{0x01, 0xff, 0xff, 0xff, 0xff})
	if got != want {
		t.Fatalf("prefix = %x, want %x", got, want)
	}
}
