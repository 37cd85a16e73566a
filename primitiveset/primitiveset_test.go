package primitiveset

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/pablobaxter/tink/cryptofmt"
	"github.com/pablobaxter/tink/keyset"
)

// fakeMAC stands in for any capability type; the set never calls into it.
type fakeMAC struct {
	name string
}

func enabledKey(id uint32, pt keyset.PrefixType) keyset.Key {
	return keyset.Key{ID: id, Status: keyset.Enabled, PrefixType: pt}
}

func TestAddAndLookup(t *testing.T) {
	ps := New[*fakeMAC]()
	keys := []keyset.Key{
		enabledKey(1234543, keyset.Tink),
		enabledKey(7213743, keyset.Legacy),
		enabledKey(5294722, keyset.Crunchy),
		enabledKey(9473277, keyset.Raw),
	}
	for i, k := range keys {
		e, err := ps.Add(&fakeMAC{name: fmt.Sprintf("mac-%d", i)}, k)
		if err != nil {
			t.Fatalf("Add(%v): %v", k, err)
		}
		if e.KeyID != k.ID || e.PrefixType != k.PrefixType {
			t.Fatalf("entry metadata = %v, want %v", e, k)
		}
		prefix, _ := cryptofmt.OutputPrefix(k)
		if e.Prefix != prefix {
			t.Fatalf("entry prefix = %x, want %x", e.Prefix, prefix)
		}
		got, err := ps.EntriesForPrefix(prefix)
		if err != nil {
			t.Fatalf("EntriesForPrefix: %v", err)
		}
		if len(got) != 1 || got[0] != e {
			t.Fatalf("bucket for %x = %v, want [%v]", prefix, got, e)
		}
	}
	if got := len(ps.All()); got != len(keys) {
		t.Fatalf("All() returned %d entries, want %d", got, len(keys))
	}
}

func TestAddRejectsDisabledKey(t *testing.T) {
	ps := New[*fakeMAC]()
	k := keyset.Key{ID: 7, Status: keyset.Disabled, PrefixType: keyset.Tink}
	if _, err := ps.Add(&fakeMAC{}, k); !errors.Is(err, ErrKeyNotEnabled) {
		t.Fatalf("err = %v, want ErrKeyNotEnabled", err)
	}
	if got := len(ps.All()); got != 0 {
		t.Fatalf("set has %d entries after rejected Add, want 0", got)
	}
}

func TestAddRejectsNilPrimitive(t *testing.T) {
	// For a pointer-shaped P the nil is a typed nil: it wraps into a non-nil
	// interface, so the check must look through the interface value.
	ps := New[*fakeMAC]()
	if _, err := ps.Add(nil, enabledKey(7, keyset.Tink)); !errors.Is(err, ErrNilPrimitive) {
		t.Fatalf("typed nil pointer: err = %v, want ErrNilPrimitive", err)
	}
	if got := len(ps.All()); got != 0 {
		t.Fatalf("rejected Add left %d entries in the set", got)
	}

	anySet := New[any]()
	if _, err := anySet.Add(nil, enabledKey(7, keyset.Tink)); !errors.Is(err, ErrNilPrimitive) {
		t.Fatalf("nil interface: err = %v, want ErrNilPrimitive", err)
	}
	if _, err := anySet.Add((*fakeMAC)(nil), enabledKey(7, keyset.Tink)); !errors.Is(err, ErrNilPrimitive) {
		t.Fatalf("typed nil in interface: err = %v, want ErrNilPrimitive", err)
	}
}

func TestAddRejectsUnknownPrefixType(t *testing.T) {
	ps := New[*fakeMAC]()
	k := keyset.Key{ID: 7, Status: keyset.Enabled}
	if _, err := ps.Add(&fakeMAC{}, k); !errors.Is(err, cryptofmt.ErrUnknownPrefixType) {
		t.Fatalf("err = %v, want ErrUnknownPrefixType", err)
	}
}

func TestSharedPrefixKeepsBothEntries(t *testing.T) {
	ps := New[*fakeMAC]()
	k := enabledKey(0xdeadbeef, keyset.Tink)
	first, err := ps.Add(&fakeMAC{name: "first"}, k)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	second, err := ps.Add(&fakeMAC{name: "second"}, k)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	// LEGACY and CRUNCHY share the same prefix bytes for the same id.
	third, err := ps.Add(&fakeMAC{name: "third"}, enabledKey(0xdeadbeef, keyset.Legacy))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	fourth, err := ps.Add(&fakeMAC{name: "fourth"}, enabledKey(0xdeadbeef, keyset.Crunchy))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	got, err := ps.EntriesForPrefix(first.Prefix)
	if err != nil {
		t.Fatalf("EntriesForPrefix: %v", err)
	}
	if len(got) != 2 || got[0] != first || got[1] != second {
		t.Fatalf("tink bucket = %v, want [first second] in insertion order", got)
	}
	legacyBucket, err := ps.EntriesForPrefix(third.Prefix)
	if err != nil {
		t.Fatalf("EntriesForPrefix: %v", err)
	}
	if len(legacyBucket) != 2 || legacyBucket[0] != third || legacyBucket[1] != fourth {
		t.Fatalf("legacy bucket = %v, want [third fourth]", legacyBucket)
	}
}

func TestLookupMissReturnsErrNoEntries(t *testing.T) {
	ps := New[*fakeMAC]()
	if _, err := ps.EntriesForPrefix("\x01\x00\x00\x00\x07"); !errors.Is(err, ErrNoEntries) {
		t.Fatalf("err = %v, want ErrNoEntries", err)
	}
	if _, err := ps.RawEntries(); !errors.Is(err, ErrNoEntries) {
		t.Fatalf("RawEntries err = %v, want ErrNoEntries", err)
	}
}

func TestSetPrimary(t *testing.T) {
	ps := New[*fakeMAC]()
	e, err := ps.Add(&fakeMAC{}, enabledKey(1, keyset.Tink))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if ps.Primary() != nil {
		t.Fatal("Primary() != nil before SetPrimary")
	}
	if err := ps.SetPrimary(e); err != nil {
		t.Fatalf("SetPrimary: %v", err)
	}
	if ps.Primary() != e {
		t.Fatalf("Primary() = %v, want %v", ps.Primary(), e)
	}
	// Setting the primary never changes bucket contents.
	if got := len(ps.All()); got != 1 {
		t.Fatalf("All() returned %d entries after SetPrimary, want 1", got)
	}
}

func TestSetPrimaryRejectsNil(t *testing.T) {
	ps := New[*fakeMAC]()
	if err := ps.SetPrimary(nil); !errors.Is(err, ErrNilEntry) {
		t.Fatalf("err = %v, want ErrNilEntry", err)
	}
}

func TestSetPrimaryRejectsForeignEntry(t *testing.T) {
	ps := New[*fakeMAC]()
	other := New[*fakeMAC]()
	e, err := other.Add(&fakeMAC{}, enabledKey(1, keyset.Tink))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := ps.SetPrimary(e); !errors.Is(err, ErrNotOwned) {
		t.Fatalf("err = %v, want ErrNotOwned", err)
	}
	// Same metadata is not ownership: an equal-looking entry of another set
	// must still be rejected.
	if _, err := ps.Add(&fakeMAC{}, enabledKey(1, keyset.Tink)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := ps.SetPrimary(e); !errors.Is(err, ErrNotOwned) {
		t.Fatalf("err = %v, want ErrNotOwned", err)
	}
}

func TestConcurrentAdds(t *testing.T) {
	const (
		writers       = 8
		addsPerWriter = 64
	)
	ps := New[*fakeMAC]()
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < addsPerWriter; i++ {
				// Even writers collide on a shared id range, odd writers use
				// disjoint ids, so both bucket-append and bucket-create race.
				id := uint32(i)
				if w%2 == 1 {
					id = uint32(w*addsPerWriter + i)
				}
				pt := keyset.Tink
				if i%3 == 0 {
					pt = keyset.Raw
				}
				if _, err := ps.Add(&fakeMAC{}, enabledKey(id, pt)); err != nil {
					t.Errorf("writer %d: Add: %v", w, err)
					return
				}
			}
		}(w)
	}
	// Concurrent readers must never observe a torn bucket.
	done := make(chan struct{})
	var readers sync.WaitGroup
	for r := 0; r < 4; r++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				if entries, err := ps.RawEntries(); err == nil {
					for _, e := range entries {
						if e == nil || e.PrefixType != keyset.Raw {
							t.Error("reader observed inconsistent raw bucket")
							return
						}
					}
				}
				ps.Primary()
				ps.All()
			}
		}()
	}
	wg.Wait()
	close(done)
	readers.Wait()

	if got := len(ps.All()); got != writers*addsPerWriter {
		t.Fatalf("All() returned %d entries, want %d", got, writers*addsPerWriter)
	}
	// Every added id must be reachable through its bucket.
	prefix, _ := cryptofmt.OutputPrefix(enabledKey(1, keyset.Tink))
	entries, err := ps.EntriesForPrefix(prefix)
	if err != nil {
		t.Fatalf("EntriesForPrefix: %v", err)
	}
	for _, e := range entries {
		if e.KeyID != 1 {
			t.Fatalf("bucket for id 1 contains id %d", e.KeyID)
		}
	}
}

func TestConcurrentSetPrimaryAndReaders(t *testing.T) {
	ps := New[*fakeMAC]()
	var entries []*Entry[*fakeMAC]
	for i := 0; i < 16; i++ {
		e, err := ps.Add(&fakeMAC{}, enabledKey(uint32(i), keyset.Tink))
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
		entries = append(entries, e)
	}
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				if err := ps.SetPrimary(entries[(w*200+i)%len(entries)]); err != nil {
					t.Errorf("SetPrimary: %v", err)
					return
				}
				if p := ps.Primary(); p == nil {
					t.Error("Primary() = nil after SetPrimary")
					return
				}
			}
		}(w)
	}
	wg.Wait()
	p := ps.Primary()
	found := false
	for _, e := range entries {
		if e == p {
			found = true
		}
	}
	if !found {
		t.Fatal("final primary is not an entry of the set")
	}
}
